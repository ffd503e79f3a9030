package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	wakes       *prom.CounterVec
	gestures    *prom.CounterVec
	digits      *prom.CounterVec
	escalations *prom.CounterVec
	commits     *prom.CounterVec
	dialOuts    *prom.CounterVec
	pending     prom.Gauge
}

// NewPrometheusRecorder constructs and registers the dialer metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		wakes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotary",
			Name:      "wakes_total",
			Help:      "Wakeups from sleep by reason",
		}, []string{"reason"}),
		gestures: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotary",
			Name:      "gestures_total",
			Help:      "Dial gestures by outcome",
		}, []string{"result"}),
		digits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotary",
			Name:      "digits_total",
			Help:      "Resolved digits by menu state at dispatch",
		}, []string{"state"}),
		escalations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotary",
			Name:      "escalations_total",
			Help:      "Special function levels reached by holding the dial",
		}, []string{"level"}),
		commits: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotary",
			Name:      "commits_total",
			Help:      "Numbers committed on inactivity timeout",
		}, []string{"slot", "written"}),
		dialOuts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "rotary",
			Name:      "dial_outs_total",
			Help:      "Stored numbers played back",
		}, []string{"slot"}),
		pending: prom.NewGauge(prom.GaugeOpts{
			Namespace: "rotary",
			Name:      "pending_digits",
			Help:      "Digits in the number currently being entered",
		}),
	}
	reg.MustRegister(pr.wakes, pr.gestures, pr.digits, pr.escalations, pr.commits, pr.dialOuts, pr.pending)
	return pr
}

func (p *PrometheusRecorder) IncWake(reason string) {
	p.wakes.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncGesture(result GestureResult) {
	p.gestures.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncDigit(state string) {
	p.digits.WithLabelValues(state).Inc()
}

func (p *PrometheusRecorder) IncEscalation(level string) {
	p.escalations.WithLabelValues(level).Inc()
}

func (p *PrometheusRecorder) IncCommit(slot int, written bool) {
	p.commits.WithLabelValues(strconv.Itoa(slot), strconv.FormatBool(written)).Inc()
}

func (p *PrometheusRecorder) IncDialOut(slot int) {
	p.dialOuts.WithLabelValues(strconv.Itoa(slot)).Inc()
}

func (p *PrometheusRecorder) SetPending(n int) {
	p.pending.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves metrics for reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
