// Package metrics records dialer activity counters.
package metrics

// GestureResult labels the outcome of one dial gesture.
type GestureResult string

const (
	GestureDigit     GestureResult = "digit"
	GestureInvalid   GestureResult = "invalid"
	GestureAbandoned GestureResult = "abandoned"
	GestureNoise     GestureResult = "noise"
)

// Recorder defines observability hooks for the dial loop. Implementations
// may forward to Prometheus. NoopRecorder is used when metrics are disabled.
type Recorder interface {
	IncWake(reason string)
	IncGesture(result GestureResult)
	IncDigit(state string)
	IncEscalation(level string)
	IncCommit(slot int, written bool)
	IncDialOut(slot int)
	SetPending(n int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncWake(string)           {}
func (NoopRecorder) IncGesture(GestureResult) {}
func (NoopRecorder) IncDigit(string)          {}
func (NoopRecorder) IncEscalation(string)     {}
func (NoopRecorder) IncCommit(int, bool)      {}
func (NoopRecorder) IncDialOut(int)           {}
func (NoopRecorder) SetPending(int)           {}
