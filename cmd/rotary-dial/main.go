// Command rotary-dial decodes a rotary telephone dial on GPIO and reproduces
// the dialed digits as DTMF tones, with redial and speed dial.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/rotary-dial/internal/config"
	"github.com/sweeney/rotary-dial/internal/gpio"
	"github.com/sweeney/rotary-dial/internal/logic"
	"github.com/sweeney/rotary-dial/internal/metrics"
	"github.com/sweeney/rotary-dial/internal/mqtt"
	"github.com/sweeney/rotary-dial/internal/power"
	"github.com/sweeney/rotary-dial/internal/scheduler"
	"github.com/sweeney/rotary-dial/internal/speeddial"
	"github.com/sweeney/rotary-dial/internal/status"
	"github.com/sweeney/rotary-dial/internal/store"
	"github.com/sweeney/rotary-dial/internal/tone"
	"github.com/sweeney/rotary-dial/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (built-in defaults if empty)")
	envFile := flag.String("env-file", "", "Env file with ROTARY_* overrides")
	printSlots := flag.Bool("print-slots", false, "Print stored speed dial numbers and exit")
	printState := flag.Bool("print-state", false, "Print current line levels and exit")

	flag.Parse()

	cfg, err := loadConfig(*configPath, *envFile, os.LookupEnv)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if err := run(cfg, *printSlots, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(path, envFile string, lookup func(string) (string, bool)) (config.Config, error) {
	if envFile != "" {
		if err := config.LoadEnvFile(envFile); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openStore(path string) (store.Store, error) {
	if path == "" {
		log.Printf("store: no path configured, speed dial numbers kept in memory")
		return store.NewMemoryStore(), nil
	}
	return store.NewSQLiteStore(path)
}

func run(cfg config.Config, printSlots, printState bool) error {
	slots, err := openStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer slots.Close()

	dialer := speeddial.NewManager(slots)

	// Print slots mode
	if printSlots {
		return writeSlots(os.Stdout, dialer)
	}

	// The dial edge only records the wake; the level check covers an edge
	// that fired before the loop went to sleep.
	var gpioReader *gpio.RealReader
	host := power.NewHostController(func() bool { return gpioReader.DialActive() })
	gpioReader, err = gpio.NewRealReader(cfg.GPIO.Chip, cfg.GPIO.PinDial, cfg.GPIO.PinPulse, host.LineChanged)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer gpioReader.Close()

	// Print state mode
	if printState {
		dial, pulse, err := gpioReader.Read()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("dial: %s, pulse: %s\n", levelString(dial, "OFF_NORMAL", "REST"), levelString(pulse, "OPEN", "CLOSED"))
		return nil
	}

	schedCfg, err := cfg.Scheduler()
	if err != nil {
		return fmt.Errorf("scheduler config: %w", err)
	}

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	deps := scheduler.Deps{
		Lines:   gpioReader,
		Power:   host,
		Dialer:  dialer,
		Tracker: tracker,
	}

	// Initialize MQTT. Without a broker tones are only logged.
	var publisher *mqtt.RealPublisher
	var sender tone.Sender = logSender{}
	if cfg.MQTT.Broker != "" {
		publisher, err = mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer publisher.Close()
		sender = publisher
		deps.Events = publisher
		deps.Connection = publisher
	}
	deps.Synth = tone.NewRemoteSynthesizer(sender)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		reg := prom.NewRegistry()
		deps.Metrics = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}

	sched, err := scheduler.New(schedCfg, deps)
	if err != nil {
		return err
	}

	// Publish startup event with full status snapshot
	var events mqtt.Publisher
	if publisher != nil {
		events = publisher
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, slots, metricsHandler)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	log.Printf("started: chip=%s dial=%d pulse=%d sample=%v hold=%v inactivity=%v reversed=%t broker=%s",
		cfg.GPIO.Chip, cfg.GPIO.PinDial, cfg.GPIO.PinPulse, cfg.Dial.SampleInterval,
		cfg.Dial.HoldThreshold, cfg.Dial.Inactivity, cfg.Dial.Reversed, cfg.MQTT.Broker)

	var heartbeat <-chan time.Time
	if publisher != nil && cfg.MQTT.Heartbeat > 0 {
		ticker := time.NewTicker(cfg.MQTT.Heartbeat)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var mqttStatus mqtt.ConnectionStatus
	if publisher != nil {
		mqttStatus = publisher
	}
	return runLoop(sched, events, mqttStatus, tracker, time.Now, heartbeat, sigCh)
}

// runLoop runs the dial loop until a signal arrives, publishing heartbeats
// meanwhile and a SHUTDOWN event at the end. publisher may be nil.
func runLoop(sched *scheduler.Scheduler, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, heartbeat <-chan time.Time, sig <-chan os.Signal) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reason := make(chan string, 1)
	go func() {
		for {
			select {
			case s := <-sig:
				log.Printf("received %v, shutting down", s)
				reason <- signalName(s)
				cancel()
				return
			case t := <-heartbeat:
				publishStatus(publisher, mqttStatus, tracker, t, "HEARTBEAT", "")
			case <-ctx.Done():
				return
			}
		}
	}()

	err := sched.Run(ctx)
	cancel()

	name := "ERROR"
	if err == nil {
		name = <-reason
	}
	publishStatus(publisher, mqttStatus, tracker, now(), "SHUTDOWN", name)
	return err
}

// publishStatus publishes a lifecycle event carrying the full status snapshot.
func publishStatus(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, t time.Time, event, reason string) {
	if publisher == nil {
		return
	}
	se := mqtt.SystemEvent{
		Timestamp: t,
		Event:     event,
		Reason:    reason,
		Retained:  event != "HEARTBEAT",
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		// Refresh network info for each lifecycle event
		if net := readNetworkInfo(); net != nil {
			tracker.SetNetwork(net)
		}
		se.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), event, reason)
	}
	if err := publisher.PublishSystem(se); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else if event != "HEARTBEAT" {
		log.Printf("published %s event", event)
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		SampleUs:         cfg.Dial.SampleInterval.Microseconds(),
		SettleMs:         cfg.Dial.SettleWindow.Milliseconds(),
		HoldMs:           cfg.Dial.HoldThreshold.Milliseconds(),
		InactivityMs:     cfg.Dial.Inactivity.Milliseconds(),
		Reversed:         cfg.Dial.Reversed,
		SpecialFunctions: cfg.Dial.SpecialFunctions,
		Chip:             cfg.GPIO.Chip,
		PinDial:          cfg.GPIO.PinDial,
		PinPulse:         cfg.GPIO.PinPulse,
		Broker:           cfg.MQTT.Broker,
		HTTPPort:         cfg.HTTP.Addr,
		DBPath:           cfg.Store.Path,
	}
}

// writeSlots prints every slot with the dial position that selects it.
func writeSlots(w io.Writer, dialer *speeddial.Manager) error {
	slots, err := dialer.Slots(context.Background())
	if err != nil {
		return fmt.Errorf("read slots: %w", err)
	}
	for i, n := range slots {
		slot := logic.Slot(i)
		label := fmt.Sprintf("slot %d", slot)
		if slot == logic.SlotRedial {
			label = "redial"
		}
		number := n.String()
		if number == "" {
			number = "-"
		}
		fmt.Fprintf(w, "%-7s (dial %s): %s\n", label, slotPosition(slot), number)
	}
	return nil
}

func slotPosition(slot logic.Slot) string {
	if d, ok := slot.Position(); ok {
		return d.String()
	}
	return "?"
}

func levelString(asserted bool, on, off string) string {
	if asserted {
		return on
	}
	return off
}

// logSender stands in for the tone generator when MQTT is disabled.
type logSender struct{}

func (logSender) SendTone(cmd tone.Command) error {
	log.Printf("tone: %s %v (%d/%d Hz)", cmd.Code, cmd.Duration, cmd.Pair.Low, cmd.Pair.High)
	return nil
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
