package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/sweeney/rotary-dial/internal/gpio"
	"github.com/sweeney/rotary-dial/internal/logic"
	"github.com/sweeney/rotary-dial/internal/mqtt"
	"github.com/sweeney/rotary-dial/internal/power"
	"github.com/sweeney/rotary-dial/internal/scheduler"
	"github.com/sweeney/rotary-dial/internal/speeddial"
	"github.com/sweeney/rotary-dial/internal/status"
	"github.com/sweeney/rotary-dial/internal/store"
	"github.com/sweeney/rotary-dial/internal/tone"
)

// TestEnvVarNames verifies the env var constants match what pi-helper writes
// to /run/pi-helper.env. If pi-helper changes its var names, this test fails
// and we update the constants, not the other way around.
func TestEnvVarNames(t *testing.T) {
	want := map[string]string{
		"NETWORK_TYPE":        envNetworkType,
		"NETWORK_IP":          envNetworkIP,
		"NETWORK_STATUS":      envNetworkStatus,
		"NETWORK_GATEWAY":     envNetworkGateway,
		"NETWORK_WIFI_STATUS": envNetworkWifiStatus,
		"NETWORK_WIFI_SSID":   envNetworkWifiSSID,
	}
	for canonical, got := range want {
		if got != canonical {
			t.Errorf("env var constant: got %q, want %q", got, canonical)
		}
	}
}

func TestReadNetworkInfoAllSet(t *testing.T) {
	t.Setenv(envNetworkType, "wifi")
	t.Setenv(envNetworkIP, "192.168.1.100")
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkGateway, "192.168.1.1")
	t.Setenv(envNetworkWifiStatus, "connected")
	t.Setenv(envNetworkWifiSSID, "MyNetwork")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo")
	}
	want := status.NetworkInfo{
		Type:       "wifi",
		IP:         "192.168.1.100",
		Status:     "connected",
		Gateway:    "192.168.1.1",
		WifiStatus: "connected",
		SSID:       "MyNetwork",
	}
	if *info != want {
		t.Errorf("got %+v, want %+v", *info, want)
	}
}

func TestReadNetworkInfoNoneSet(t *testing.T) {
	t.Setenv(envNetworkStatus, "")
	if info := readNetworkInfo(); info != nil {
		t.Errorf("expected nil when NETWORK_STATUS is unset, got %+v", info)
	}
}

func TestReadNetworkInfoPartial(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkType, "")
	t.Setenv(envNetworkIP, "10.0.0.5")

	info := readNetworkInfo()
	if info == nil {
		t.Fatal("expected non-nil NetworkInfo when NETWORK_STATUS is set")
	}
	if info.IP != "10.0.0.5" || info.Type != "" {
		t.Errorf("got %+v", info)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rotary.yaml")
	yaml := "dial:\n  reversed: true\nmqtt:\n  broker: tcp://broker:1883\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	env := map[string]string{"ROTARY_PIN_PULSE": "22"}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg, err := loadConfig(path, "", lookup)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Dial.Reversed {
		t.Error("reversed should come from the file")
	}
	if cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("broker: got %q", cfg.MQTT.Broker)
	}
	if cfg.GPIO.PinPulse != 22 {
		t.Errorf("pin_pulse: got %d, want 22 from env", cfg.GPIO.PinPulse)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	none := func(string) (string, bool) { return "", false }

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "", none); err == nil {
		t.Error("expected error for missing config file")
	}
	if _, err := loadConfig("", filepath.Join(t.TempDir(), "missing.env"), none); err == nil {
		t.Error("expected error for missing env file")
	}

	bad := func(k string) (string, bool) {
		if k == "ROTARY_PIN_DIAL" {
			return "seventeen", true
		}
		return "", false
	}
	if _, err := loadConfig("", "", bad); err == nil {
		t.Error("expected error for malformed env override")
	}

	invalid := func(k string) (string, bool) {
		if k == "ROTARY_INACTIVITY" {
			return "3s", true
		}
		return "", false
	}
	if _, err := loadConfig("", "", invalid); err == nil {
		t.Error("expected error for unsupported inactivity timeout")
	}
}

func TestOpenStoreEmptyPathIsMemory(t *testing.T) {
	s, err := openStore("")
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*store.MemoryStore); !ok {
		t.Errorf("expected MemoryStore, got %T", s)
	}
}

func TestWriteSlots(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()
	if err := mem.WriteSlot(ctx, 1, logic.NumberOf(5, 5, 5)); err != nil {
		t.Fatal(err)
	}
	if err := mem.WriteSlot(ctx, 7, logic.NumberOf(1, 2)); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeSlots(&buf, speeddial.NewManager(mem)); err != nil {
		t.Fatalf("writeSlots: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != logic.SlotCount {
		t.Fatalf("expected %d lines, got %d:\n%s", logic.SlotCount, len(lines), buf.String())
	}
	want := map[int]string{
		0: "redial  (dial 3): -",
		1: "slot 1  (dial 4): 555",
		7: "slot 7  (dial 0): 12",
	}
	for i, line := range want {
		if lines[i] != line {
			t.Errorf("line %d: got %q, want %q", i, lines[i], line)
		}
	}
}

func TestSignalName(t *testing.T) {
	if got := signalName(syscall.SIGINT); got != "SIGINT" {
		t.Errorf("got %q", got)
	}
	if got := signalName(syscall.SIGTERM); got != "SIGTERM" {
		t.Errorf("got %q", got)
	}
	if got := signalName(syscall.SIGHUP); got != "UNKNOWN" {
		t.Errorf("got %q", got)
	}
}

// blockingController plays its scripted wakes, then blocks until the
// context is cancelled, closing idle the first time it does.
type blockingController struct {
	*power.FakeController
	idle chan struct{}
}

func newBlockingController(wakes ...power.WakeReason) *blockingController {
	return &blockingController{
		FakeController: power.NewFakeController(wakes...),
		idle:           make(chan struct{}),
	}
}

func (b *blockingController) SleepUntilWake(ctx context.Context) (power.WakeReason, error) {
	if len(b.Wakes) > 0 {
		return b.FakeController.SleepUntilWake(ctx)
	}
	select {
	case <-b.idle:
	default:
		close(b.idle)
	}
	<-ctx.Done()
	return power.WakeNone, ctx.Err()
}

func repeat(n int, s gpio.Sample) []gpio.Sample {
	out := make([]gpio.Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// dialSamples scripts one gesture producing digit n.
func dialSamples(n int) []gpio.Sample {
	active := gpio.Sample{Dial: true}
	open := gpio.Sample{Dial: true, Pulse: true}
	out := repeat(9, active)
	for i := 0; i < n; i++ {
		out = append(out, repeat(5, open)...)
		out = append(out, repeat(5, active)...)
	}
	return append(out, repeat(3, gpio.Sample{})...)
}

type loopHarness struct {
	ctrl    *blockingController
	pub     *mqtt.FakePublisher
	tracker *status.Tracker
	sched   *scheduler.Scheduler
	synth   *tone.FakeSynthesizer
}

func newLoopHarness(t *testing.T, ctrl *blockingController, samples []gpio.Sample) *loopHarness {
	t.Helper()
	h := &loopHarness{
		ctrl:    ctrl,
		pub:     mqtt.NewFakePublisher(),
		tracker: status.NewTracker(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), status.Config{}),
		synth:   tone.NewFakeSynthesizer(),
	}
	h.pub.Connected = true
	cfg := scheduler.DefaultConfig()
	cfg.SampleInterval = 10 * time.Millisecond
	sched, err := scheduler.New(cfg, scheduler.Deps{
		Lines:      gpio.NewFakeReader(samples),
		Power:      ctrl,
		Synth:      h.synth,
		Dialer:     speeddial.NewManager(store.NewMemoryStore()),
		Events:     h.pub,
		Connection: h.pub,
		Tracker:    h.tracker,
		Sleep:      h.synth.Advance,
	})
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	h.sched = sched
	return h
}

func fixedNow() time.Time {
	return time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC)
}

// run starts runLoop and returns its error channel.
func (h *loopHarness) run(heartbeat <-chan time.Time, sig <-chan os.Signal) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- runLoop(h.sched, h.pub, h.pub, h.tracker, fixedNow, heartbeat, sig)
	}()
	return errCh
}

func waitIdle(t *testing.T, ctrl *blockingController) {
	t.Helper()
	select {
	case <-ctrl.idle:
	case <-time.After(5 * time.Second):
		t.Fatal("loop never went idle")
	}
}

func waitErr(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("runLoop did not return")
		return nil
	}
}

func TestRunLoopDialAndCommit(t *testing.T) {
	ctrl := newBlockingController(power.WakeLineChanged, power.WakeTimeout)
	h := newLoopHarness(t, ctrl, dialSamples(7))
	sig := make(chan os.Signal, 1)

	errCh := h.run(nil, sig)
	waitIdle(t, ctrl)
	sig <- syscall.SIGTERM
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	want := []logic.EventType{logic.EventDigit, logic.EventCommit}
	if got := h.pub.EventTypes(); !reflect.DeepEqual(got, want) {
		t.Errorf("events: got %v, want %v", got, want)
	}
	if got := h.synth.Codes(); !reflect.DeepEqual(got, []logic.Code{7}) {
		t.Errorf("tones: got %v, want [7]", got)
	}
	if snap := h.tracker.Snapshot(); snap.Redial != logic.NumberOf(7) {
		t.Errorf("tracker redial: got %v, want 7", snap.Redial)
	}
}

func TestRunLoopShutdownSIGINT(t *testing.T) {
	ctrl := newBlockingController()
	h := newLoopHarness(t, ctrl, nil)
	sig := make(chan os.Signal, 1)

	errCh := h.run(nil, sig)
	waitIdle(t, ctrl)
	sig <- syscall.SIGINT
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	if len(h.pub.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(h.pub.SystemEvents))
	}
	se := h.pub.SystemEvents[0]
	if se.Event != "SHUTDOWN" {
		t.Errorf("expected SHUTDOWN, got %q", se.Event)
	}
	if se.Reason != "SIGINT" {
		t.Errorf("expected reason SIGINT, got %q", se.Reason)
	}
	if !se.Retained {
		t.Error("expected Retained=true for SHUTDOWN")
	}
	if !se.Timestamp.Equal(fixedNow()) {
		t.Errorf("timestamp: got %v", se.Timestamp)
	}
	if !strings.Contains(string(h.pub.SystemPayloads[0]), `"reason":"SIGINT"`) {
		t.Errorf("payload missing reason: %s", h.pub.SystemPayloads[0])
	}
}

func TestRunLoopShutdownSIGTERM(t *testing.T) {
	ctrl := newBlockingController()
	h := newLoopHarness(t, ctrl, nil)
	sig := make(chan os.Signal, 1)

	errCh := h.run(nil, sig)
	waitIdle(t, ctrl)
	sig <- syscall.SIGTERM
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}
	if n := len(h.pub.SystemEvents); n != 1 || h.pub.SystemEvents[0].Reason != "SIGTERM" {
		t.Errorf("expected one SHUTDOWN with SIGTERM, got %+v", h.pub.SystemEvents)
	}
}

func TestRunLoopHeartbeat(t *testing.T) {
	ctrl := newBlockingController()
	h := newLoopHarness(t, ctrl, nil)
	sig := make(chan os.Signal, 1)
	tick := make(chan time.Time)

	errCh := h.run(tick, sig)
	waitIdle(t, ctrl)
	// Unbuffered sends complete only once the loop has taken each tick.
	tick <- fixedNow()
	tick <- fixedNow().Add(time.Minute)
	sig <- syscall.SIGTERM
	if err := waitErr(t, errCh); err != nil {
		t.Fatalf("runLoop returned error: %v", err)
	}

	var got []string
	for _, se := range h.pub.SystemEvents {
		got = append(got, se.Event)
	}
	want := []string{"HEARTBEAT", "HEARTBEAT", "SHUTDOWN"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("system events: got %v, want %v", got, want)
	}
	if h.pub.SystemEvents[0].Retained {
		t.Error("heartbeat should not be retained")
	}
	if !strings.Contains(string(h.pub.SystemPayloads[0]), `"event":"HEARTBEAT"`) {
		t.Errorf("heartbeat payload: %s", h.pub.SystemPayloads[0])
	}
}

func TestRunLoopHeartbeatIncludesNetworkInfo(t *testing.T) {
	t.Setenv(envNetworkStatus, "connected")
	t.Setenv(envNetworkIP, "192.168.1.77")

	tracker := status.NewTracker(fixedNow(), status.Config{})
	pub := mqtt.NewFakePublisher()
	publishStatus(pub, pub, tracker, fixedNow(), "HEARTBEAT", "")

	if len(pub.SystemPayloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(pub.SystemPayloads))
	}
	if !strings.Contains(string(pub.SystemPayloads[0]), "192.168.1.77") {
		t.Errorf("payload missing network IP: %s", pub.SystemPayloads[0])
	}
}

func TestPublishStatusNilPublisher(t *testing.T) {
	// Must not panic when MQTT is disabled.
	publishStatus(nil, nil, status.NewTracker(fixedNow(), status.Config{}), fixedNow(), "SHUTDOWN", "SIGTERM")
}

func TestPublishStatusError(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.PublishSystemError = errors.New("broker down")
	publishStatus(pub, pub, nil, fixedNow(), "HEARTBEAT", "")
	if len(pub.SystemEvents) != 0 {
		t.Errorf("expected nothing recorded, got %d", len(pub.SystemEvents))
	}
}

func TestRunLoopSchedulerErrorPublishesShutdown(t *testing.T) {
	// The plain fake controller fails once its script runs out.
	ctrl := newBlockingController()
	h := newLoopHarness(t, ctrl, nil)
	sched, err := scheduler.New(scheduler.DefaultConfig(), scheduler.Deps{
		Lines:  gpio.NewFakeReader(nil),
		Power:  power.NewFakeController(),
		Synth:  h.synth,
		Dialer: speeddial.NewManager(store.NewMemoryStore()),
		Events: h.pub,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = runLoop(sched, h.pub, h.pub, h.tracker, fixedNow, nil, make(chan os.Signal))
	if !errors.Is(err, power.ErrNoWakes) {
		t.Fatalf("expected ErrNoWakes, got %v", err)
	}
	if len(h.pub.SystemEvents) != 1 || h.pub.SystemEvents[0].Reason != "ERROR" {
		t.Errorf("expected SHUTDOWN with reason ERROR, got %+v", h.pub.SystemEvents)
	}
}
