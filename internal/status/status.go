// Package status provides a thread-safe status tracker for the rotary-dial daemon.
// It is read by HTTP handlers and by the lifecycle events published to MQTT.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/rotary-dial/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	SampleUs         int64
	SettleMs         int64
	HoldMs           int64
	InactivityMs     int64
	Reversed         bool
	SpecialFunctions bool
	Chip             string
	PinDial          int
	PinPulse         int
	Broker           string
	HTTPPort         string
	DBPath           string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	State         logic.MenuState
	Pending       logic.Number
	PendingCount  int
	Target        logic.Slot
	Redial        logic.Number
	LastDigit     logic.Code
	LastWake      string
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Pending:   logic.EmptyNumber(),
			Redial:    logic.EmptyNumber(),
			LastDigit: logic.CodeOff,
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the menu state, pending number and event counts.
// Called by the scheduler after every wake.
func (t *Tracker) Update(state logic.MenuState, pending logic.Number, count int, target logic.Slot, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.Pending = pending
	t.snap.PendingCount = count
	t.snap.Target = target
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetRedial records the content of the volatile redial slot.
func (t *Tracker) SetRedial(n logic.Number) {
	t.mu.Lock()
	t.snap.Redial = n
	t.mu.Unlock()
}

// SetLastDigit records the most recently resolved digit.
func (t *Tracker) SetLastDigit(d logic.Code) {
	t.mu.Lock()
	t.snap.LastDigit = d
	t.mu.Unlock()
}

// SetLastWake records the reason of the most recent wake.
func (t *Tracker) SetLastWake(reason string) {
	t.mu.Lock()
	t.snap.LastWake = reason
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
