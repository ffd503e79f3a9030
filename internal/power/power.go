// Package power provides the sleep/wake controller used by the dial loop.
// Interrupt sources only record a wake reason in a WakeCell; the foreground
// loop consumes it exactly once per wake.
package power

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// WakeReason identifies why the controller returned from sleep.
type WakeReason int32

const (
	WakeNone WakeReason = iota
	WakeLineChanged
	WakeTimeout
)

func (w WakeReason) String() string {
	switch w {
	case WakeLineChanged:
		return "LINE_CHANGED"
	case WakeTimeout:
		return "TIMEOUT"
	default:
		return "NONE"
	}
}

// TimeoutClass is one of the coarse watchdog intervals.
type TimeoutClass uint8

const (
	Timeout64ms TimeoutClass = iota
	Timeout128ms
	Timeout2s
	Timeout4s
	Timeout8s
)

var timeoutDurations = [...]time.Duration{
	Timeout64ms:  64 * time.Millisecond,
	Timeout128ms: 128 * time.Millisecond,
	Timeout2s:    2 * time.Second,
	Timeout4s:    4 * time.Second,
	Timeout8s:    8 * time.Second,
}

// Duration returns the interval of the class.
func (c TimeoutClass) Duration() time.Duration {
	if int(c) >= len(timeoutDurations) {
		return 0
	}
	return timeoutDurations[c]
}

func (c TimeoutClass) String() string {
	if d := c.Duration(); d > 0 {
		return d.String()
	}
	return "invalid"
}

// ParseTimeoutClass maps a duration to its class. Only the exact intervals
// supported by the watchdog are accepted.
func ParseTimeoutClass(d time.Duration) (TimeoutClass, error) {
	for c, cd := range timeoutDurations {
		if cd == d {
			return TimeoutClass(c), nil
		}
	}
	return 0, fmt.Errorf("unsupported timeout %v (want 64ms, 128ms, 2s, 4s or 8s)", d)
}

// Controller puts the loop to sleep until a wake source fires.
type Controller interface {
	// SleepUntilWake blocks until the dial line asserts or the armed
	// timeout expires, then disarms the timeout.
	SleepUntilWake(ctx context.Context) (WakeReason, error)

	// ArmTimeout starts the inactivity watchdog.
	ArmTimeout(class TimeoutClass)

	// DisarmTimeout stops the watchdog if running.
	DisarmTimeout()
}

// WakeCell holds the wake reason recorded by interrupt sources. The
// foreground loop is its only reader.
type WakeCell struct {
	reason atomic.Int32
	notify chan struct{}
}

// NewWakeCell returns an empty WakeCell.
func NewWakeCell() *WakeCell {
	return &WakeCell{notify: make(chan struct{}, 1)}
}

// Set records a wake reason. A pending timeout is never downgraded to a
// line change.
func (c *WakeCell) Set(r WakeReason) {
	if r == WakeLineChanged {
		c.reason.CompareAndSwap(int32(WakeNone), int32(r))
	} else {
		c.reason.Store(int32(r))
	}
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Take consumes the recorded reason.
func (c *WakeCell) Take() WakeReason {
	return WakeReason(c.reason.Swap(int32(WakeNone)))
}

// Clear drops r if it is the recorded reason.
func (c *WakeCell) Clear(r WakeReason) {
	c.reason.CompareAndSwap(int32(r), int32(WakeNone))
}

// Wait returns a channel that receives after each Set.
func (c *WakeCell) Wait() <-chan struct{} {
	return c.notify
}
