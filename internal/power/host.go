package power

import (
	"context"
	"sync"
	"time"
)

// HostController implements Controller with a timer-backed watchdog and an
// externally fed line wake (e.g. a GPIO edge handler calling LineChanged).
type HostController struct {
	cell *WakeCell

	// level reports whether the dial line is currently asserted. The line
	// wake is level triggered: sleeping while asserted returns immediately.
	level func() bool

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped on every arm and disarm
}

// NewHostController creates a controller. level may be nil.
func NewHostController(level func() bool) *HostController {
	return &HostController{cell: NewWakeCell(), level: level}
}

// LineChanged is the line interrupt entry point. It only records the wake.
func (h *HostController) LineChanged() {
	h.cell.Set(WakeLineChanged)
}

// ArmTimeout starts the watchdog, replacing any running one.
func (h *HostController) ArmTimeout(class TimeoutClass) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.gen++
	gen := h.gen
	h.timer = time.AfterFunc(class.Duration(), func() { h.fire(gen) })
}

// fire records the timeout unless the watchdog that armed it has since been
// disarmed or replaced.
func (h *HostController) fire(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.gen {
		return
	}
	h.cell.Set(WakeTimeout)
}

// DisarmTimeout stops the watchdog. A timeout that fired after the current
// wake was taken is dropped so the next sleep does not return it.
func (h *HostController) DisarmTimeout() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gen++
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.cell.Clear(WakeTimeout)
}

// SleepUntilWake blocks until a wake reason is recorded or ctx is done.
func (h *HostController) SleepUntilWake(ctx context.Context) (WakeReason, error) {
	defer h.DisarmTimeout()

	if h.level != nil {
		// Edges left over from the last gesture's contact bounce are stale;
		// the level alone decides whether the dial is off normal now.
		h.cell.Clear(WakeLineChanged)
		if h.level() {
			h.cell.Set(WakeLineChanged)
		}
	}

	for {
		if r := h.cell.Take(); r != WakeNone {
			return r, nil
		}
		select {
		case <-ctx.Done():
			return WakeNone, ctx.Err()
		case <-h.cell.Wait():
		}
	}
}
