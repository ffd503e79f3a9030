package logic

import "time"

// Level is a special function menu depth reached by holding the dial.
type Level uint8

const (
	LevelNone Level = iota
	Level1
	Level2
	Level3
)

func (l Level) String() string {
	switch l {
	case Level1:
		return "L1"
	case Level2:
		return "L2"
	case Level3:
		return "L3"
	default:
		return "NONE"
	}
}

// Escalator detects long holds of the dial with no pulses. It is driven by
// a monotonically increasing elapsed counter and tracks its progress
// separately from the menu state.
type Escalator struct {
	hold   time.Duration
	next   Level
	since  time.Duration
	active bool
}

// NewEscalator returns an Escalator that fires after each hold period.
func NewEscalator(hold time.Duration) *Escalator {
	return &Escalator{hold: hold}
}

// Start begins watching for the first level at elapsed time now.
func (e *Escalator) Start(now time.Duration) {
	e.active = true
	e.next = Level1
	e.since = now
}

// Cancel stops escalation for the rest of the gesture.
func (e *Escalator) Cancel() {
	e.active = false
	e.next = LevelNone
}

// Active reports whether a further level can still fire.
func (e *Escalator) Active() bool {
	return e.active
}

// Check returns the level reached if a full hold period elapsed since the
// last mark. Level3 is terminal.
func (e *Escalator) Check(now time.Duration) (Level, bool) {
	if !e.active || now-e.since < e.hold {
		return LevelNone, false
	}
	reached := e.next
	if reached == Level3 {
		e.Cancel()
	} else {
		e.next++
	}
	e.since = now
	return reached, true
}

// Mark restarts the hold period at now. Used after an escalation tone so
// the time spent signalling does not count toward the next level.
func (e *Escalator) Mark(now time.Duration) {
	e.since = now
}
