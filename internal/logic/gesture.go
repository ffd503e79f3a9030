package logic

import "time"

// Gesture decodes one assertion of the dial line: it debounces both lines,
// counts pulses and drives hold escalation until the dial returns to rest.
type Gesture struct {
	dial  Pin
	pulse Pin
	tally int
	esc   *Escalator
}

// NewGesture returns a Gesture using the given hold period for escalation.
func NewGesture(hold time.Duration) *Gesture {
	return &Gesture{esc: NewEscalator(hold)}
}

// Arm presets the dial line to idle ahead of the settle window.
func (g *Gesture) Arm() {
	g.dial.Preset(false)
}

// Settle feeds one dial sample during the settle window and reports whether
// the line has debounced to asserted.
func (g *Gesture) Settle(dialActive bool) bool {
	level, _ := g.dial.Sample(dialActive)
	return level
}

// Begin starts pulse counting. The pulse line is preset to its current
// level. When special is true, hold escalation is watched from now.
func (g *Gesture) Begin(pulseAsserted bool, now time.Duration, special bool) {
	g.pulse.Preset(pulseAsserted)
	g.tally = 0
	if special {
		g.esc.Start(now)
	} else {
		g.esc.Cancel()
	}
}

// Escalation reports a newly reached hold level, if any.
func (g *Gesture) Escalation(now time.Duration) (Level, bool) {
	return g.esc.Check(now)
}

// Mark restarts the escalation hold period.
func (g *Gesture) Mark(now time.Duration) {
	g.esc.Mark(now)
}

// Sample feeds one reading of both lines and reports whether the dial has
// returned to rest, ending the gesture. A pulse cancels escalation.
func (g *Gesture) Sample(dialActive, pulseAsserted bool) (ended bool) {
	if level, changed := g.pulse.Sample(pulseAsserted); level && changed {
		g.esc.Cancel()
		g.tally++
	}
	active, _ := g.dial.Sample(dialActive)
	return !active
}

// Tally returns the number of pulses counted so far.
func (g *Gesture) Tally() int {
	return g.tally
}

// Escalating reports whether hold escalation is still being watched.
func (g *Gesture) Escalating() bool {
	return g.esc.Active()
}
