package power

import (
	"context"
	"errors"
)

// ErrNoWakes is returned by FakeController when its script is exhausted.
var ErrNoWakes = errors.New("power: no scripted wakes left")

// FakeController is a test double that returns scripted wake reasons.
type FakeController struct {
	// Wakes contains scripted reasons. Each SleepUntilWake consumes one.
	Wakes []WakeReason

	// Armed records every ArmTimeout call in order.
	Armed []TimeoutClass

	// Disarms counts DisarmTimeout calls.
	Disarms int

	// Sleeps counts SleepUntilWake calls.
	Sleeps int

	// armed is true between ArmTimeout and the next wake or disarm.
	armed bool

	// OnSleep, if set, is called before each scripted wake is returned.
	OnSleep func(r WakeReason)
}

// NewFakeController creates a FakeController with the given wakes.
func NewFakeController(wakes ...WakeReason) *FakeController {
	return &FakeController{Wakes: wakes}
}

// SleepUntilWake returns the next scripted reason.
func (f *FakeController) SleepUntilWake(ctx context.Context) (WakeReason, error) {
	if err := ctx.Err(); err != nil {
		return WakeNone, err
	}
	f.Sleeps++
	if len(f.Wakes) == 0 {
		return WakeNone, ErrNoWakes
	}
	r := f.Wakes[0]
	f.Wakes = f.Wakes[1:]
	f.armed = false
	if f.OnSleep != nil {
		f.OnSleep(r)
	}
	return r, nil
}

// ArmTimeout records the armed class.
func (f *FakeController) ArmTimeout(class TimeoutClass) {
	f.Armed = append(f.Armed, class)
	f.armed = true
}

// DisarmTimeout records the disarm.
func (f *FakeController) DisarmTimeout() {
	f.Disarms++
	f.armed = false
}

// IsArmed reports whether a timeout is currently armed.
func (f *FakeController) IsArmed() bool {
	return f.armed
}
