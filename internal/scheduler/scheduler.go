// Package scheduler runs the foreground dial loop: it sleeps until the dial
// line asserts or the inactivity watchdog fires, samples one gesture at a
// fixed cadence, and carries out the state machine's actions.
//
// All dialer state (menu, pending number, redial slot) is owned by the loop.
// Wake sources only record a reason in the power controller.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sweeney/rotary-dial/internal/gpio"
	"github.com/sweeney/rotary-dial/internal/logic"
	"github.com/sweeney/rotary-dial/internal/metrics"
	"github.com/sweeney/rotary-dial/internal/power"
	"github.com/sweeney/rotary-dial/internal/speeddial"
	"github.com/sweeney/rotary-dial/internal/status"
	"github.com/sweeney/rotary-dial/internal/tone"
)

// Config holds the timing and policy of the loop.
type Config struct {
	SampleInterval   time.Duration
	SettleWindow     time.Duration
	HoldThreshold    time.Duration
	Inactivity       power.TimeoutClass
	Reversed         bool
	SpecialFunctions bool
}

// DefaultConfig returns the standard timings: 100µs sampling, a 500ms settle
// window, 2s hold per escalation level and a 4s inactivity timeout.
func DefaultConfig() Config {
	return Config{
		SampleInterval:   100 * time.Microsecond,
		SettleWindow:     500 * time.Millisecond,
		HoldThreshold:    2 * time.Second,
		Inactivity:       power.Timeout4s,
		SpecialFunctions: true,
	}
}

// EventSink receives dial events. mqtt.Publisher satisfies it.
type EventSink interface {
	Publish(event logic.Event) error
}

// ConnectionStatus reports whether the event transport is connected.
type ConnectionStatus interface {
	IsConnected() bool
}

// Deps are the collaborators of the loop. Lines, Power, Synth and Dialer are
// required; the rest may be left nil.
type Deps struct {
	Lines      gpio.Reader
	Power      power.Controller
	Synth      tone.Synthesizer
	Dialer     *speeddial.Manager
	Events     EventSink
	Connection ConnectionStatus
	Metrics    metrics.Recorder
	Tracker    *status.Tracker

	// Now stamps published events. Defaults to time.Now.
	Now func() time.Time

	// Sleep waits one sample interval. Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Scheduler is the foreground dial loop.
type Scheduler struct {
	cfg  Config
	deps Deps

	machine *logic.Machine
	gesture *logic.Gesture
	counts  logic.EventCounts
}

// New creates a Scheduler in the Dial state.
func New(cfg Config, deps Deps) (*Scheduler, error) {
	if deps.Lines == nil || deps.Power == nil || deps.Synth == nil || deps.Dialer == nil {
		return nil, errors.New("scheduler: lines, power, synth and dialer are required")
	}
	if cfg.SampleInterval <= 0 {
		return nil, fmt.Errorf("scheduler: sample interval must be positive, got %v", cfg.SampleInterval)
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NoopRecorder{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	return &Scheduler{
		cfg:     cfg,
		deps:    deps,
		machine: logic.NewMachine(),
		gesture: logic.NewGesture(cfg.HoldThreshold),
	}, nil
}

// Run loops until ctx is cancelled or the power controller fails.
// Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := s.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// Step runs one loop iteration: sleep, then handle a timeout or one gesture.
func (s *Scheduler) Step(ctx context.Context) error {
	if s.machine.HasPending() {
		s.deps.Power.ArmTimeout(s.cfg.Inactivity)
	}

	reason, err := s.deps.Power.SleepUntilWake(ctx)
	if err != nil {
		return fmt.Errorf("sleep: %w", err)
	}
	s.deps.Metrics.IncWake(reason.String())
	if s.deps.Tracker != nil {
		s.deps.Tracker.SetLastWake(reason.String())
	}

	switch reason {
	case power.WakeTimeout:
		s.timeout(ctx)
	case power.WakeLineChanged:
		s.gestureCycle(ctx)
	}

	s.updateStatus()
	return nil
}

func (s *Scheduler) timeout(ctx context.Context) {
	_, count := s.machine.Pending()
	log.Printf("scheduler: inactivity timeout (state=%s pending=%d)", s.machine.State(), count)
	s.perform(ctx, s.machine.State(), s.machine.Timeout())
}

// gestureCycle decodes one gesture from settle to release and dispatches it.
func (s *Scheduler) gestureCycle(ctx context.Context) {
	settled, err := s.settle()
	if err != nil {
		log.Printf("scheduler: gpio read error: %v", err)
		return
	}
	if !settled {
		s.deps.Metrics.IncGesture(metrics.GestureNoise)
		return
	}
	s.counts.Gestures++

	_, pulse, err := s.deps.Lines.Read()
	if err != nil {
		log.Printf("scheduler: gpio read error: %v", err)
		return
	}
	special := s.cfg.SpecialFunctions && s.machine.SpecialEnabled()
	s.gesture.Begin(pulse, s.deps.Synth.Elapsed(), special)

	for {
		if level, ok := s.gesture.Escalation(s.deps.Synth.Elapsed()); ok {
			s.escalate(ctx, level)
			s.gesture.Mark(s.deps.Synth.Elapsed())
		}

		s.deps.Sleep(s.cfg.SampleInterval)
		dial, pulse, err := s.deps.Lines.Read()
		if err != nil {
			log.Printf("scheduler: gpio read error, abandoning gesture: %v", err)
			s.machine.Abandon()
			s.deps.Metrics.IncGesture(metrics.GestureAbandoned)
			return
		}
		if s.gesture.Sample(dial, pulse) {
			break
		}
		if ctx.Err() != nil {
			return
		}
	}

	s.resolve(ctx, s.gesture.Tally())
}

// settle waits up to the settle window for the dial line to debounce to
// asserted. The window is measured on the synthesizer clock, not by counting
// samples, since sleeps overshoot short intervals.
func (s *Scheduler) settle() (bool, error) {
	s.gesture.Arm()
	start := s.deps.Synth.Elapsed()
	for s.deps.Synth.Elapsed()-start < s.cfg.SettleWindow {
		dial, _, err := s.deps.Lines.Read()
		if err != nil {
			return false, err
		}
		if s.gesture.Settle(dial) {
			return true, nil
		}
		s.deps.Sleep(s.cfg.SampleInterval)
	}
	return false, nil
}

func (s *Scheduler) escalate(ctx context.Context, level logic.Level) {
	s.counts.Escalations++
	s.deps.Metrics.IncEscalation(level.String())
	actions := s.machine.Escalate(level)
	log.Printf("scheduler: escalated to %s", s.machine.State())
	s.publish(s.event(logic.EventEscalate))
	s.perform(ctx, s.machine.State(), actions)
}

func (s *Scheduler) resolve(ctx context.Context, tally int) {
	if tally == 0 {
		// Held without dialing: leave any menu reached by escalation.
		s.machine.Abandon()
		s.deps.Metrics.IncGesture(metrics.GestureAbandoned)
		return
	}

	digit, ok := logic.Resolve(tally, s.cfg.Reversed)
	if !ok {
		log.Printf("scheduler: discarded gesture (tally=%d)", tally)
		s.counts.Discarded++
		s.deps.Metrics.IncGesture(metrics.GestureInvalid)
		e := s.event(logic.EventDiscard)
		e.Tally = tally
		s.publish(e)
		return
	}

	state := s.machine.State()
	log.Printf("scheduler: digit %s (tally=%d state=%s)", digit, tally, state)
	s.counts.Digits++
	s.deps.Metrics.IncGesture(metrics.GestureDigit)
	s.deps.Metrics.IncDigit(state.String())
	if s.deps.Tracker != nil {
		s.deps.Tracker.SetLastDigit(digit)
	}

	e := s.event(logic.EventDigit)
	e.State = state
	e.Digit = digit
	e.Tally = tally
	s.publish(e)

	s.perform(ctx, state, s.machine.Dispatch(digit))
}

// perform carries out state machine actions in order. state is the menu the
// actions were produced in.
func (s *Scheduler) perform(ctx context.Context, state logic.MenuState, actions []logic.Action) {
	for _, a := range actions {
		switch a.Kind {
		case logic.ActionTone:
			if err := s.deps.Synth.GenerateTone(a.Code, a.Duration); err != nil {
				log.Printf("scheduler: tone %s: %v", a.Code, err)
			}

		case logic.ActionDialOut:
			played, err := s.deps.Dialer.DialOut(ctx, a.Slot, s.deps.Synth)
			if err != nil {
				log.Printf("scheduler: dial out slot %d failed after %d digits: %v", a.Slot, played, err)
				continue
			}
			log.Printf("scheduler: dialed out slot %d (%d digits)", a.Slot, played)
			s.counts.DialOuts++
			s.deps.Metrics.IncDialOut(int(a.Slot))
			e := s.event(logic.EventDialOut)
			e.State = state
			e.Slot = a.Slot
			e.Played = played
			s.publish(e)

		case logic.ActionCommit:
			written, err := s.deps.Dialer.Append(ctx, a.Slot, a.Number)
			if err != nil {
				log.Printf("scheduler: commit slot %d: %v", a.Slot, err)
				continue
			}
			log.Printf("scheduler: committed %q to slot %d (written=%t)", a.Number, a.Slot, written)
			s.counts.Commits++
			if a.Slot == logic.SlotRedial && s.deps.Tracker != nil {
				s.deps.Tracker.SetRedial(a.Number)
			}
			s.deps.Metrics.IncCommit(int(a.Slot), written)
			e := s.event(logic.EventCommit)
			e.State = state
			e.Slot = a.Slot
			e.Number = a.Number.String()
			s.publish(e)
		}
	}
}

func (s *Scheduler) event(typ logic.EventType) logic.Event {
	return logic.Event{
		Timestamp: s.deps.Now(),
		Type:      typ,
		State:     s.machine.State(),
		Digit:     logic.CodeOff,
		Slot:      logic.NoSlot,
	}
}

func (s *Scheduler) publish(e logic.Event) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.Publish(e); err != nil {
		log.Printf("scheduler: publish error: %v", err)
		// Don't stop dialing on publish failure
	}
}

func (s *Scheduler) updateStatus() {
	pending, count := s.machine.Pending()
	s.deps.Metrics.SetPending(count)
	if s.deps.Tracker == nil {
		return
	}
	s.deps.Tracker.Update(s.machine.State(), pending, count, s.machine.Target(), s.counts)
	if s.deps.Connection != nil {
		s.deps.Tracker.SetMQTTConnected(s.deps.Connection.IsConnected())
	}
}

// State returns the current menu state.
func (s *Scheduler) State() logic.MenuState {
	return s.machine.State()
}

// Pending returns the number being entered and its length.
func (s *Scheduler) Pending() (logic.Number, int) {
	return s.machine.Pending()
}

// Counts returns the event counters since startup.
func (s *Scheduler) Counts() logic.EventCounts {
	return s.counts
}
