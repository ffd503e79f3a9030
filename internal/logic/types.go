// Package logic contains the pure decoding core of the rotary dial converter:
// line debounce, pulse resolution, hold escalation and the dial command state
// machine. This package has NO external dependencies (no GPIO, MQTT, OS, or
// time.Sleep). Time is always injectable via time.Duration parameters taken
// from a free-running counter.
package logic

import (
	"strings"
	"time"
)

// Code is a digit code understood by the tone synthesizer.
// Values 0-11 are dialable (0-9, STAR, POUND); negative values are signals.
type Code int8

const (
	CodeOff      Code = -1
	CodeBeep     Code = -10
	CodeTuneAsc  Code = -11
	CodeTuneDesc Code = -12
	CodeBeepLow  Code = -13
	CodeStar     Code = 10
	CodePound    Code = 11
)

// Tone durations used by the dialer.
const (
	ToneDuration      = 200 * time.Millisecond
	ErrorToneDuration = 800 * time.Millisecond
)

// IsDialable reports whether c is a digit, STAR or POUND.
func (c Code) IsDialable() bool {
	return c >= 0 && c <= CodePound
}

func (c Code) String() string {
	switch {
	case c >= 0 && c <= 9:
		return string(rune('0' + c))
	case c == CodeStar:
		return "*"
	case c == CodePound:
		return "#"
	case c == CodeOff:
		return "OFF"
	case c == CodeBeep:
		return "BEEP"
	case c == CodeBeepLow:
		return "BEEP_LOW"
	case c == CodeTuneAsc:
		return "TUNE_ASC"
	case c == CodeTuneDesc:
		return "TUNE_DESC"
	default:
		return "INVALID"
	}
}

// NumberSize is the capacity of a pending number and of every speed dial slot.
const NumberSize = 30

// Number is a fixed-capacity digit sequence. Unused positions hold CodeOff.
type Number [NumberSize]Code

// EmptyNumber returns a Number with every position unset.
func EmptyNumber() Number {
	var n Number
	for i := range n {
		n[i] = CodeOff
	}
	return n
}

// NumberOf builds a Number from the given codes. Codes past NumberSize are dropped.
func NumberOf(codes ...Code) Number {
	n := EmptyNumber()
	copy(n[:], codes)
	return n
}

// Digits returns the dialable codes of n in order, skipping unset or invalid entries.
func (n Number) Digits() []Code {
	var out []Code
	for _, c := range n {
		if c.IsDialable() {
			out = append(out, c)
		}
	}
	return out
}

// String renders the dialable codes of n, e.g. "52*1".
func (n Number) String() string {
	var b strings.Builder
	for _, c := range n.Digits() {
		b.WriteString(c.String())
	}
	return b.String()
}

// MenuState is the active mode of the dial command state machine.
type MenuState uint8

const (
	StateDial MenuState = iota
	StateSpecialL1
	StateSpecialL2
	StateSpecialL3
	StateProgramSpeedDial
)

func (s MenuState) String() string {
	switch s {
	case StateDial:
		return "DIAL"
	case StateSpecialL1:
		return "SPECIAL_L1"
	case StateSpecialL2:
		return "SPECIAL_L2"
	case StateSpecialL3:
		return "SPECIAL_L3"
	case StateProgramSpeedDial:
		return "PROGRAM_SPEED_DIAL"
	default:
		return "UNKNOWN"
	}
}

// Slot identifies a speed dial location. Slot 0 is the volatile redial slot.
type Slot int8

const (
	SlotRedial Slot = 0
	SlotCount       = 8
	NoSlot     Slot = -1
)

// Dial positions with a special meaning in the special function menus.
const (
	PositionStar   Code = 1
	PositionPound  Code = 2
	PositionRedial Code = 3
)

// slotByDigit maps a dialed digit to its speed dial slot (-1 = none).
var slotByDigit = [10]Slot{
	7,      // 0
	NoSlot, // 1 - *
	NoSlot, // 2 - #
	NoSlot, // 3 - redial
	1, 2, 3, 4, 5, 6,
}

// SlotForDigit returns the speed dial slot programmed by digit d.
func SlotForDigit(d Code) (Slot, bool) {
	if d < 0 || d > 9 {
		return NoSlot, false
	}
	s := slotByDigit[d]
	return s, s != NoSlot
}

// Position returns the dial position that selects s in the special
// function menus.
func (s Slot) Position() (Code, bool) {
	if s == SlotRedial {
		return PositionRedial, true
	}
	for d, slot := range slotByDigit {
		if slot != NoSlot && slot == s {
			return Code(d), true
		}
	}
	return CodeOff, false
}

// Persisted reports whether the slot lives in the persistent store.
func (s Slot) Persisted() bool {
	return s > SlotRedial && s < SlotCount
}

// Valid reports whether s is within 0..SlotCount-1.
func (s Slot) Valid() bool {
	return s >= 0 && s < SlotCount
}

// ActionKind identifies a side effect requested by the state machine.
type ActionKind string

const (
	ActionTone    ActionKind = "TONE"
	ActionDialOut ActionKind = "DIAL_OUT"
	ActionCommit  ActionKind = "COMMIT"
)

// Action is a side effect the scheduler must carry out, in order.
type Action struct {
	Kind     ActionKind
	Code     Code          // ActionTone
	Duration time.Duration // ActionTone
	Slot     Slot          // ActionDialOut, ActionCommit
	Number   Number        // ActionCommit
}

func tone(c Code, d time.Duration) Action {
	return Action{Kind: ActionTone, Code: c, Duration: d}
}

// EventType represents a dialer event to be published.
type EventType string

const (
	EventDigit    EventType = "DIGIT"
	EventEscalate EventType = "ESCALATE"
	EventDiscard  EventType = "DISCARD"
	EventCommit   EventType = "COMMIT"
	EventDialOut  EventType = "DIAL_OUT"
)

// Event represents something that happened on the dial, for publishing.
type Event struct {
	Timestamp time.Time
	Type      EventType
	State     MenuState
	Digit     Code
	Tally     int // pulses counted (DIGIT, DISCARD)
	Played    int // tones played (DIAL_OUT)
	Slot      Slot
	Number    string
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Gestures    int
	Digits      int
	Discarded   int
	Escalations int
	Commits     int
	DialOuts    int
}
