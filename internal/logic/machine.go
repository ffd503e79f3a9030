package logic

// Machine is the dial command state machine. It owns the menu state and the
// pending number, and returns the side effects each input requires instead
// of performing them.
type Machine struct {
	state   MenuState
	pending Number
	count   int
	target  Slot
}

// NewMachine returns a Machine in the Dial state with an empty pending number.
func NewMachine() *Machine {
	m := &Machine{}
	m.clearPending()
	return m
}

func (m *Machine) clearPending() {
	m.pending = EmptyNumber()
	m.count = 0
	m.target = SlotRedial
}

// append adds d to the pending number and reports whether there was room.
func (m *Machine) append(d Code) bool {
	if m.count >= NumberSize {
		return false
	}
	m.pending[m.count] = d
	m.count++
	return true
}

// Dispatch feeds one resolved digit into the state machine.
func (m *Machine) Dispatch(d Code) []Action {
	// STAR and POUND from the L1 menu are redispatched as plain digits.
	for {
		switch m.state {
		case StateDial:
			if !m.append(d) {
				m.clearPending()
			}
			m.target = SlotRedial
			return []Action{tone(d, ToneDuration)}

		case StateSpecialL1:
			m.state = StateDial
			switch d {
			case PositionStar:
				d = CodeStar
				continue
			case PositionPound:
				d = CodePound
				continue
			case PositionRedial:
				return []Action{{Kind: ActionDialOut, Slot: SlotRedial}}
			}
			if slot, ok := SlotForDigit(d); ok {
				return []Action{{Kind: ActionDialOut, Slot: slot}}
			}
			return nil

		case StateSpecialL2:
			slot, ok := SlotForDigit(d)
			if !ok {
				m.state = StateDial
				return []Action{tone(CodeTuneDesc, ErrorToneDuration)}
			}
			m.clearPending()
			m.target = slot
			m.state = StateProgramSpeedDial
			return nil

		case StateSpecialL3:
			m.state = StateDial
			return nil

		case StateProgramSpeedDial:
			if !m.append(d) {
				m.state = StateDial
				m.clearPending()
				return []Action{tone(CodeTuneDesc, ErrorToneDuration)}
			}
			return []Action{tone(CodeBeepLow, ToneDuration)}

		default:
			// Unknown menu: fall back to Dial and drop the digit.
			m.state = StateDial
			return nil
		}
	}
}

// Escalate moves the menu to the given hold level and returns its cue.
func (m *Machine) Escalate(l Level) []Action {
	switch l {
	case Level1:
		m.state = StateSpecialL1
		return []Action{tone(CodeBeepLow, ToneDuration)}
	case Level2:
		m.state = StateSpecialL2
		return []Action{tone(CodeTuneAsc, ToneDuration)}
	case Level3:
		m.state = StateSpecialL3
		return []Action{tone(CodeTuneDesc, ErrorToneDuration)}
	}
	return nil
}

// Abandon handles a gesture that ended without pulses: any menu reached by
// holding the dial is left.
func (m *Machine) Abandon() {
	m.state = StateDial
}

// Timeout handles the inactivity timeout: the pending number is committed to
// the targeted slot, confirmed with a beep when programming, and the machine
// returns to Dial.
func (m *Machine) Timeout() []Action {
	var actions []Action
	if m.count > 0 {
		actions = append(actions, Action{Kind: ActionCommit, Slot: m.target, Number: m.pending})
		if m.state == StateProgramSpeedDial {
			actions = append(actions, tone(CodeBeep, ToneDuration))
		}
	}
	m.state = StateDial
	m.clearPending()
	return actions
}

// State returns the current menu state.
func (m *Machine) State() MenuState {
	return m.state
}

// Pending returns a copy of the pending number and its length.
func (m *Machine) Pending() (Number, int) {
	return m.pending, m.count
}

// HasPending reports whether a number is being entered.
func (m *Machine) HasPending() bool {
	return m.count > 0
}

// Target returns the slot the pending number will be committed to.
func (m *Machine) Target() Slot {
	return m.target
}

// SpecialEnabled reports whether hold escalation may start from the current state.
func (m *Machine) SpecialEnabled() bool {
	return m.state == StateDial
}
