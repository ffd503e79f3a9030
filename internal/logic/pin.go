package logic

// Debounce history patterns. The newest sample is bit 0.
const (
	pinMask         = 0b11000111
	pinBecameActive = 0b00000111
	pinBecameIdle   = 0b11000000
)

// Pin debounces one digital line sampled at a fixed cadence.
// The level only changes once the last three samples agree and the two
// oldest retained samples show the previous level.
type Pin struct {
	history  uint8
	asserted bool
	changed  bool
}

// Preset forces the pin to a known level, clearing the change flag.
func (p *Pin) Preset(asserted bool) {
	p.asserted = asserted
	p.changed = false
	if asserted {
		p.history = 0xFF
	} else {
		p.history = 0x00
	}
}

// Sample shifts one raw reading into the history and returns the debounced
// level and whether this sample caused a transition.
func (p *Pin) Sample(asserted bool) (level, changed bool) {
	p.history <<= 1
	if asserted {
		p.history |= 1
	}

	switch p.history & pinMask {
	case pinBecameIdle:
		p.history = 0x00
		p.asserted = false
		p.changed = true
	case pinBecameActive:
		p.history = 0xFF
		p.asserted = true
		p.changed = true
	default:
		p.changed = false
	}
	return p.asserted, p.changed
}

// Asserted returns the debounced level.
func (p *Pin) Asserted() bool {
	return p.asserted
}

// Changed reports whether the last sample caused a transition.
func (p *Pin) Changed() bool {
	return p.changed
}
