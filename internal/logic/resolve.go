package logic

// MaxPulses is the largest tally a single gesture can produce (digit 0).
const MaxPulses = 10

// Resolve maps a pulse tally to a digit. Tallies outside 1..10 are invalid.
// Ten pulses always mean 0. With reversed set (New Zealand style dials) the
// remaining positions are mirrored, so one pulse is 9 and nine pulses are 1.
func Resolve(tally int, reversed bool) (Code, bool) {
	if tally < 1 || tally > MaxPulses {
		return CodeOff, false
	}
	if tally == MaxPulses {
		return 0, true
	}
	if reversed {
		return Code(MaxPulses - tally), true
	}
	return Code(tally), true
}
