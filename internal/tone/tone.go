// Package tone defines the tone synthesizer used to reproduce dialed digits
// as DTMF and to give audible feedback.
package tone

import (
	"time"

	"github.com/sweeney/rotary-dial/internal/logic"
)

// Synthesizer produces tones and exposes a free-running elapsed counter.
type Synthesizer interface {
	// GenerateTone plays code for d and blocks until it has finished.
	// CodeOff produces silence for d.
	GenerateTone(code logic.Code, d time.Duration) error

	// Elapsed returns a monotonically increasing time counter.
	Elapsed() time.Duration
}

// Tone is one generated tone.
type Tone struct {
	Code     logic.Code
	Duration time.Duration
}

// Pair is the frequency pair of a tone in Hz. Single tones leave High zero.
// Tunes sweep from Low to High.
type Pair struct {
	Low  int
	High int
}

var (
	rows = [4]int{697, 770, 852, 941}
	cols = [3]int{1209, 1336, 1477}
)

// keypad position (row, column) of each dialable code.
var keypad = [12][2]int{
	0:               {3, 1},
	1:               {0, 0},
	2:               {0, 1},
	3:               {0, 2},
	4:               {1, 0},
	5:               {1, 1},
	6:               {1, 2},
	7:               {2, 0},
	8:               {2, 1},
	9:               {2, 2},
	logic.CodeStar:  {3, 0},
	logic.CodePound: {3, 2},
}

// Frequencies returns the frequency pair for code.
func Frequencies(code logic.Code) (Pair, bool) {
	if code.IsDialable() {
		pos := keypad[code]
		return Pair{Low: rows[pos[0]], High: cols[pos[1]]}, true
	}
	switch code {
	case logic.CodeBeep:
		return Pair{Low: 1000}, true
	case logic.CodeBeepLow:
		return Pair{Low: 500}, true
	case logic.CodeTuneAsc:
		return Pair{Low: 500, High: 1000}, true
	case logic.CodeTuneDesc:
		return Pair{Low: 1000, High: 500}, true
	}
	return Pair{}, false
}
