package tone

import (
	"time"

	"github.com/sweeney/rotary-dial/internal/logic"
)

// FakeSynthesizer records tones and keeps a virtual elapsed counter that
// advances by each tone's duration.
type FakeSynthesizer struct {
	// Tones contains every generated tone, silence included.
	Tones []Tone

	// ToneError, if set, will be returned by GenerateTone.
	ToneError error

	elapsed time.Duration
}

// NewFakeSynthesizer creates a FakeSynthesizer at elapsed zero.
func NewFakeSynthesizer() *FakeSynthesizer {
	return &FakeSynthesizer{}
}

// GenerateTone records the tone and advances the counter.
func (f *FakeSynthesizer) GenerateTone(code logic.Code, d time.Duration) error {
	f.elapsed += d
	if f.ToneError != nil {
		return f.ToneError
	}
	f.Tones = append(f.Tones, Tone{Code: code, Duration: d})
	return nil
}

// Elapsed returns the virtual counter.
func (f *FakeSynthesizer) Elapsed() time.Duration {
	return f.elapsed
}

// Advance moves the virtual counter forward. Use it as the sampling sleep.
func (f *FakeSynthesizer) Advance(d time.Duration) {
	f.elapsed += d
}

// Audible returns the recorded tones without silences.
func (f *FakeSynthesizer) Audible() []Tone {
	var out []Tone
	for _, t := range f.Tones {
		if t.Code != logic.CodeOff {
			out = append(out, t)
		}
	}
	return out
}

// Codes returns the codes of the audible tones.
func (f *FakeSynthesizer) Codes() []logic.Code {
	var out []logic.Code
	for _, t := range f.Audible() {
		out = append(out, t.Code)
	}
	return out
}

// Reset clears recorded tones.
func (f *FakeSynthesizer) Reset() {
	f.Tones = nil
	f.ToneError = nil
}
