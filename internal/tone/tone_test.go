package tone

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/rotary-dial/internal/logic"
)

func TestFrequenciesDTMF(t *testing.T) {
	tests := []struct {
		code logic.Code
		want Pair
	}{
		{1, Pair{697, 1209}},
		{5, Pair{770, 1336}},
		{9, Pair{852, 1477}},
		{0, Pair{941, 1336}},
		{logic.CodeStar, Pair{941, 1209}},
		{logic.CodePound, Pair{941, 1477}},
	}
	for _, tt := range tests {
		got, ok := Frequencies(tt.code)
		if !ok {
			t.Fatalf("code %s: expected frequencies", tt.code)
		}
		if got != tt.want {
			t.Errorf("code %s: got %+v, want %+v", tt.code, got, tt.want)
		}
	}
}

func TestFrequenciesSignals(t *testing.T) {
	asc, _ := Frequencies(logic.CodeTuneAsc)
	desc, _ := Frequencies(logic.CodeTuneDesc)
	if asc.Low >= asc.High {
		t.Errorf("ascending tune should rise: %+v", asc)
	}
	if desc.Low <= desc.High {
		t.Errorf("descending tune should fall: %+v", desc)
	}
	if _, ok := Frequencies(logic.CodeOff); ok {
		t.Error("OFF has no frequencies")
	}
}

type recordingSender struct {
	cmds []Command
	err  error
}

func (r *recordingSender) SendTone(cmd Command) error {
	if r.err != nil {
		return r.err
	}
	r.cmds = append(r.cmds, cmd)
	return nil
}

func newTestRemote(sender Sender) (*RemoteSynthesizer, *time.Duration) {
	var slept time.Duration
	r := NewRemoteSynthesizer(sender)
	r.sleep = func(d time.Duration) { slept += d }
	return r, &slept
}

func TestRemoteSynthesizerSendsAndWaits(t *testing.T) {
	s := &recordingSender{}
	r, slept := newTestRemote(s)

	if err := r.GenerateTone(7, logic.ToneDuration); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.cmds) != 1 {
		t.Fatalf("expected 1 command, got %d", len(s.cmds))
	}
	if s.cmds[0].Code != 7 || s.cmds[0].Pair != (Pair{852, 1209}) {
		t.Errorf("unexpected command: %+v", s.cmds[0])
	}
	if *slept != logic.ToneDuration {
		t.Errorf("expected to wait %v, waited %v", logic.ToneDuration, *slept)
	}
}

func TestRemoteSynthesizerSilence(t *testing.T) {
	s := &recordingSender{}
	r, slept := newTestRemote(s)

	if err := r.GenerateTone(logic.CodeOff, 200*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.cmds) != 0 {
		t.Errorf("silence should not be sent, got %+v", s.cmds)
	}
	if *slept != 200*time.Millisecond {
		t.Errorf("silence should still wait, waited %v", *slept)
	}
}

func TestRemoteSynthesizerSendError(t *testing.T) {
	s := &recordingSender{err: errors.New("broker down")}
	r, slept := newTestRemote(s)

	if err := r.GenerateTone(3, logic.ToneDuration); err == nil {
		t.Error("expected error")
	}
	if *slept != logic.ToneDuration {
		t.Errorf("timing should be kept on error, waited %v", *slept)
	}
}

func TestRemoteSynthesizerUnknownCode(t *testing.T) {
	r, _ := newTestRemote(&recordingSender{})
	if err := r.GenerateTone(logic.Code(-99), time.Millisecond); err == nil {
		t.Error("expected error for unknown code")
	}
}

func TestFakeSynthesizer(t *testing.T) {
	f := NewFakeSynthesizer()
	f.GenerateTone(5, logic.ToneDuration)
	f.GenerateTone(logic.CodeOff, logic.ToneDuration)
	f.Advance(time.Second)

	if f.Elapsed() != time.Second+2*logic.ToneDuration {
		t.Errorf("unexpected elapsed %v", f.Elapsed())
	}
	if len(f.Tones) != 2 {
		t.Errorf("expected 2 tones, got %d", len(f.Tones))
	}
	if codes := f.Codes(); len(codes) != 1 || codes[0] != 5 {
		t.Errorf("expected audible [5], got %v", codes)
	}
}
