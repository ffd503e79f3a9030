package gpio

import (
	"errors"
	"testing"
)

func TestFakeReaderRead(t *testing.T) {
	samples := []Sample{
		{Dial: true, Pulse: false},
		{Dial: false, Pulse: true},
		{Dial: true, Pulse: true},
	}

	f := NewFakeReader(samples)

	// Read first sample
	dial, pulse, err := f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dial != true || pulse != false {
		t.Errorf("sample 0: expected (true, false), got (%v, %v)", dial, pulse)
	}

	// Read second sample
	dial, pulse, err = f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dial != false || pulse != true {
		t.Errorf("sample 1: expected (false, true), got (%v, %v)", dial, pulse)
	}

	// Read third sample
	dial, pulse, err = f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dial != true || pulse != true {
		t.Errorf("sample 2: expected (true, true), got (%v, %v)", dial, pulse)
	}

	// Fourth read should repeat last sample
	dial, pulse, err = f.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dial != true || pulse != true {
		t.Errorf("sample 3 (repeat): expected (true, true), got (%v, %v)", dial, pulse)
	}
	if f.Reads != 4 {
		t.Errorf("expected 4 reads, got %d", f.Reads)
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)

	_, _, err := f.Read()
	if err == nil {
		t.Error("expected error with no samples")
	}
	if f.Remaining() != 0 {
		t.Errorf("expected 0 remaining, got %d", f.Remaining())
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]Sample{{Dial: true}})
	f.ReadError = errors.New("simulated error")

	_, _, err := f.Read()
	if err == nil {
		t.Error("expected error to be returned")
	}
	if err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderAppendAndRemaining(t *testing.T) {
	f := NewFakeReader([]Sample{{Dial: true}})
	f.Append(Sample{Pulse: true}, Sample{})

	if f.Remaining() != 3 {
		t.Fatalf("expected 3 remaining, got %d", f.Remaining())
	}
	f.Read()
	f.Read()
	if f.Remaining() != 1 {
		t.Errorf("expected 1 remaining, got %d", f.Remaining())
	}
	f.Read()
	f.Read()
	if f.Remaining() != 0 {
		t.Errorf("expected 0 remaining once exhausted, got %d", f.Remaining())
	}
}

func TestFakeReaderClose(t *testing.T) {
	f := NewFakeReader([]Sample{{Dial: true}})

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeReaderReset(t *testing.T) {
	samples := []Sample{
		{Dial: true, Pulse: false},
		{Dial: false, Pulse: true},
	}

	f := NewFakeReader(samples)

	// Consume first sample
	f.Read()

	// Reset
	f.Reset()

	// Should read first sample again
	dial, pulse, _ := f.Read()
	if dial != true || pulse != false {
		t.Errorf("after reset: expected (true, false), got (%v, %v)", dial, pulse)
	}
}
