package gpio

import "errors"

// FakeReader is a test double that returns scripted line values.
type FakeReader struct {
	// Samples contains scripted (dialActive, pulse) values to return.
	// Each call to Read() consumes the next sample.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Reads counts calls to Read.
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Sample represents a single reading of both lines (already in logical form).
type Sample struct {
	Dial  bool // true = dial off rest
	Pulse bool // true = pulse contact open
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (bool, bool, error) {
	if f.ReadError != nil {
		return false, false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, false, errors.New("no samples configured")
	}

	f.Reads++
	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.Dial, sample.Pulse, nil
}

// Append adds samples to the end of the script.
func (f *FakeReader) Append(samples ...Sample) {
	f.Samples = append(f.Samples, samples...)
}

// Remaining returns the number of scripted samples not yet consumed.
func (f *FakeReader) Remaining() int {
	if f.Reads >= len(f.Samples) {
		return 0
	}
	return len(f.Samples) - f.Reads
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}
