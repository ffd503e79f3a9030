package mqtt

import (
	"github.com/sweeney/rotary-dial/internal/logic"
	"github.com/sweeney/rotary-dial/internal/tone"
)

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// Events contains all dial events that were published.
	Events []logic.Event

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// Tones contains all tone commands that were sent.
	Tones []tone.Command

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// SendToneError, if set, will be returned by SendTone.
	SendToneError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish records the dial event.
func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Events = append(f.Events, event)

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// SendTone records the tone command.
func (f *FakePublisher) SendTone(cmd tone.Command) error {
	if f.SendToneError != nil {
		return f.SendToneError
	}
	f.Tones = append(f.Tones, cmd)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// EventTypes returns the types of the recorded dial events in order.
func (f *FakePublisher) EventTypes() []logic.EventType {
	var out []logic.EventType
	for _, e := range f.Events {
		out = append(out, e.Type)
	}
	return out
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.Events = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Tones = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.SendToneError = nil
	f.Connected = false
}
