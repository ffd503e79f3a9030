// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rotary-dial/internal/logic"
	"github.com/sweeney/rotary-dial/internal/tone"
)

// Topic is the MQTT topic for dial events.
const Topic = "telephony/rotary/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "telephony/rotary/system"

// TopicTones is the MQTT topic a remote tone generator subscribes to.
const TopicTones = "telephony/rotary/tones"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a dial event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Dial DialPayload `json:"dial"`
}

// DialPayload contains the dial event details.
type DialPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Digit     string `json:"digit,omitempty"`
	Tally     int    `json:"tally,omitempty"`
	Played    int    `json:"played,omitempty"`
	Slot      *int   `json:"slot,omitempty"`
	Number    string `json:"number,omitempty"`
}

// FormatPayload creates the JSON payload for a dial event.
func FormatPayload(event logic.Event) ([]byte, error) {
	p := DialPayload{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		State:     event.State.String(),
		Tally:     event.Tally,
		Played:    event.Played,
		Number:    event.Number,
	}
	if event.Digit.IsDialable() {
		p.Digit = event.Digit.String()
	}
	if event.Slot.Valid() {
		slot := int(event.Slot)
		p.Slot = &slot
	}
	return json.Marshal(Payload{Dial: p})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// TonePayload is the command sent to a remote tone generator.
type TonePayload struct {
	Code       string `json:"code"`
	DurationMs int64  `json:"duration_ms"`
	LowHz      int    `json:"low_hz"`
	HighHz     int    `json:"high_hz,omitempty"`
}

// FormatTonePayload creates the JSON payload for a tone command.
func FormatTonePayload(cmd tone.Command) ([]byte, error) {
	return json.Marshal(TonePayload{
		Code:       cmd.Code.String(),
		DurationMs: cmd.Duration.Milliseconds(),
		LowHz:      cmd.Pair.Low,
		HighHz:     cmd.Pair.High,
	})
}
