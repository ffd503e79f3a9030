// Package speeddial manages the redial and speed dial slots: the volatile
// redial number and the persisted speed dial numbers.
package speeddial

import (
	"context"
	"fmt"
	"time"

	"github.com/sweeney/rotary-dial/internal/logic"
	"github.com/sweeney/rotary-dial/internal/store"
	"github.com/sweeney/rotary-dial/internal/tone"
)

// Pause is the silence between dialed-out tones.
const Pause = logic.ToneDuration

// Manager owns the redial slot and writes persisted slots through a Store.
type Manager struct {
	store  store.Store
	redial logic.Number
}

// NewManager creates a Manager with an empty redial slot.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s, redial: logic.EmptyNumber()}
}

// Append saves n to slot. The redial slot is always overwritten in memory.
// Persisted slots are only written when the content differs, to spare the
// storage medium. Returns whether the store was written.
func (m *Manager) Append(ctx context.Context, slot logic.Slot, n logic.Number) (bool, error) {
	if slot == logic.SlotRedial {
		m.redial = n
		return false, nil
	}
	if !slot.Persisted() {
		return false, fmt.Errorf("slot %d out of range", slot)
	}

	current, err := m.store.ReadSlot(ctx, slot)
	if err != nil {
		return false, fmt.Errorf("read slot %d: %w", slot, err)
	}
	if current == n {
		return false, nil
	}
	if err := m.store.WriteSlot(ctx, slot, n); err != nil {
		return false, fmt.Errorf("write slot %d: %w", slot, err)
	}
	return true, nil
}

// Load returns the number held in slot.
func (m *Manager) Load(ctx context.Context, slot logic.Slot) (logic.Number, error) {
	if slot == logic.SlotRedial {
		return m.redial, nil
	}
	if !slot.Persisted() {
		return logic.EmptyNumber(), fmt.Errorf("slot %d out of range", slot)
	}
	return m.store.ReadSlot(ctx, slot)
}

// DialOut plays the number in slot as tones, each followed by a pause.
// Unset and invalid codes are skipped. Playback is not interruptible.
// Returns the number of tones played.
func (m *Manager) DialOut(ctx context.Context, slot logic.Slot, synth tone.Synthesizer) (int, error) {
	n, err := m.Load(ctx, slot)
	if err != nil {
		return 0, err
	}

	played := 0
	for _, c := range n {
		if !c.IsDialable() {
			continue
		}
		if err := synth.GenerateTone(c, logic.ToneDuration); err != nil {
			return played, fmt.Errorf("dial %s: %w", c, err)
		}
		if err := synth.GenerateTone(logic.CodeOff, Pause); err != nil {
			return played, fmt.Errorf("pause: %w", err)
		}
		played++
	}
	return played, nil
}

// Slots returns the content of every slot, redial first.
func (m *Manager) Slots(ctx context.Context) ([logic.SlotCount]logic.Number, error) {
	var out [logic.SlotCount]logic.Number
	for s := logic.Slot(0); s < logic.SlotCount; s++ {
		n, err := m.Load(ctx, s)
		if err != nil {
			return out, err
		}
		out[s] = n
	}
	return out, nil
}

// PlaybackDuration returns how long dialing out n takes.
func PlaybackDuration(n logic.Number) time.Duration {
	return time.Duration(len(n.Digits())) * (logic.ToneDuration + Pause)
}
