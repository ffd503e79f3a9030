package web

import (
	"encoding/json"

	"github.com/sweeney/rotary-dial/internal/logic"
)

// SlotsJSON is the JSON envelope for /slots.json.
type SlotsJSON struct {
	Slots []SlotJSON `json:"slots"`
}

// SlotJSON describes one speed dial slot.
type SlotJSON struct {
	Slot     int    `json:"slot"`
	Position string `json:"position,omitempty"` // dial position that selects the slot
	Number   string `json:"number"`
	Volatile bool   `json:"volatile,omitempty"`
}

// positionFor returns the dial position mapped to slot.
func positionFor(slot logic.Slot) string {
	if d, ok := slot.Position(); ok {
		return d.String()
	}
	return ""
}

func slotJSON(slot logic.Slot, n logic.Number) SlotJSON {
	return SlotJSON{
		Slot:     int(slot),
		Position: positionFor(slot),
		Number:   n.String(),
		Volatile: slot == logic.SlotRedial,
	}
}

func formatSlots(slots []SlotJSON) []byte {
	data, _ := json.MarshalIndent(SlotsJSON{Slots: slots}, "", "  ")
	return data
}
