// Package store provides durable storage for speed dial slots.
package store

import (
	"context"
	"fmt"

	"github.com/sweeney/rotary-dial/internal/logic"
)

// Store reads and writes whole speed dial slots.
type Store interface {
	// ReadSlot returns the stored number. Never-written slots are empty.
	ReadSlot(ctx context.Context, slot logic.Slot) (logic.Number, error)

	// WriteSlot replaces the stored number unconditionally.
	WriteSlot(ctx context.Context, slot logic.Slot, n logic.Number) error

	// Close releases the store.
	Close() error
}

func checkSlot(slot logic.Slot) error {
	if !slot.Valid() {
		return fmt.Errorf("slot %d out of range", slot)
	}
	return nil
}

// encode packs a number one byte per code.
func encode(n logic.Number) []byte {
	b := make([]byte, logic.NumberSize)
	for i, c := range n {
		b[i] = byte(c)
	}
	return b
}

func decode(b []byte) (logic.Number, error) {
	if len(b) != logic.NumberSize {
		return logic.EmptyNumber(), fmt.Errorf("slot data has %d bytes, want %d", len(b), logic.NumberSize)
	}
	var n logic.Number
	for i, v := range b {
		n[i] = logic.Code(int8(v))
	}
	return n, nil
}
