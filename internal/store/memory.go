package store

import (
	"context"
	"sync"

	"github.com/sweeney/rotary-dial/internal/logic"
)

// MemoryStore is an in-memory Store that counts writes. Used in tests and
// when no database path is configured.
type MemoryStore struct {
	mu     sync.Mutex
	slots  [logic.SlotCount]logic.Number
	writes int

	// WriteError, if set, will be returned by WriteSlot.
	WriteError error

	// ReadError, if set, will be returned by ReadSlot.
	ReadError error
}

// NewMemoryStore returns a store with every slot unset.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	for i := range m.slots {
		m.slots[i] = logic.EmptyNumber()
	}
	return m
}

// ReadSlot returns the stored number.
func (m *MemoryStore) ReadSlot(_ context.Context, slot logic.Slot) (logic.Number, error) {
	if err := checkSlot(slot); err != nil {
		return logic.EmptyNumber(), err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadError != nil {
		return logic.EmptyNumber(), m.ReadError
	}
	return m.slots[slot], nil
}

// WriteSlot stores n and counts the write.
func (m *MemoryStore) WriteSlot(_ context.Context, slot logic.Slot, n logic.Number) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteError != nil {
		return m.WriteError
	}
	m.slots[slot] = n
	m.writes++
	return nil
}

// Writes returns the number of successful writes.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
