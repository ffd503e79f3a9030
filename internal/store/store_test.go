package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/rotary-dial/internal/logic"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "slots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreStartsEmpty(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	for slot := logic.Slot(0); slot < logic.SlotCount; slot++ {
		n, err := s.ReadSlot(ctx, slot)
		require.NoError(t, err)
		assert.Equal(t, logic.EmptyNumber(), n, "slot %d", slot)
	}
}

func TestSQLiteStoreWriteRead(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	want := logic.NumberOf(0, 1, 2, logic.CodeStar, logic.CodePound)
	require.NoError(t, s.WriteSlot(ctx, 3, want))

	got, err := s.ReadSlot(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Other slots untouched
	other, err := s.ReadSlot(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, logic.EmptyNumber(), other)
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.WriteSlot(ctx, 1, logic.NumberOf(5, 5, 5)))
	require.NoError(t, s.WriteSlot(ctx, 1, logic.NumberOf(7)))

	got, err := s.ReadSlot(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "7", got.String())
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.WriteSlot(ctx, 7, logic.NumberOf(9, 1, 1)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.ReadSlot(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "911", got.String())
}

func TestSQLiteStoreRejectsBadSlot(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	_, err := s.ReadSlot(ctx, logic.SlotCount)
	assert.Error(t, err)
	assert.Error(t, s.WriteSlot(ctx, -1, logic.EmptyNumber()))
}

func TestMemoryStoreCountsWrites(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.WriteSlot(ctx, 2, logic.NumberOf(4)))
	require.NoError(t, m.WriteSlot(ctx, 2, logic.NumberOf(4)))
	assert.Equal(t, 2, m.Writes())

	got, err := m.ReadSlot(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, logic.NumberOf(4), got)
}

func TestDecodeRejectsShortData(t *testing.T) {
	_, err := decode([]byte{1, 2, 3})
	assert.Error(t, err)

	n, err := decode(encode(logic.NumberOf(logic.CodeOff, 3)))
	require.NoError(t, err)
	assert.Equal(t, logic.NumberOf(logic.CodeOff, 3), n)
}
