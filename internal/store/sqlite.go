package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/sweeney/rotary-dial/internal/logic"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) a slot database.
// Use ":memory:" for in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS slots (
		slot INTEGER PRIMARY KEY,
		digits BLOB NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// First boot: every slot starts unset.
	empty := encode(logic.EmptyNumber())
	for slot := 0; slot < logic.SlotCount; slot++ {
		if _, err := s.db.Exec("INSERT OR IGNORE INTO slots (slot, digits) VALUES (?, ?)", slot, empty); err != nil {
			return fmt.Errorf("seed slot %d: %w", slot, err)
		}
	}
	return nil
}

// ReadSlot returns the stored number for slot.
func (s *SQLiteStore) ReadSlot(ctx context.Context, slot logic.Slot) (logic.Number, error) {
	if err := checkSlot(slot); err != nil {
		return logic.EmptyNumber(), err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT digits FROM slots WHERE slot = ?", int(slot)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return logic.EmptyNumber(), nil
	}
	if err != nil {
		return logic.EmptyNumber(), fmt.Errorf("query slot %d: %w", slot, err)
	}
	n, err := decode(data)
	if err != nil {
		return logic.EmptyNumber(), fmt.Errorf("decode slot %d: %w", slot, err)
	}
	return n, nil
}

// WriteSlot stores n in slot.
func (s *SQLiteStore) WriteSlot(ctx context.Context, slot logic.Slot, n logic.Number) error {
	if err := checkSlot(slot); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO slots (slot, digits) VALUES (?, ?) ON CONFLICT(slot) DO UPDATE SET digits = excluded.digits",
		int(slot), encode(n),
	)
	if err != nil {
		return fmt.Errorf("write slot %d: %w", slot, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
