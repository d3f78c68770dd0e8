package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// sqlSlots keeps slots in the slots table.
type sqlSlots struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a Slots backed by db. The schema is created by database.InitDB.
func New(db *sql.DB) Slots {
	return &sqlSlots{db: db}
}

func (s *sqlSlots) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM slots WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return value, true, nil
}

func (s *sqlSlots) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;
	`, key, value, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	log.Debug("Wrote slot", "key", key, "bytes", len(value))
	return nil
}

func (s *sqlSlots) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}
	log.Debug("Deleted slot", "key", key)
	return nil
}
