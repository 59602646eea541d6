package store

import (
	"context"
	"database/sql"
	"fmt"
)

// GetKV returns the opaque string stored under key, or ErrNotFound if
// absent.
func (s *Store) GetKV(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return "", err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("store: get kv %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("store: get kv %q: %w", key, err)
	}
	return value, nil
}

// SetKV upserts the opaque string stored under key.
func (s *Store) SetKV(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("store: set kv %q: %w", key, err)
	}
	return nil
}
