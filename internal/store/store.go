// Package store implements the single-writer embedded SQL-backed metric
// store: twelve tables organized as a 3-category x 4-resolution matrix,
// plus a key-value side table, behind one process-wide handle.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite"
)

// Store is the single process-wide handle described in the concurrency
// model: writers (Sampler/Aggregator/Retention) and readers (API,
// Evaluator) serialize through mu. WAL mode lets reads proceed without
// blocking on a writer's commit; mu exists to enforce the single-writer
// invariant the design assumes, not to work around sqlite itself.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	log    *slog.Logger
	closed bool
}

// Open creates or opens the database at path, enables WAL journaling,
// synchronous=NORMAL, a larger page cache, and file-backed temp storage,
// and creates every table and index if absent.
func Open(path string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // single physical writer; avoids sqlite lock contention across goroutines

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-20000",
		"PRAGMA temp_store=FILE",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, log: log}
	if err := s.createSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) checkOpen() error {
	if s.closed {
		return ErrClosed
	}
	return nil
}
