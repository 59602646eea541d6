package store

import (
	"context"
	"fmt"

	"hostwatch/internal/catalog"
)

// Cutoffs names, per resolution, the oldest timestamp to keep (exclusive
// lower bound: rows strictly older than the cutoff are deleted). A zero
// value for a resolution means "do not prune this tier in this pass" —
// callers only populate the tiers they intend to sweep in one Prune call,
// matching the fact that the hourly and daily retention parts run on
// different triggers (see internal/retention).
type Cutoffs map[catalog.Resolution]int64

// Prune deletes rows older than the given per-resolution cutoffs across
// all three categories. If vacuum is true, it additionally runs VACUUM
// and PRAGMA optimize afterward to reclaim space and refresh the query
// planner's statistics.
func (s *Store) Prune(ctx context.Context, cutoffs Cutoffs, vacuum bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: prune: begin: %w", err)
	}
	defer tx.Rollback()

	for res, cutoff := range cutoffs {
		for _, cat := range catalog.Categories() {
			table := catalog.Table(cat, res)
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE timestamp < ?", table), cutoff); err != nil {
				return fmt.Errorf("store: prune %s: %w", table, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: prune: commit: %w", err)
	}

	if vacuum {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("store: vacuum: %w", err)
		}
		if _, err := s.db.ExecContext(ctx, "PRAGMA optimize"); err != nil {
			return fmt.Errorf("store: optimize: %w", err)
		}
	}
	return nil
}
