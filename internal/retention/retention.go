// Package retention implements the two cutoff sweeps piggy-backed on the
// Aggregator's boundary triggers (§4.4, and the trigger-cadence Open
// Question resolution in SPEC_FULL.md §12): an hourly sweep of the s/m
// tiers, and a daily sweep of the h tier followed by VACUUM + optimize.
package retention

import (
	"context"

	"hostwatch/internal/catalog"
	"hostwatch/internal/store"
)

const (
	secondsRetention = 3600          // *_s: keep last 1 hour
	minutesRetention = 4 * 86400     // *_m: keep last 4 days
	hoursRetention   = 365 * 86400   // *_h: keep last 365 days
)

// Retention owns the per-tier cutoff math; the Store performs the actual
// deletes.
type Retention struct {
	store *store.Store
}

// New constructs a Retention sweeper bound to a Store.
func New(st *store.Store) *Retention {
	return &Retention{store: st}
}

// PruneHourly deletes *_s rows older than boundary-3600 and *_m rows
// older than boundary-4*86400. Called from the aggregator's hour-boundary
// branch, which fires every hour including at day boundaries.
func (r *Retention) PruneHourly(ctx context.Context, boundary int64) error {
	cutoffs := store.Cutoffs{
		catalog.Second: boundary - secondsRetention,
		catalog.Minute: boundary - minutesRetention,
	}
	return r.store.Prune(ctx, cutoffs, false)
}

// PruneDaily deletes *_h rows older than boundary-365*86400, then runs
// VACUUM and PRAGMA optimize. Called from the aggregator's day-boundary
// branch. *_d rows are never pruned.
func (r *Retention) PruneDaily(ctx context.Context, boundary int64) error {
	cutoffs := store.Cutoffs{
		catalog.Hour: boundary - hoursRetention,
	}
	return r.store.Prune(ctx, cutoffs, true)
}
