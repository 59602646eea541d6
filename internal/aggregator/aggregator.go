// Package aggregator implements the boundary-triggered roll-up: on each
// minute/hour/day boundary it rolls the finer tier into the coarser one,
// and on hour/day boundaries it also triggers the matching Retention
// sweep. It runs inline on the Sampler's tick, not on its own timer.
package aggregator

import (
	"context"
	"log/slog"

	"hostwatch/internal/catalog"
	"hostwatch/internal/retention"
	"hostwatch/internal/store"
)

const sampleInterval = 2 // seconds; SAMPLE_INTERVAL default

// Aggregator implements sampler.BoundaryHook.
type Aggregator struct {
	store     *store.Store
	retention *retention.Retention
	log       *slog.Logger
}

// New constructs an Aggregator bound to a Store and its Retention sweeper.
func New(st *store.Store, ret *retention.Retention, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{store: st, retention: ret, log: log}
}

// OnTick runs the nested boundary test of §4.3: `t mod P < SAMPLE_INTERVAL`
// catches a boundary even when the tick straddles it.
func (a *Aggregator) OnTick(ctx context.Context, t int64) error {
	if mod(t, 60) >= sampleInterval {
		return nil
	}
	boundary := t - mod(t, 60)

	if err := a.store.RollUp(ctx, catalog.Second, catalog.Minute, boundary-60, boundary); err != nil {
		return err
	}

	if mod(boundary/60, 60) != 0 {
		return nil
	}
	if err := a.store.RollUp(ctx, catalog.Minute, catalog.Hour, boundary-3600, boundary); err != nil {
		a.log.Error("hour rollup failed", "error", err, "boundary", boundary)
	}
	if err := a.retention.PruneHourly(ctx, boundary); err != nil {
		a.log.Error("hourly retention failed", "error", err, "boundary", boundary)
	}

	if mod(boundary/3600, 24) != 0 {
		return nil
	}
	if err := a.store.RollUp(ctx, catalog.Hour, catalog.Day, boundary-86400, boundary); err != nil {
		a.log.Error("day rollup failed", "error", err, "boundary", boundary)
	}
	if err := a.retention.PruneDaily(ctx, boundary); err != nil {
		a.log.Error("daily retention failed", "error", err, "boundary", boundary)
	}
	return nil
}

func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
