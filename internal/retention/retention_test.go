package retention

import (
	"context"
	"os"
	"testing"

	"hostwatch/internal/catalog"
	"hostwatch/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	tmp, err := os.CreateTemp("", "hostwatch_retention_test_*.db")
	if err != nil {
		t.Fatalf("create temp db: %v", err)
	}
	path := tmp.Name()
	tmp.Close()
	os.Remove(path)

	s, err := store.Open(path, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
		os.Remove(path)
		os.Remove(path + "-wal")
		os.Remove(path + "-shm")
	})
	return s
}

func TestPruneHourlyCutoffs(t *testing.T) {
	// An old general_s row (cpu_usage=99) falls before boundary-secondsRetention
	// and must be gone; a recent row (cpu_usage=1) at the boundary itself
	// survives. MAX(cpu_usage) distinguishes the two outcomes.
	s := newTestStore(t)
	ctx := context.Background()
	r := New(s)

	boundary := int64(2 * secondsRetention)
	if err := s.InsertSample(ctx, 0, 99, 0, 0, 0, 0, 0, nil, nil); err != nil {
		t.Fatalf("insert old sample: %v", err)
	}
	if err := s.InsertSample(ctx, boundary, 1, 0, 0, 0, 0, 0, nil, nil); err != nil {
		t.Fatalf("insert recent sample: %v", err)
	}

	if err := r.PruneHourly(ctx, boundary); err != nil {
		t.Fatalf("prune hourly: %v", err)
	}

	max, ok, err := s.AggQuery(ctx, catalog.Sys, "cpu_usage", "sys", catalog.Second, 0, false)
	if err != nil {
		t.Fatalf("agg query: %v", err)
	}
	if !ok {
		t.Fatalf("expected the recent row to survive, got no rows")
	}
	if max != 1 {
		t.Errorf("MAX(cpu_usage) = %v, want 1 (the ts=0 row should have been pruned)", max)
	}
}

func TestPruneHourlyLeavesHourTierUntouched(t *testing.T) {
	// PruneHourly's cutoffs map names only Second and Minute; a general_h
	// row must survive no matter how old.
	s := newTestStore(t)
	ctx := context.Background()
	r := New(s)

	if err := s.InsertSample(ctx, 0, 42, 0, 0, 0, 0, 0, nil, nil); err != nil {
		t.Fatalf("insert sample: %v", err)
	}
	if err := s.RollUp(ctx, catalog.Second, catalog.Minute, 0, 0); err != nil {
		t.Fatalf("rollup to minute: %v", err)
	}
	if err := s.RollUp(ctx, catalog.Minute, catalog.Hour, 0, 0); err != nil {
		t.Fatalf("rollup to hour: %v", err)
	}

	if err := r.PruneHourly(ctx, 10*secondsRetention); err != nil {
		t.Fatalf("prune hourly: %v", err)
	}

	_, ok, err := s.AggQuery(ctx, catalog.Sys, "cpu_usage", "sys", catalog.Hour, 0, false)
	if err != nil {
		t.Fatalf("agg query: %v", err)
	}
	if !ok {
		t.Errorf("general_h row at ts=0 should survive PruneHourly regardless of age")
	}
}

func TestPruneDailyCutoffs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	r := New(s)

	if err := s.InsertSample(ctx, 0, 99, 0, 0, 0, 0, 0, nil, nil); err != nil {
		t.Fatalf("insert old sample: %v", err)
	}
	if err := s.RollUp(ctx, catalog.Second, catalog.Minute, 0, 0); err != nil {
		t.Fatalf("rollup to minute: %v", err)
	}
	if err := s.RollUp(ctx, catalog.Minute, catalog.Hour, 0, 0); err != nil {
		t.Fatalf("rollup to hour: %v", err)
	}

	recent := int64(2 * hoursRetention)
	if err := s.InsertSample(ctx, recent, 1, 0, 0, 0, 0, 0, nil, nil); err != nil {
		t.Fatalf("insert recent sample: %v", err)
	}
	if err := s.RollUp(ctx, catalog.Second, catalog.Minute, recent, recent); err != nil {
		t.Fatalf("rollup to minute: %v", err)
	}
	if err := s.RollUp(ctx, catalog.Minute, catalog.Hour, recent, recent); err != nil {
		t.Fatalf("rollup to hour: %v", err)
	}

	if err := r.PruneDaily(ctx, recent); err != nil {
		t.Fatalf("prune daily: %v", err)
	}

	max, ok, err := s.AggQuery(ctx, catalog.Sys, "cpu_usage", "sys", catalog.Hour, 0, false)
	if err != nil {
		t.Fatalf("agg query: %v", err)
	}
	if !ok {
		t.Fatalf("expected the recent row to survive, got no rows")
	}
	if max != 1 {
		t.Errorf("MAX(cpu_usage) in general_h = %v, want 1 (the ts=0 row should have been pruned by PruneDaily)", max)
	}
}
