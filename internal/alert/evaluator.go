package alert

import (
	"context"
	"log/slog"
	"time"

	"hostwatch/internal/catalog"
	"hostwatch/internal/notify"
	"hostwatch/internal/store"
)

// tickInterval is the AlertEvaluator's fixed cadence, independent of the
// sample interval.
const tickInterval = 60 * time.Second

// startupGrace delays the first evaluation tick so the m-resolution
// tier has at least one populated bucket before alerts are first
// checked (SPEC_FULL.md §4.5/§12 supplement, grounded on original_source).
const startupGrace = 70 * time.Second

// windowConsistencyBoundary selects the m tier for windows at or below
// this many seconds, and the h tier above it (§4.5.b).
const windowConsistencyBoundary = 7200

// Evaluator is the periodic task that evaluates every enabled alert and
// dispatches notifications on firing-state edge transitions.
type Evaluator struct {
	store    *store.Store
	repo     *Repository
	notifier notify.Notifier
	log      *slog.Logger
}

// NewEvaluator constructs an Evaluator.
func NewEvaluator(st *store.Store, repo *Repository, notifier notify.Notifier, log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.Default()
	}
	return &Evaluator{store: st, repo: repo, notifier: notifier, log: log}
}

// Run waits startupGrace, then ticks every tickInterval until ctx is
// canceled.
func (e *Evaluator) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(startupGrace):
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	if err := e.Tick(ctx); err != nil {
		e.log.Error("evaluator tick failed", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := e.Tick(ctx); err != nil {
				e.log.Error("evaluator tick failed", "error", err)
			}
		}
	}
}

// Tick performs one evaluation cycle over every enabled alert, per §4.5.
func (e *Evaluator) Tick(ctx context.Context) error {
	alerts, err := e.repo.LoadAlerts(ctx)
	if err != nil {
		return err
	}
	methods, err := e.repo.LoadNotificationMethods(ctx)
	if err != nil {
		return err
	}
	methodByID := make(map[string]notify.Method, len(methods))
	for _, m := range methods {
		methodByID[m.ID] = m
	}

	now := time.Now().Unix()
	for _, a := range alerts {
		if !a.Enabled {
			continue
		}
		if err := e.evaluateOne(ctx, a, methodByID, now); err != nil {
			e.log.Error("alert evaluation failed", "alert_id", a.ID, "error", err)
		}
	}
	return nil
}

func (e *Evaluator) evaluateOne(ctx context.Context, a Alert, methodByID map[string]notify.Method, now int64) error {
	windowSecs := a.TimeWindowMinutes * 60
	startTs := now - windowSecs

	tier := catalog.Minute
	if windowSecs > windowConsistencyBoundary {
		tier = catalog.Hour
	}

	useMin := a.Operator == GreaterThan

	agg, ok, err := e.store.AggQuery(ctx, a.Var.Cat, a.Var.Var, a.Var.Resrc, tier, startTs, useMin)
	if err != nil {
		return err
	}

	var shouldFire bool
	if ok {
		switch a.Operator {
		case GreaterThan:
			shouldFire = agg > a.Threshold
		case LessThan:
			shouldFire = agg < a.Threshold
		}
	}

	if shouldFire == a.Firing {
		return nil
	}

	if err := e.repo.SetFiring(ctx, a.ID, shouldFire); err != nil {
		return err
	}

	message := RenderMessage(a, shouldFire)
	for _, methodID := range a.NotifMethods {
		method, found := methodByID[methodID]
		if !found || !method.Enabled {
			continue
		}
		if err := e.notifier.Notify(ctx, method, message); err != nil {
			e.log.Error("notification delivery failed", "method_id", methodID, "alert_id", a.ID, "error", err)
		}
	}
	return nil
}
