package alert

import (
	"context"
	"os"
	"testing"
	"time"

	"hostwatch/internal/catalog"
	"hostwatch/internal/notify"
	"hostwatch/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	tmp, err := os.CreateTemp("", "hostwatch_alert_test_*.db")
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

// recordingNotifier captures every delivered message for assertions.
type recordingNotifier struct {
	messages []string
}

func (r *recordingNotifier) Notify(ctx context.Context, method notify.Method, message string) error {
	r.messages = append(r.messages, message)
	return nil
}

func TestEvaluatorFiresOnceOnEdgeCrossing(t *testing.T) {
	// S4: MIN(cpu_usage) over last 5 min = 85 > threshold 80 -> firing
	// flips false->true and dispatches exactly one notification. A
	// second identical tick dispatches nothing more (invariant 5).
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().Unix()
	for i := int64(0); i < 5; i++ {
		ts := now - i*60
		mustInsertGeneralM(t, st, ts, 85)
	}

	repo := NewRepository(st)
	rec := &recordingNotifier{}
	eval := NewEvaluator(st, repo, rec, nil)

	if err := repo.SaveNotificationMethods(ctx, []notify.Method{
		{ID: "m1", Name: "test", Kind: notify.KindWebhook, Enabled: true, Webhook: &notify.WebhookConfig{URL: "http://x", Method: "POST"}},
	}); err != nil {
		t.Fatalf("save methods: %v", err)
	}

	a := Alert{
		ID:                "a1",
		Var:               Var{Cat: catalog.Sys, Var: "cpu_usage", Resrc: "sys"},
		Threshold:         80,
		Operator:          GreaterThan,
		TimeWindowMinutes: 5,
		Enabled:           true,
		Firing:            false,
		NotifMethods:      []string{"m1"},
	}
	if _, err := repo.UpsertAlert(ctx, a); err != nil {
		t.Fatalf("upsert alert: %v", err)
	}

	if err := eval.Tick(ctx); err != nil {
		t.Fatalf("tick 1: %v", err)
	}
	if len(rec.messages) != 1 {
		t.Fatalf("expected 1 notification after first tick, got %d: %v", len(rec.messages), rec.messages)
	}

	alerts, err := repo.LoadAlerts(ctx)
	if err != nil {
		t.Fatalf("load alerts: %v", err)
	}
	if !alerts[0].Firing {
		t.Errorf("alert should be firing after tick 1")
	}

	// Idempotence: identical data, second tick -> no new notification.
	if err := eval.Tick(ctx); err != nil {
		t.Fatalf("tick 2: %v", err)
	}
	if len(rec.messages) != 1 {
		t.Errorf("expected no additional notification on repeat tick, total = %d", len(rec.messages))
	}
}

func TestEvaluatorResolutionTierSelection(t *testing.T) {
	// S5: window 120min -> general_m; window 121min -> general_h. The hour
	// row is seeded one minute earlier than the minute row so the roll-ups
	// do not average the two values together: MIN(general_m)=10 and
	// MIN(general_h)=999, and the 121min alert's threshold of 500 straddles
	// both, so a misrouted 121min query would not fire.
	st := newTestStore(t)
	ctx := context.Background()
	repo := NewRepository(st)
	eval := NewEvaluator(st, repo, &recordingNotifier{}, nil)

	now := time.Now().Unix()
	mustInsertGeneralM(t, st, now, 10)
	mustInsertGeneralH(t, st, now-60, 999)

	a120 := Alert{ID: "a120", Var: Var{Cat: catalog.Sys, Var: "cpu_usage", Resrc: "sys"}, Threshold: 5, Operator: GreaterThan, TimeWindowMinutes: 120, Enabled: true}
	a121 := Alert{ID: "a121", Var: Var{Cat: catalog.Sys, Var: "cpu_usage", Resrc: "sys"}, Threshold: 500, Operator: GreaterThan, TimeWindowMinutes: 121, Enabled: true}
	if _, err := repo.UpsertAlert(ctx, a120); err != nil {
		t.Fatalf("seed a120: %v", err)
	}
	if _, err := repo.UpsertAlert(ctx, a121); err != nil {
		t.Fatalf("seed a121: %v", err)
	}
	if err := eval.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	alerts, err := repo.LoadAlerts(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var gotA120, gotA121 Alert
	for _, a := range alerts {
		if a.ID == "a120" {
			gotA120 = a
		}
		if a.ID == "a121" {
			gotA121 = a
		}
	}
	// a120 (window<=7200s, tier m): MIN(general_m)=10 > threshold 5 -> fires.
	if !gotA120.Firing {
		t.Errorf("120min alert should query general_m (cpu_usage=10 > threshold 5) and fire")
	}
	// a121 (window>7200s, tier h): MIN(general_h)=999 > threshold 500 -> fires.
	// If it were wrongly routed to general_m (value 10), 10 > 500 is false
	// and it would NOT fire, so this also proves the tier selection.
	if !gotA121.Firing {
		t.Errorf("121min alert should query general_h (cpu_usage=999 > threshold 500) and fire")
	}
}

func mustInsertGeneralM(t *testing.T, st *store.Store, ts int64, cpu float64) {
	t.Helper()
	if err := st.InsertSample(context.Background(), ts, cpu, 0, 0, 0, 0, 0, nil, nil); err != nil {
		t.Fatalf("insert seconds sample: %v", err)
	}
	if err := st.RollUp(context.Background(), catalog.Second, catalog.Minute, ts, ts); err != nil {
		t.Fatalf("rollup to minute: %v", err)
	}
}

func mustInsertGeneralH(t *testing.T, st *store.Store, ts int64, cpu float64) {
	t.Helper()
	mustInsertGeneralM(t, st, ts, cpu)
	if err := st.RollUp(context.Background(), catalog.Minute, catalog.Hour, ts, ts); err != nil {
		t.Fatalf("rollup to hour: %v", err)
	}
}
