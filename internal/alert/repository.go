package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"hostwatch/internal/notify"
	"hostwatch/internal/store"
)

const (
	kvKeyAlerts              = "alerts"
	kvKeyNotificationMethods = "notification_methods"
)

// Repository persists the kv-stored alerts list and notification methods
// list described in §6 "Persisted state".
type Repository struct {
	store *store.Store
}

// NewRepository constructs a Repository bound to a Store.
func NewRepository(st *store.Store) *Repository {
	return &Repository{store: st}
}

// LoadAlerts returns the full alerts list, or an empty list if the kv key
// has never been set.
func (r *Repository) LoadAlerts(ctx context.Context) ([]Alert, error) {
	raw, err := r.store.GetKV(ctx, kvKeyAlerts)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("alert: load alerts: %w", err)
	}
	var alerts []Alert
	if err := json.Unmarshal([]byte(raw), &alerts); err != nil {
		return nil, fmt.Errorf("alert: decode alerts: %w", err)
	}
	return alerts, nil
}

// SaveAlerts replaces the entire alerts list.
func (r *Repository) SaveAlerts(ctx context.Context, alerts []Alert) error {
	raw, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("alert: encode alerts: %w", err)
	}
	if err := r.store.SetKV(ctx, kvKeyAlerts, string(raw)); err != nil {
		return fmt.Errorf("alert: save alerts: %w", err)
	}
	return nil
}

// UpsertAlert inserts (assigning a fresh UUID when a.ID == NewID) or
// updates an alert by id, via a read-modify-write of the whole list —
// matching the persistence idiom this design follows for firing-state
// transitions (§4.5.f).
func (r *Repository) UpsertAlert(ctx context.Context, a Alert) (Alert, error) {
	alerts, err := r.LoadAlerts(ctx)
	if err != nil {
		return Alert{}, err
	}

	if a.ID == NewID || a.ID == "" {
		a.ID = uuid.NewString()
		alerts = append(alerts, a)
	} else {
		found := false
		for i := range alerts {
			if alerts[i].ID == a.ID {
				alerts[i] = a
				found = true
				break
			}
		}
		if !found {
			alerts = append(alerts, a)
		}
	}

	if err := r.SaveAlerts(ctx, alerts); err != nil {
		return Alert{}, err
	}
	return a, nil
}

// SetFiring flips exactly one alert's Firing field via a read-modify-write
// of the entire list, per §4.5.f.
func (r *Repository) SetFiring(ctx context.Context, id string, firing bool) error {
	alerts, err := r.LoadAlerts(ctx)
	if err != nil {
		return err
	}
	for i := range alerts {
		if alerts[i].ID == id {
			alerts[i].Firing = firing
			break
		}
	}
	return r.SaveAlerts(ctx, alerts)
}

// LoadNotificationMethods returns the full notification methods list, or
// an empty list if the kv key has never been set.
func (r *Repository) LoadNotificationMethods(ctx context.Context) ([]notify.Method, error) {
	raw, err := r.store.GetKV(ctx, kvKeyNotificationMethods)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("alert: load notification methods: %w", err)
	}
	var methods []notify.Method
	if err := json.Unmarshal([]byte(raw), &methods); err != nil {
		return nil, fmt.Errorf("alert: decode notification methods: %w", err)
	}
	return methods, nil
}

// SaveNotificationMethods replaces the entire notification methods list.
func (r *Repository) SaveNotificationMethods(ctx context.Context, methods []notify.Method) error {
	raw, err := json.Marshal(methods)
	if err != nil {
		return fmt.Errorf("alert: encode notification methods: %w", err)
	}
	if err := r.store.SetKV(ctx, kvKeyNotificationMethods, string(raw)); err != nil {
		return fmt.Errorf("alert: save notification methods: %w", err)
	}
	return nil
}
