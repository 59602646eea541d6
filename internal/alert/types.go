// Package alert implements Alert persistence, the AlertEvaluator's
// 60-second evaluation cadence, and threshold-based message rendering.
package alert

import (
	"hostwatch/internal/catalog"
)

// Var identifies the (category, variable, resource) triple an Alert
// watches. Resrc is ignored for Cat=="sys" and is canonically "sys".
type Var struct {
	Cat   catalog.Category `json:"cat"`
	Var   string           `json:"var"`
	Resrc string           `json:"resrc"`
}

// Operator is the comparison an Alert's condition uses.
type Operator string

const (
	GreaterThan Operator = ">"
	LessThan    Operator = "<"
)

// Alert is a user-defined threshold alert over a sliding time window.
type Alert struct {
	ID                string   `json:"id"`
	Var               Var      `json:"var"`
	Threshold         float64  `json:"threshold"`
	Operator          Operator `json:"operator"`
	TimeWindowMinutes int64    `json:"time_window_minutes"`
	Enabled           bool     `json:"enabled"`
	Firing            bool     `json:"firing"`
	NotifMethods      []string `json:"notif_methods"`
}

// NewID is the sentinel value meaning "assign a fresh id" on insert.
const NewID = "-1"
