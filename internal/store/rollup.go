package store

import (
	"context"
	"fmt"
	"strings"

	"hostwatch/internal/catalog"
)

// RollUp aggregates every category's fromRes table into toRes, for the
// right-closed window [windowStart, windowEnd], and stamps the resulting
// row(s) with windowEnd (the boundary), per invariant 1. Each category's
// INSERT...SELECT runs inside the same transaction as the others, so a
// reader sees either the whole roll-up or none of it (design note
// "Roll-up atomicity").
func (s *Store) RollUp(ctx context.Context, fromRes, toRes catalog.Resolution, windowStart, windowEnd int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: rollup: begin: %w", err)
	}
	defer tx.Rollback()

	for _, cat := range catalog.Categories() {
		stmt := rollupSQL(cat, fromRes, toRes)
		if _, err := tx.ExecContext(ctx, stmt, windowEnd, windowStart, windowEnd); err != nil {
			return fmt.Errorf("store: rollup %s %s->%s: %w", cat, fromRes, toRes, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: rollup: commit: %w", err)
	}
	return nil
}

// rollupSQL builds the INSERT...SELECT for one category. Parameters, in
// order: windowEnd (the stamped timestamp column), windowStart,
// windowEnd (the inclusive window bounds).
func rollupSQL(cat catalog.Category, fromRes, toRes catalog.Resolution) string {
	from := catalog.Table(cat, fromRes)
	to := catalog.Table(cat, toRes)
	cols := catalog.Columns(cat)

	var selectCols []string
	var insertCols []string
	if cat.Keyed() {
		insertCols = append(insertCols, "name")
		selectCols = append(selectCols, "name")
	}
	for _, c := range cols {
		insertCols = append(insertCols, c.Name)
		selectCols = append(selectCols, aggExpr(c)+" AS "+c.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (timestamp, %s)\n", to, strings.Join(insertCols, ", "))
	fmt.Fprintf(&b, "SELECT ?, %s FROM %s\nWHERE timestamp >= ? AND timestamp <= ?", strings.Join(selectCols, ", "), from)
	if cat.Keyed() {
		b.WriteString("\nGROUP BY name")
	}
	return b.String()
}

func aggExpr(c catalog.Column) string {
	switch c.Agg {
	case catalog.AggMax:
		return fmt.Sprintf("MAX(%s)", c.Name)
	case catalog.AggAvgRoundInt:
		return fmt.Sprintf("ROUND(AVG(%s))", c.Name)
	default: // AggAvgRound2
		return fmt.Sprintf("ROUND(AVG(%s), 2)", c.Name)
	}
}
