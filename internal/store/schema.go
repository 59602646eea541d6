package store

import (
	"context"
	"fmt"
	"strings"

	"hostwatch/internal/catalog"
)

// createSchema creates all twelve metric tables, the kv table, and the
// indexes the query patterns in this package rely on: a timestamp index
// on every metric table, plus a compound (name,timestamp) index on every
// net_*/disk_* table.
func (s *Store) createSchema(ctx context.Context) error {
	var stmts []string

	for _, cat := range catalog.Categories() {
		cols := catalog.Columns(cat)
		for _, res := range catalog.Resolutions() {
			table := catalog.Table(cat, res)
			stmts = append(stmts, createTableSQL(table, cat, cols))
			stmts = append(stmts, fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s(timestamp)", table, table))
			if cat.Keyed() {
				stmts = append(stmts, fmt.Sprintf(
					"CREATE INDEX IF NOT EXISTS idx_%s_name_timestamp ON %s(name, timestamp)", table, table))
			}
		}
	}

	stmts = append(stmts, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB
	)`)

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	return nil
}

func createTableSQL(table string, cat catalog.Category, cols []catalog.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n\ttimestamp INTEGER NOT NULL", table)
	if cat.Keyed() {
		b.WriteString(",\n\tname TEXT NOT NULL")
	}
	for _, c := range cols {
		fmt.Fprintf(&b, ",\n\t%s REAL", c.Name)
	}
	b.WriteString("\n)")
	return b.String()
}
