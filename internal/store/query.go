package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"hostwatch/internal/catalog"
)

// HistoricalSeries is one named time series at one resolution. SType is
// the column the series holds, e.g. "cpu_usage" or "rx_rate".
type HistoricalSeries struct {
	Cat        catalog.Category
	SType      string
	Resolution catalog.Resolution
	Name       string
	Timestamps []int64
	Values     []float64
}

// QueryOptions bounds a querySeries call.
type QueryOptions struct {
	Start      *int64
	End        *int64
	Limit      *int64
	Resolution string // "second","minute","hour","day"
}

func resolutionFromWord(word string) (catalog.Resolution, error) {
	switch word {
	case "second":
		return catalog.Second, nil
	case "minute", "":
		return catalog.Minute, nil
	case "hour":
		return catalog.Hour, nil
	case "day":
		return catalog.Day, nil
	default:
		return "", fmt.Errorf("store: resolution %q: %w", word, ErrUnknownResolution)
	}
}

// QuerySeries returns one HistoricalSeries per (category, column, name)
// combination that has matching rows. For general_*, the series name is
// the literal "system". For net_*/disk_*, raw cumulative counters (rx,
// tx, total_read, total_write) are never returned — only rates and usage
// columns, matching the external query-surface contract.
func (s *Store) QuerySeries(ctx context.Context, opts QueryOptions) ([]HistoricalSeries, error) {
	res, err := resolutionFromWord(opts.Resolution)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var out []HistoricalSeries
	for _, cat := range catalog.Categories() {
		table := catalog.Table(cat, res)
		cols := catalog.AlertableColumns(cat)

		var selectCols []string
		if cat.Keyed() {
			selectCols = append(selectCols, "name")
		}
		for _, c := range cols {
			selectCols = append(selectCols, c.Name)
		}

		var where []string
		var args []any
		if opts.Start != nil {
			where = append(where, "timestamp >= ?")
			args = append(args, *opts.Start)
		}
		if opts.End != nil {
			where = append(where, "timestamp <= ?")
			args = append(args, *opts.End)
		}

		query := fmt.Sprintf("SELECT timestamp, %s FROM %s", strings.Join(selectCols, ", "), table)
		if len(where) > 0 {
			query += " WHERE " + strings.Join(where, " AND ")
		}
		query += " ORDER BY timestamp ASC"
		if opts.Limit != nil {
			query += " LIMIT ?"
			args = append(args, *opts.Limit)
		}

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("store: query series %s: %w", table, err)
		}

		series := map[string]*HistoricalSeries{}
		for rows.Next() {
			var ts int64
			var name string
			scanArgs := []any{&ts}
			if cat.Keyed() {
				scanArgs = append(scanArgs, &name)
			} else {
				name = "system"
			}
			vals := make([]sql.NullFloat64, len(cols))
			for i := range vals {
				scanArgs = append(scanArgs, &vals[i])
			}
			if err := rows.Scan(scanArgs...); err != nil {
				rows.Close()
				return nil, fmt.Errorf("store: scan series %s: %w", table, err)
			}
			for i, c := range cols {
				if !vals[i].Valid {
					continue
				}
				key := c.Name + "\x00" + name
				sr, ok := series[key]
				if !ok {
					sr = &HistoricalSeries{Cat: cat, SType: c.Name, Resolution: res, Name: name}
					series[key] = sr
				}
				sr.Timestamps = append(sr.Timestamps, ts)
				sr.Values = append(sr.Values, vals[i].Float64)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("store: query series %s: %w", table, err)
		}

		for _, sr := range series {
			out = append(out, *sr)
		}
	}
	return out, nil
}

// AlertVar identifies one alertable (category, variable, resource) triple.
type AlertVar struct {
	Cat   catalog.Category
	Var   string
	Resrc string
}

// ListAlertVars enumerates every (cat,var,resrc) triple an alert could
// reference: the distinct resource names seen in <cat>_s crossed with
// that category's alertable columns, for net/disk, plus one entry per
// sys metric with resrc="sys".
func (s *Store) ListAlertVars(ctx context.Context) ([]AlertVar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var out []AlertVar
	for _, c := range catalog.AlertableColumns(catalog.Sys) {
		out = append(out, AlertVar{Cat: catalog.Sys, Var: c.Name, Resrc: "sys"})
	}

	for _, cat := range []catalog.Category{catalog.Net, catalog.Disk} {
		table := catalog.Table(cat, catalog.Second)
		rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT name FROM %s", table))
		if err != nil {
			return nil, fmt.Errorf("store: list alert vars %s: %w", table, err)
		}
		var names []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				return nil, fmt.Errorf("store: scan alert var name %s: %w", table, err)
			}
			names = append(names, name)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("store: list alert vars %s: %w", table, err)
		}

		for _, c := range catalog.AlertableColumns(cat) {
			for _, name := range names {
				out = append(out, AlertVar{Cat: cat, Var: c.Name, Resrc: name})
			}
		}
	}
	return out, nil
}

// AggQuery runs a single MIN or MAX aggregate over one column since
// startTs, for the window-consistency check the AlertEvaluator performs.
// ok is false when the query returned no rows, which callers must treat
// as shouldFire=false rather than as an error.
func (s *Store) AggQuery(ctx context.Context, cat catalog.Category, varName, resrc string, res catalog.Resolution, startTs int64, useMin bool) (value float64, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return 0, false, err
	}

	if _, found := catalog.ColumnByName(cat, varName); !found {
		return 0, false, fmt.Errorf("store: agg query %s.%s: %w", cat, varName, ErrUnknownCategory)
	}

	agg := "MAX"
	if useMin {
		agg = "MIN"
	}
	table := catalog.Table(cat, res)
	query := fmt.Sprintf("SELECT %s(%s) FROM %s WHERE timestamp >= ?", agg, varName, table)
	args := []any{startTs}
	if cat.Keyed() {
		query += " AND name = ?"
		args = append(args, resrc)
	}

	var result sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&result); err != nil {
		return 0, false, fmt.Errorf("store: agg query %s.%s: %w", cat, varName, err)
	}
	if !result.Valid {
		return 0, false, nil
	}
	return result.Float64, true, nil
}

// Capabilities reports which metric categories currently have at least
// one row recorded, as a simple data-driven stand-in for a live probe
// capability report when the store is inspected independently of a
// running Probe (e.g. by the API collaborator against a historical
// database).
type Capabilities struct {
	CPU, Memory, Swap, LoadAverage, Network, Disk bool
}

func (s *Store) Capabilities(ctx context.Context) (Capabilities, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return Capabilities{}, err
	}

	hasRows := func(table string) bool {
		var one int
		err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", table)).Scan(&one)
		return err == nil
	}

	return Capabilities{
		CPU:         hasRows("general_s"),
		Memory:      hasRows("general_s"),
		Swap:        hasRows("general_s"),
		LoadAverage: hasRows("general_s"),
		Network:     hasRows("net_s"),
		Disk:        hasRows("disk_s"),
	}, nil
}
