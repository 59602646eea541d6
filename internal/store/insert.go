package store

import (
	"context"
	"fmt"
	"math"
)

// round2 rounds to 2 decimal places, matching the percentage rounding
// rule in the metric catalogue.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// roundInt rounds to the nearest integer, matching the rate rounding rule.
func roundInt(v float64) float64 {
	return math.Round(v)
}

// InsertSample appends one seconds-resolution row per category: one into
// general_s, one into net_s per interface, one into disk_s per disk.
// rates must already be derived by the caller (the Sampler), since rate
// derivation requires the previous sample, which this package does not
// track.
func (s *Store) InsertSample(ctx context.Context, timestamp int64, cpuUsage, memUsage, swapUsage, load1, load5, load15 float64, nets []NetRow, disks []DiskRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: insert sample: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO general_s (timestamp, cpu_usage, mem_usage, swap_usage, load_avg_1, load_avg_5, load_avg_15)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		timestamp, round2(cpuUsage), round2(memUsage), round2(swapUsage), round2(load1), round2(load5), round2(load15))
	if err != nil {
		return fmt.Errorf("store: insert general_s: %w", err)
	}

	for _, n := range nets {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO net_s (timestamp, name, rx, tx, rx_rate, tx_rate) VALUES (?, ?, ?, ?, ?, ?)`,
			timestamp, n.Name, n.Rx, n.Tx, roundInt(n.RxRate), roundInt(n.TxRate))
		if err != nil {
			return fmt.Errorf("store: insert net_s: %w", err)
		}
	}

	for _, d := range disks {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO disk_s (timestamp, name, total_read, total_write, read_rate, write_rate, disk_usage)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			timestamp, d.Name, d.TotalRead, d.TotalWrite, roundInt(d.ReadRate), roundInt(d.WriteRate), round2(d.DiskUsage))
		if err != nil {
			return fmt.Errorf("store: insert disk_s: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: insert sample: commit: %w", err)
	}
	return nil
}

// NetRow is one interface's derived seconds-resolution row.
type NetRow struct {
	Name           string
	Rx, Tx         uint64
	RxRate, TxRate float64
}

// DiskRow is one mount point's derived seconds-resolution row.
type DiskRow struct {
	Name                  string
	TotalRead, TotalWrite uint64
	ReadRate, WriteRate   float64
	DiskUsage             float64
}
