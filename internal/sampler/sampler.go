// Package sampler implements the periodic task that pulls one Sample
// from the Probe port, derives rates against the previous sample, and
// appends seconds-resolution rows to the Store.
package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hostwatch/internal/probe"
	"hostwatch/internal/store"
)

// BoundaryHook is invoked once per tick, after the seconds-resolution row
// is durably committed, with the tick's timestamp. The Aggregator
// implements this.
type BoundaryHook interface {
	OnTick(ctx context.Context, t int64) error
}

// Sampler is the single writer's front end: every tick it samples,
// derives rates, inserts, then triggers the aggregator, all sequenced on
// one goroutine so invariant "insertSample(T) completes before
// rollUp(..,T)" holds for free.
type Sampler struct {
	probe      probe.Probe
	store      *store.Store
	aggregator BoundaryHook
	interval   time.Duration
	log        *slog.Logger

	lastSample    *probe.Sample
	lastTimestamp int64
}

// New constructs a Sampler. interval is SAMPLE_INTERVAL (default 2s).
func New(p probe.Probe, st *store.Store, agg BoundaryHook, interval time.Duration, log *slog.Logger) *Sampler {
	if log == nil {
		log = slog.Default()
	}
	return &Sampler{probe: p, store: st, aggregator: agg, interval: interval, log: log}
}

// Run ticks on s.interval until ctx is canceled. Each tick's error is
// logged and swallowed (transient store/probe error, §7) — the loop
// itself never exits on a single tick's failure; only ctx cancellation
// or a panic (caught by the supervisor) stops it.
func (s *Sampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.log.Error("sampler tick failed", "error", err)
			}
		}
	}
}

// Tick performs one full sampler cycle, per §4.2.
func (s *Sampler) Tick(ctx context.Context) error {
	sample, err := s.probe.Sample(ctx)
	if err != nil {
		return fmt.Errorf("sampler: probe: %w", err)
	}
	t := sample.Timestamp

	nets, disks := s.deriveRows(t, sample)

	memUsage := usagePct(sample.MemUsed, sample.MemTotal)
	swapUsage := usagePct(sample.SwapUsed, sample.SwapTotal)

	if err := s.store.InsertSample(ctx, t, sample.CPUAvgPct, memUsage, swapUsage,
		sample.LoadAvg1, sample.LoadAvg5, sample.LoadAvg15, nets, disks); err != nil {
		return fmt.Errorf("sampler: insert: %w", err)
	}

	if s.aggregator != nil {
		if err := s.aggregator.OnTick(ctx, t); err != nil {
			s.log.Error("aggregator failed", "error", err, "t", t)
		}
	}

	s.lastSample = &sample
	s.lastTimestamp = t
	return nil
}

// usagePct computes 100*used/total, defined as 0 when total is 0 (the
// swap-usage division-by-zero open question, resolved as 0 per SPEC_FULL
// §12).
func usagePct(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(used) / float64(total)
}

// deriveRows matches each resource in the new sample against the same
// name in the previous sample (invariant 2 / testable property 4): if
// found and the counter did not go backward, rate = (new-old)/elapsed;
// otherwise rate = 0. The very first tick has no previous sample, so
// every rate is 0.
func (s *Sampler) deriveRows(t int64, cur probe.Sample) (nets []store.NetRow, disks []store.DiskRow) {
	if s.lastSample == nil {
		for _, n := range cur.Interfaces {
			nets = append(nets, store.NetRow{Name: n.Name, Rx: n.Rx, Tx: n.Tx})
		}
		for _, d := range cur.Disks {
			disks = append(disks, store.DiskRow{
				Name:       d.MountPoint,
				TotalRead:  d.ReadBytes,
				TotalWrite: d.WriteBytes,
				DiskUsage:  diskUsagePct(d),
			})
		}
		return nets, disks
	}

	elapsed := float64(t - s.lastTimestamp)

	prevNet := make(map[string]probe.NetIO, len(s.lastSample.Interfaces))
	for _, n := range s.lastSample.Interfaces {
		prevNet[n.Name] = n
	}
	for _, n := range cur.Interfaces {
		var rxRate, txRate float64
		if old, ok := prevNet[n.Name]; ok && elapsed > 0 {
			if n.Rx >= old.Rx {
				rxRate = float64(n.Rx-old.Rx) / elapsed
			}
			if n.Tx >= old.Tx {
				txRate = float64(n.Tx-old.Tx) / elapsed
			}
		}
		nets = append(nets, store.NetRow{Name: n.Name, Rx: n.Rx, Tx: n.Tx, RxRate: rxRate, TxRate: txRate})
	}

	prevDisk := make(map[string]probe.DiskIO, len(s.lastSample.Disks))
	for _, d := range s.lastSample.Disks {
		prevDisk[d.MountPoint] = d
	}
	for _, d := range cur.Disks {
		var readRate, writeRate float64
		if old, ok := prevDisk[d.MountPoint]; ok && elapsed > 0 {
			if d.ReadBytes >= old.ReadBytes {
				readRate = float64(d.ReadBytes-old.ReadBytes) / elapsed
			}
			if d.WriteBytes >= old.WriteBytes {
				writeRate = float64(d.WriteBytes-old.WriteBytes) / elapsed
			}
		}
		disks = append(disks, store.DiskRow{
			Name:       d.MountPoint,
			TotalRead:  d.ReadBytes,
			TotalWrite: d.WriteBytes,
			ReadRate:   readRate,
			WriteRate:  writeRate,
			DiskUsage:  diskUsagePct(d),
		})
	}
	return nets, disks
}

func diskUsagePct(d probe.DiskIO) float64 {
	if d.Total == 0 {
		return 0
	}
	return 100 * (1 - float64(d.Free)/float64(d.Total))
}
