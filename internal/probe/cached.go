package probe

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CachedProbe wraps an inner Probe with a mutex-guarded snapshot that a
// separate "host refresh" task keeps current, per §5's concurrency
// model: the host snapshot is guarded by a mutex, refreshed in a short
// critical section with no I/O inside the lock, and the Sampler reads
// the snapshot rather than performing probe I/O itself on every tick.
type CachedProbe struct {
	inner Probe

	mu       sync.Mutex
	snapshot Sample
	hasData  bool
}

// NewCachedProbe wraps inner.
func NewCachedProbe(inner Probe) *CachedProbe {
	return &CachedProbe{inner: inner}
}

func (c *CachedProbe) Capabilities() Capabilities {
	return c.inner.Capabilities()
}

// Refresh performs the actual probe I/O (outside any lock) and then
// stores the result under a short critical section. This is the "Host
// refresh" task's body.
func (c *CachedProbe) Refresh(ctx context.Context) error {
	sample, err := c.inner.Sample(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.snapshot = sample
	c.hasData = true
	c.mu.Unlock()
	return nil
}

// RunRefreshLoop is the host refresh task: it wakes on interval and
// calls Refresh until ctx is canceled.
func (c *CachedProbe) RunRefreshLoop(ctx context.Context, interval time.Duration) error {
	if err := c.Refresh(ctx); err != nil {
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				return err
			}
		}
	}
}

// Sample returns a copy of the current snapshot without doing any I/O.
// It errors if no refresh has completed yet.
func (c *CachedProbe) Sample(ctx context.Context) (Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasData {
		return Sample{}, fmt.Errorf("probe: no snapshot available yet")
	}
	return c.snapshot, nil
}
