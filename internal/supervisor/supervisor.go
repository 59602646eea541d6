// Package supervisor runs the three long-running tasks (host refresh,
// sampler+aggregator+retention, alert evaluator) under supervision: a
// task that exits with an error, or panics, is restarted after a 5s
// back-off, per §5/§7.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// backoff is the fixed restart delay after an abnormal task exit.
const backoff = 5 * time.Second

// Task is one supervised long-running function. It should run until ctx
// is canceled and then return ctx.Err(), or return early on an
// unrecoverable error.
type Task func(ctx context.Context) error

// Supervisor owns a set of named tasks and runs each under its own
// restart loop.
type Supervisor struct {
	log   *slog.Logger
	tasks map[string]Task
}

// New constructs an empty Supervisor.
func New(log *slog.Logger) *Supervisor {
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{log: log, tasks: map[string]Task{}}
}

// Add registers a named task to be run when Run is called.
func (s *Supervisor) Add(name string, t Task) {
	s.tasks[name] = t
}

// Run starts every registered task and blocks until every task has
// stopped. A task stops for good when it returns nil or when ctx is
// canceled; any other error, or a panic, restarts it after backoff. Run
// returns the first context error seen, or nil. Each task runs inside its
// own restart loop via golang.org/x/sync/errgroup, mirroring the
// reference program's three independently-supervised tokio::spawn
// blocks.
func (s *Supervisor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for name, task := range s.tasks {
		name, task := name, task
		g.Go(func() error {
			return s.superviseLoop(ctx, name, task)
		})
	}
	return g.Wait()
}

// superviseLoop wraps task in a recover-and-restart loop: a panic is
// recovered, logged, and treated the same as a returned error. Unlike
// the reference program's tokio::task::spawn, a Go goroutine's panic
// cannot be observed by its caller without an explicit recover inside
// the goroutine itself, so the recover happens here, one level in.
func (s *Supervisor) superviseLoop(ctx context.Context, name string, task Task) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.log.Info("supervised task starting", "task", name)
		err := s.runOnce(ctx, name, task)
		if err == nil || err == ctx.Err() {
			return err
		}

		s.log.Error("supervised task exited, restarting", "task", name, "error", err, "backoff", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func (s *Supervisor) runOnce(ctx context.Context, name string, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", name, r)
		}
	}()
	return task(ctx)
}
