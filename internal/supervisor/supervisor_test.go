package supervisor

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
)

func TestRunOnceRecoversPanic(t *testing.T) {
	s := New(nil)
	err := s.runOnce(context.Background(), "panicky", func(ctx context.Context) error {
		panic("boom")
	})
	if err == nil {
		t.Fatal("expected an error converted from the panic")
	}
	if !strings.Contains(err.Error(), "panicked") {
		t.Errorf("error %q should mention the panic", err.Error())
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q should include the recovered panic value", err.Error())
	}
}

func TestRunOncePassesThroughTaskError(t *testing.T) {
	s := New(nil)
	wantErr := errors.New("task failed")
	err := s.runOnce(context.Background(), "failing", func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

func TestSuperviseLoopReturnsImmediatelyOnAlreadyCanceledContext(t *testing.T) {
	s := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called int32
	err := s.superviseLoop(ctx, "never-runs", func(ctx context.Context) error {
		atomic.AddInt32(&called, 1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if atomic.LoadInt32(&called) != 0 {
		t.Errorf("task should not run once ctx is already canceled")
	}
}

func TestRunReturnsNilWhenTaskExitsCleanly(t *testing.T) {
	s := New(nil)
	s.Add("clean", func(ctx context.Context) error {
		return nil
	})
	if err := s.Run(context.Background()); err != nil {
		t.Errorf("Run() = %v, want nil for a task that exits cleanly", err)
	}
}

func TestRunPropagatesContextCancellation(t *testing.T) {
	s := New(nil)
	s.Add("waits-for-cancel", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}
