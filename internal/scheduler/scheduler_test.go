// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunImmediateFirstTick(t *testing.T) {
	var ticks atomic.Int32
	s := New("test", time.Hour, func(ctx context.Context) error {
		ticks.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The first tick must not wait for the interval.
	deadline := time.After(2 * time.Second)
	for ticks.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected an immediate first tick")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on context cancellation")
	}

	if got := ticks.Load(); got != 1 {
		t.Errorf("expected exactly 1 tick with hour-long interval, got %d", got)
	}
}

func TestRunKeepsTickingAfterErrors(t *testing.T) {
	var ticks atomic.Int32
	s := New("test", 20*time.Millisecond, func(ctx context.Context) error {
		ticks.Add(1)
		return errors.New("tick failed")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 ticks despite errors, got %d", ticks.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunRecoversFromPanic(t *testing.T) {
	var ticks atomic.Int32
	s := New("test", 20*time.Millisecond, func(ctx context.Context) error {
		if ticks.Add(1) == 1 {
			panic("bad tick")
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("expected the schedule to survive a panicking tick")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
