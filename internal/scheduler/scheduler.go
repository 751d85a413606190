// Copyright The Transcript Service Authors
// SPDX-License-Identifier: MIT

// Package scheduler runs the periodic lifecycle drivers.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/meetingharvest/transcript-service/internal/logging"
)

// TickFunc is one driver invocation. Errors are logged, never fatal: the next
// tick always runs.
type TickFunc func(ctx context.Context) error

// Scheduler invokes a driver on a fixed interval until its context ends.
type Scheduler struct {
	name     string
	interval time.Duration
	tick     TickFunc
}

// New creates a scheduler for a named driver.
func New(name string, interval time.Duration, tick TickFunc) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		tick:     tick,
	}
}

// Run executes the driver immediately and then on every interval tick until
// ctx is canceled. It blocks; callers run it in a goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	slog.InfoContext(ctx, "scheduler started",
		"driver", s.name,
		"interval", s.interval.String(),
	)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "scheduler stopped", "driver", s.name)
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce invokes the driver with panic recovery so one bad tick cannot take
// down the process or stop the schedule.
func (s *Scheduler) runOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "scheduler tick panicked",
				"driver", s.name,
				"panic", r,
				logging.PriorityCritical(),
			)
		}
	}()

	start := time.Now()
	if err := s.tick(ctx); err != nil {
		slog.ErrorContext(ctx, "scheduler tick failed",
			"driver", s.name,
			"duration", time.Since(start).String(),
			logging.ErrKey, err,
		)
		return
	}

	slog.DebugContext(ctx, "scheduler tick completed",
		"driver", s.name,
		"duration", time.Since(start).String(),
	)
}
