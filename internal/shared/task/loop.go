// Package task runs long-lived background jobs that survive failing iterations.
package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Loop runs Fn every Interval until the context is cancelled. A failing or
// panicking iteration is logged and the next one is scheduled after
// RecoveryDelay instead of Interval.
type Loop struct {
	Name           string
	Interval       time.Duration
	RecoveryDelay  time.Duration
	RunImmediately bool
	Fn             func(ctx context.Context) error
}

// Run blocks until ctx is done. A non-positive Interval disables the loop
// and Run returns immediately.
func (l Loop) Run(ctx context.Context) {
	logger := slog.Default().With("component", l.Name)

	if l.Interval <= 0 {
		logger.Error("Background task disabled, interval must be positive", "interval", l.Interval)
		return
	}

	recovery := l.RecoveryDelay
	if recovery <= 0 {
		recovery = l.Interval
	}

	next := l.Interval
	if l.RunImmediately {
		next = 0
	}

	timer := time.NewTimer(next)
	defer timer.Stop()

	logger.Info("Background task started", "interval", l.Interval)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Background task stopped")
			return
		case <-timer.C:
			if err := l.runOnce(ctx); err != nil {
				logger.Error("Background task iteration failed", "error", err, "retry_in", recovery)
				timer.Reset(recovery)
				continue
			}
			timer.Reset(l.Interval)
		}
	}
}

func (l Loop) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return l.Fn(ctx)
}
