package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"DiscussionScanner/internal/ports"
)

// CronScheduler runs one job on a standard five-field cron expression.
// A tick that fires while the previous run is still going is skipped.
type CronScheduler struct {
	expr       string
	runOnStart bool
	logger     *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	initial chan struct{}
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler validates expr. Descriptors such as "@every 6h" are accepted.
func NewCronScheduler(expr string, runOnStart bool, logger *slog.Logger) (*CronScheduler, error) {
	if _, err := cron.ParseStandard(expr); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CronScheduler{expr: expr, runOnStart: runOnStart, logger: logger}, nil
}

// Start registers job and begins ticking. Calling Start twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(context.Context, time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	log := cronLogger{c.logger}
	runner := cron.New(cron.WithLogger(log), cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)))
	id, err := runner.AddFunc(c.expr, func() { job(ctx, time.Now()) })
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.expr, err)
	}
	runner.Start()
	c.cron = runner

	c.logger.Info("scheduler started", "schedule", c.expr, "next", runner.Entry(id).Next)
	if c.runOnStart {
		initial := make(chan struct{})
		c.initial = initial
		wrapped := runner.Entry(id).WrappedJob
		go func() {
			defer close(initial)
			wrapped.Run()
		}()
	}
	return nil
}

// Stop halts ticking and waits for a running job until ctx is done.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner, initial := c.cron, c.initial
	c.cron, c.initial = nil, nil
	c.mu.Unlock()
	if runner == nil {
		return nil
	}

	select {
	case <-runner.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if initial != nil {
		select {
		case <-initial:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// cronLogger routes cron's logr-style calls to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
