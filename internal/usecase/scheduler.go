package usecase

import (
	"context"
	"time"

	"DiscussionScanner/internal/ports"
)

// Scheduler wires the cron driver with the pipeline run.
type Scheduler struct {
	driver     ports.Scheduler
	pipeline   *Pipeline
	exportPath string
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, exportPath string) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, exportPath: exportPath}
}

// Start registers Run with the driver. A failed run is logged and left to the next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(ctx context.Context, trigger time.Time) {
		s.pipeline.logger.Info("scheduled run started", "at", trigger.Format(time.RFC3339))
		if _, err := s.pipeline.Run(ctx, s.exportPath); err != nil {
			s.pipeline.logger.Error("scheduled run failed", "error", err)
		}
	}
	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
