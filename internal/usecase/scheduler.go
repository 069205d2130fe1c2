package usecase

import (
	"context"
	"log/slog"
	"time"

	"ShowtimesFeed/internal/domain"
	"ShowtimesFeed/internal/ports"
)

// Scheduler wires a recurring driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	venues   []domain.SourceDescriptor
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs over a fixed registry.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, venues []domain.SourceDescriptor, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, venues: venues, logger: logger}
}

// Start registers the pipeline with the provided driver. A failed run is
// logged and the next tick runs again.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.pipeline.Execute(ctx, s.venues); err != nil {
			s.logger.Error("scheduled run failed", "trigger", trigger.Format(time.RFC3339), "error", err)
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
