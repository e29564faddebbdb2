package usecase

import (
	"context"
	"errors"
	"time"

	"IntelliSearch/internal/ports"
)

// Scheduler drives the digest pipeline from a cron-like trigger.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   ports.Logger
}

// NewScheduler pairs a trigger driver with the digest pipeline.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, log ports.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: log}
}

// Start registers the digest run with the driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.pipeline == nil {
		return errors.New("scheduler: no pipeline")
	}
	if s.driver == nil {
		return errors.New("scheduler: no driver")
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		// Failures are reported by RunOnce; the next trigger retries.
		_ = s.RunOnce(ctx, trigger)
	})
}

// RunOnce executes one digest pass for the trigger time.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) error {
	if s.pipeline == nil {
		return errors.New("scheduler: no pipeline")
	}

	started := time.Now()
	err := s.pipeline.ProcessDay(ctx, trigger)
	if s.logger != nil {
		if err != nil {
			s.logger.Error("digest run failed", "trigger", trigger, "elapsed", time.Since(started), "error", err)
		} else {
			s.logger.Info("digest run finished", "trigger", trigger, "elapsed", time.Since(started))
		}
	}
	return err
}

// Stop halts the driver, waiting for a running digest until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
