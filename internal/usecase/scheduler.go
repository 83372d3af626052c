package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
)

// Scheduler wires the timer driver with the orchestrator.
type Scheduler struct {
	driver       ports.Scheduler
	orchestrator *Orchestrator
	logger       *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewScheduler returns a helper to start/stop the daily run loop.
func NewScheduler(driver ports.Scheduler, orchestrator *Orchestrator, logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, orchestrator: orchestrator, logger: logging.OrDiscard(logger)}
}

// Start registers the orchestrator with the driver. Starting twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.orchestrator == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	if err := s.driver.Start(ctx, s.job); err != nil {
		return err
	}
	s.running = true
	s.logger.Info("scheduler started")
	return nil
}

// Stop tears down the driver loop. A run already in progress is not cancelled,
// and an error only means ctx expired before the loop exited.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}

	// The driver has been told to stop even when waiting for it fails.
	s.running = false
	if err := s.driver.Stop(ctx); err != nil {
		s.logger.Warn("scheduler stop did not finish", "error", err)
		return err
	}
	s.logger.Info("scheduler stopped")
	return nil
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) job(ctx context.Context, trigger time.Time) error {
	s.logger.Info("scheduled run firing", "at", trigger)
	_, err := s.orchestrator.RunNow(ctx, RunOptions{})
	if errors.Is(err, ErrAlreadyRunning) {
		s.logger.Info("scheduled run skipped", "reason", err)
		return nil
	}
	return err
}
