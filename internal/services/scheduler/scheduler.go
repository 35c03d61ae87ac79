// -----------------------------------------------------------------------
// Scheduler Service - cron-driven pipeline runs
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Task is one scheduled unit of work, typically the full
// scrape-merge-render pipeline.
type Task func(ctx context.Context) error

// Service runs a task on a cron schedule. Overlapping runs are
// skipped, not queued.
type Service struct {
	cron   *cron.Cron
	logger arbor.ILogger

	mu        sync.Mutex
	running   bool
	inFlight  bool
	lastRun   *time.Time
	lastError string
}

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the task and begins the cron loop.
func (s *Service) Start(cronExpr string, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if cronExpr == "" {
		return fmt.Errorf("cron expression is required")
	}

	_, err := s.cron.AddFunc(cronExpr, func() {
		s.runTask(context.Background(), task)
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("cron_expr", cronExpr).
		Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for an in-flight run to finish.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.logger.Warn().Msg("Scheduled run did not finish within shutdown timeout")
	}

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// RunNow executes the task immediately, outside the schedule.
func (s *Service) RunNow(ctx context.Context, task Task) error {
	return s.runTask(ctx, task)
}

func (s *Service) runTask(ctx context.Context, task Task) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous run still in progress, skipping")
		return nil
	}
	s.inFlight = true
	s.mu.Unlock()

	start := time.Now()
	err := task(ctx)

	s.mu.Lock()
	s.inFlight = false
	s.lastRun = &start
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled run failed")
		return err
	}
	s.logger.Info().
		Str("duration", time.Since(start).Round(time.Millisecond).String()).
		Msg("Scheduled run complete")
	return nil
}

// LastRun returns the start time of the most recent run and its error
// message, empty when the run succeeded.
func (s *Service) LastRun() (*time.Time, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastError
}
