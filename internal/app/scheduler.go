/**
 * @description
 * Cron scheduler setup for the recurring lifecycle pass.
 */

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the lifecycle job and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.LifecycleJobSchedule, s.runLifecyclePass); err != nil {
		s.logger.Error("failed to schedule lifecycle job", "error", err)
	} else {
		s.logger.Info("scheduled lifecycle job", "schedule", s.config.LifecycleJobSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runLifecyclePass() {
	s.logger.Info("starting scheduled lifecycle pass")
	s.jobs.RunLifecyclePass(context.Background(), time.Now())
}
