/**
 * @description
 * The lifecycle pass: the scheduled job that promotes pending bookings whose
 * start date has arrived and retires active bookings whose end date has
 * passed. The pass is a pure function of the injected "now", so the cron
 * trigger and the administrative run-now endpoint produce identical results.
 *
 * @notes
 * - Each booking is processed independently; a failing transition is logged,
 *   counted in the summary, and never aborts the batch.
 * - The pass is idempotent: transitions are gated by state and time, so
 *   re-running with no elapsed time produces no additional transitions. This
 *   also makes overlapping runs safe without mutual exclusion.
 */

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

// LifecycleJobStore defines the database operations the pass needs.
type LifecycleJobStore interface {
	GetLifecycleCandidates(ctx context.Context) ([]domain.Booking, error)
}

// PassSummary reports what a single lifecycle pass did.
type PassSummary struct {
	Processed int      `json:"processed_count"`
	Activated int      `json:"activated_count"`
	Completed int      `json:"completed_count"`
	Errors    []string `json:"errors,omitempty"`
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	repo      LifecycleJobStore
	lifecycle *Lifecycle
	tracker   Tracker
	logger    *slog.Logger
}

// NewJobs creates a new Jobs runner.
func NewJobs(repo LifecycleJobStore, lifecycle *Lifecycle, tracker Tracker, logger *slog.Logger) *Jobs {
	return &Jobs{
		repo:      repo,
		lifecycle: lifecycle,
		tracker:   tracker,
		logger:    logger,
	}
}

// RunLifecyclePass scans all pending and active bookings and advances those
// whose dates have crossed the start-of-day boundary in the configured
// timezone: pending -> active when start_date <= now, active -> completed
// when end_date < now.
func (j *Jobs) RunLifecyclePass(ctx context.Context, now time.Time) PassSummary {
	var summary PassSummary

	bookings, err := j.loadCandidates(ctx)
	if err != nil {
		j.logger.Error("failed to load lifecycle candidates", "error", err)
		summary.Errors = append(summary.Errors, fmt.Sprintf("load candidates: %v", err))
		return summary
	}

	today := j.tracker.StartOfDay(now)

	for i := range bookings {
		booking := &bookings[i]
		summary.Processed++

		switch booking.Status {
		case domain.StatusPending:
			start := j.tracker.StartOfDay(booking.StartDate)
			if !start.After(today) {
				if err := j.lifecycle.Transition(ctx, booking, domain.StatusActive); err != nil {
					j.logger.Error("failed to activate booking", "booking_id", booking.ID, "error", err)
					summary.Errors = append(summary.Errors, fmt.Sprintf("activate %s: %v", booking.ID, err))
					continue
				}
				summary.Activated++
			}
		case domain.StatusActive:
			end := j.tracker.StartOfDay(booking.EndDate)
			if end.Before(today) {
				if err := j.lifecycle.Transition(ctx, booking, domain.StatusCompleted); err != nil {
					j.logger.Error("failed to complete booking", "booking_id", booking.ID, "error", err)
					summary.Errors = append(summary.Errors, fmt.Sprintf("complete %s: %v", booking.ID, err))
					continue
				}
				summary.Completed++
			}
		}
	}

	j.logger.Info("lifecycle pass finished",
		"processed", summary.Processed,
		"activated", summary.Activated,
		"completed", summary.Completed,
		"errors", len(summary.Errors))
	return summary
}

// loadCandidates fetches the pending/active bookings with a single retry for
// transient store failures. Validation-class failures are never retried;
// there are none on this read path.
func (j *Jobs) loadCandidates(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := j.repo.GetLifecycleCandidates(ctx)
	if err == nil || ctx.Err() != nil {
		return bookings, err
	}

	j.logger.Warn("retrying lifecycle candidate load after transient error", "error", err)
	return j.repo.GetLifecycleCandidates(ctx)
}
