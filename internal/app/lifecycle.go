/**
 * @description
 * Booking lifecycle controller. Owns the status state machine, the rules for
 * who may invoke which transition, and the side effects every transition
 * carries: persisting updated_at and emitting a best-effort notification
 * event when a booking becomes active, paused, or completed.
 *
 * The machine moves strictly forward (draft -> pending -> active ->
 * completed) with a single bidirectional edge between active and paused.
 * Rejection and cancellation are terminal exits from the non-draft states.
 * Drafts may be edited (restricted fields) and deleted; anything past draft
 * is locked.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

var (
	// ErrBookingLocked is the CONFLICT/LOCKED failure for operations that
	// require a draft (or otherwise unlocked) booking.
	ErrBookingLocked = errors.New("booking is locked in its current status")

	// ErrInvalidTransition is returned when a status change would skip a
	// state or regress outside the active/paused pair.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrForbidden is returned when the acting user may not perform the
	// requested transition.
	ErrForbidden = errors.New("actor is not allowed to perform this operation")

	// ErrInvalidDateRange rejects bookings whose start date is not strictly
	// before their end date.
	ErrInvalidDateRange = errors.New("start date must be before end date")
)

// AdminRole is the role string that unlocks administrative transitions.
const AdminRole = "admin"

// Actor identifies who is invoking a transition.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the actor carries the administrative role.
func (a Actor) IsAdmin() bool { return a.Role == AdminRole }

// CanTransition reports whether a booking may move from one status to
// another. The table is the single source of truth for the state machine.
func CanTransition(from, to domain.BookingStatus) bool {
	switch from {
	case domain.StatusDraft:
		return to == domain.StatusPending
	case domain.StatusPending:
		return to == domain.StatusActive || to == domain.StatusRejected || to == domain.StatusCancelled
	case domain.StatusActive:
		return to == domain.StatusPaused || to == domain.StatusCompleted || to == domain.StatusCancelled || to == domain.StatusRejected
	case domain.StatusPaused:
		return to == domain.StatusActive || to == domain.StatusCancelled || to == domain.StatusRejected
	}
	// Terminal states never transition again.
	return false
}

// LifecycleStore defines the database operations the controller needs.
type LifecycleStore interface {
	GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error
	UpdateDraftBooking(ctx context.Context, bookingID uuid.UUID, update domain.DraftUpdate) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) error
}

// EventPublisher sends a booking event to the notification sink.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, routingKey string, event domain.BookingEvent) error
}

// Lifecycle applies status transitions with their required side effects.
type Lifecycle struct {
	repo   LifecycleStore
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewLifecycle creates a lifecycle controller. events may be nil when no
// notification sink is configured; transitions then skip event emission.
func NewLifecycle(repo LifecycleStore, events EventPublisher, logger *slog.Logger) *Lifecycle {
	return &Lifecycle{
		repo:   repo,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

// Transition moves a booking to a new status after checking the state
// machine, persists it, and emits the owner notification where required.
// Notification failure never fails the transition.
func (l *Lifecycle) Transition(ctx context.Context, booking *domain.Booking, to domain.BookingStatus) error {
	if !CanTransition(booking.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, to)
	}

	if err := l.repo.UpdateBookingStatus(ctx, booking.ID, to); err != nil {
		return fmt.Errorf("failed to persist status %s for booking %s: %w", to, booking.ID, err)
	}
	booking.Status = to
	booking.UpdatedAt = l.now()

	l.notify(ctx, booking, to)
	return nil
}

func (l *Lifecycle) notify(ctx context.Context, booking *domain.Booking, to domain.BookingStatus) {
	if l.events == nil {
		return
	}

	var routingKey string
	switch to {
	case domain.StatusActive:
		routingKey = domain.EventBookingActive
	case domain.StatusPaused:
		routingKey = domain.EventBookingPaused
	case domain.StatusCompleted:
		routingKey = domain.EventBookingCompleted
	default:
		return
	}

	event := domain.BookingEvent{
		BookingID:  booking.ID,
		OwnerID:    booking.OwnerID,
		Status:     to,
		OccurredAt: l.now(),
		Metadata:   map[string]string{"name": booking.Name},
	}
	if err := l.events.PublishBookingEvent(ctx, routingKey, event); err != nil {
		l.logger.Warn("failed to publish booking event",
			"booking_id", booking.ID, "routing_key", routingKey, "error", err)
	}
}

// Submit moves an owner's draft to pending. Callers invoke this only after
// payment has succeeded.
func (l *Lifecycle) Submit(ctx context.Context, bookingID uuid.UUID, actor Actor) (*domain.Booking, error) {
	booking, err := l.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := l.Transition(ctx, booking, domain.StatusPending); err != nil {
		return nil, err
	}
	return booking, nil
}

// Pause suspends an active booking. Owner or admin only.
func (l *Lifecycle) Pause(ctx context.Context, bookingID uuid.UUID, actor Actor) (*domain.Booking, error) {
	return l.manualTransition(ctx, bookingID, actor, domain.StatusPaused, false)
}

// Resume reactivates a paused booking. Owner or admin only.
func (l *Lifecycle) Resume(ctx context.Context, bookingID uuid.UUID, actor Actor) (*domain.Booking, error) {
	return l.manualTransition(ctx, bookingID, actor, domain.StatusActive, false)
}

// Cancel terminally cancels a booking. Owner or admin only.
func (l *Lifecycle) Cancel(ctx context.Context, bookingID uuid.UUID, actor Actor) (*domain.Booking, error) {
	return l.manualTransition(ctx, bookingID, actor, domain.StatusCancelled, false)
}

// Reject terminally rejects a booking. Administrative only.
func (l *Lifecycle) Reject(ctx context.Context, bookingID uuid.UUID, actor Actor) (*domain.Booking, error) {
	return l.manualTransition(ctx, bookingID, actor, domain.StatusRejected, true)
}

func (l *Lifecycle) manualTransition(ctx context.Context, bookingID uuid.UUID, actor Actor, to domain.BookingStatus, adminOnly bool) (*domain.Booking, error) {
	booking, err := l.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if adminOnly && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if booking.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := l.Transition(ctx, booking, to); err != nil {
		return nil, err
	}
	return booking, nil
}

// UpdateDraft edits the restricted field subset of a draft booking. Any
// booking past draft is locked against edits.
func (l *Lifecycle) UpdateDraft(ctx context.Context, bookingID uuid.UUID, actor Actor, update domain.DraftUpdate) (*domain.Booking, error) {
	booking, err := l.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if booking.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: cannot edit a %s booking", ErrBookingLocked, booking.Status)
	}

	start := booking.StartDate
	end := booking.EndDate
	if update.StartDate != nil {
		start = *update.StartDate
	}
	if update.EndDate != nil {
		end = *update.EndDate
	}
	if !start.Before(end) {
		return nil, ErrInvalidDateRange
	}

	return l.repo.UpdateDraftBooking(ctx, bookingID, update)
}

// Delete removes a draft booking. Deletion of any other status fails with
// the lock error and leaves the booking unchanged.
func (l *Lifecycle) Delete(ctx context.Context, bookingID uuid.UUID, actor Actor) error {
	booking, err := l.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	if booking.Status != domain.StatusDraft {
		return fmt.Errorf("%w: cannot delete a %s booking", ErrBookingLocked, booking.Status)
	}
	return l.repo.DeleteBooking(ctx, bookingID)
}
