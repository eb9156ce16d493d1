package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

type lifecycleStoreStub struct {
	booking *domain.Booking

	updatedStatus   domain.BookingStatus
	statusUpdated   bool
	deleted         bool
	draftUpdated    bool
	updateStatusErr error
}

func (s *lifecycleStoreStub) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	copy := *s.booking
	return &copy, nil
}

func (s *lifecycleStoreStub) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	if s.updateStatusErr != nil {
		return s.updateStatusErr
	}
	s.statusUpdated = true
	s.updatedStatus = status
	s.booking.Status = status
	return nil
}

func (s *lifecycleStoreStub) UpdateDraftBooking(ctx context.Context, bookingID uuid.UUID, update domain.DraftUpdate) (*domain.Booking, error) {
	s.draftUpdated = true
	copy := *s.booking
	return &copy, nil
}

func (s *lifecycleStoreStub) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	s.deleted = true
	return nil
}

type eventPublisherStub struct {
	published []string
	err       error
}

func (p *eventPublisherStub) PublishBookingEvent(ctx context.Context, routingKey string, event domain.BookingEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, routingKey)
	return nil
}

func testBooking(status domain.BookingStatus) *domain.Booking {
	owner := uuid.New()
	return &domain.Booking{
		ID:        uuid.New(),
		OwnerID:   owner,
		Name:      "spring launch",
		StartDate: time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC),
		Status:    status,
	}
}

func newTestLifecycle(repo LifecycleStore, events EventPublisher) *Lifecycle {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewLifecycle(repo, events, logger)
}

func TestCanTransition_Table(t *testing.T) {
	allowed := []struct{ from, to domain.BookingStatus }{
		{domain.StatusDraft, domain.StatusPending},
		{domain.StatusPending, domain.StatusActive},
		{domain.StatusActive, domain.StatusPaused},
		{domain.StatusPaused, domain.StatusActive},
		{domain.StatusActive, domain.StatusCompleted},
		{domain.StatusPending, domain.StatusRejected},
		{domain.StatusActive, domain.StatusCancelled},
	}
	for _, c := range allowed {
		if !CanTransition(c.from, c.to) {
			t.Fatalf("expected %s -> %s to be allowed", c.from, c.to)
		}
	}

	forbidden := []struct{ from, to domain.BookingStatus }{
		{domain.StatusDraft, domain.StatusCompleted},
		{domain.StatusDraft, domain.StatusActive},
		{domain.StatusPending, domain.StatusDraft},
		{domain.StatusCompleted, domain.StatusActive},
		{domain.StatusCancelled, domain.StatusPending},
		{domain.StatusRejected, domain.StatusActive},
		{domain.StatusPaused, domain.StatusCompleted},
	}
	for _, c := range forbidden {
		if CanTransition(c.from, c.to) {
			t.Fatalf("expected %s -> %s to be forbidden", c.from, c.to)
		}
	}
}

func TestTransition_SkippingStatesRejected(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusDraft)}
	lc := newTestLifecycle(repo, nil)

	err := lc.Transition(context.Background(), repo.booking, domain.StatusCompleted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if repo.statusUpdated {
		t.Fatal("expected no status write for an invalid transition")
	}
}

func TestTransition_PublishesOwnerNotification(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusPending)}
	events := &eventPublisherStub{}
	lc := newTestLifecycle(repo, events)

	if err := lc.Transition(context.Background(), repo.booking, domain.StatusActive); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.published) != 1 || events.published[0] != domain.EventBookingActive {
		t.Fatalf("expected a booking.active event, got %v", events.published)
	}
}

func TestTransition_NoNotificationForPending(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusDraft)}
	events := &eventPublisherStub{}
	lc := newTestLifecycle(repo, events)

	if err := lc.Transition(context.Background(), repo.booking, domain.StatusPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events.published) != 0 {
		t.Fatalf("expected no event for draft -> pending, got %v", events.published)
	}
}

func TestTransition_NotificationFailureDoesNotFailTransition(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusActive)}
	events := &eventPublisherStub{err: errors.New("broker unavailable")}
	lc := newTestLifecycle(repo, events)

	if err := lc.Transition(context.Background(), repo.booking, domain.StatusPaused); err != nil {
		t.Fatalf("expected transition to succeed despite notification failure, got %v", err)
	}
	if repo.updatedStatus != domain.StatusPaused {
		t.Fatalf("expected paused status persisted, got %s", repo.updatedStatus)
	}
}

func TestPauseResume_Cycle(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusActive)}
	lc := newTestLifecycle(repo, nil)
	owner := Actor{ID: repo.booking.OwnerID}

	if _, err := lc.Pause(context.Background(), repo.booking.ID, owner); err != nil {
		t.Fatalf("unexpected pause error: %v", err)
	}
	if repo.booking.Status != domain.StatusPaused {
		t.Fatalf("expected paused, got %s", repo.booking.Status)
	}

	if _, err := lc.Resume(context.Background(), repo.booking.ID, owner); err != nil {
		t.Fatalf("unexpected resume error: %v", err)
	}
	if repo.booking.Status != domain.StatusActive {
		t.Fatalf("expected active, got %s", repo.booking.Status)
	}
}

func TestPause_ForbiddenForNonOwner(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusActive)}
	lc := newTestLifecycle(repo, nil)

	_, err := lc.Pause(context.Background(), repo.booking.ID, Actor{ID: uuid.New()})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestReject_AdminOnly(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusPending)}
	lc := newTestLifecycle(repo, nil)

	_, err := lc.Reject(context.Background(), repo.booking.ID, Actor{ID: repo.booking.OwnerID})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected owner rejection attempt to be forbidden, got %v", err)
	}

	if _, err := lc.Reject(context.Background(), repo.booking.ID, Actor{ID: uuid.New(), Role: AdminRole}); err != nil {
		t.Fatalf("expected admin rejection to succeed, got %v", err)
	}
	if repo.booking.Status != domain.StatusRejected {
		t.Fatalf("expected rejected, got %s", repo.booking.Status)
	}
}

func TestUpdateDraft_LockedPastDraft(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusPending)}
	lc := newTestLifecycle(repo, nil)

	_, err := lc.UpdateDraft(context.Background(), repo.booking.ID, Actor{ID: repo.booking.OwnerID}, domain.DraftUpdate{})
	if !errors.Is(err, ErrBookingLocked) {
		t.Fatalf("expected ErrBookingLocked, got %v", err)
	}
	if repo.draftUpdated {
		t.Fatal("expected no draft update for a locked booking")
	}
}

func TestUpdateDraft_RejectsInvalidDateRange(t *testing.T) {
	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusDraft)}
	lc := newTestLifecycle(repo, nil)

	badStart := repo.booking.EndDate.AddDate(0, 0, 5)
	_, err := lc.UpdateDraft(context.Background(), repo.booking.ID, Actor{ID: repo.booking.OwnerID}, domain.DraftUpdate{StartDate: &badStart})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestDelete_OnlyDraftsDeletable(t *testing.T) {
	for _, status := range []domain.BookingStatus{
		domain.StatusPending, domain.StatusActive, domain.StatusPaused,
		domain.StatusCompleted, domain.StatusRejected, domain.StatusCancelled,
	} {
		repo := &lifecycleStoreStub{booking: testBooking(status)}
		lc := newTestLifecycle(repo, nil)

		err := lc.Delete(context.Background(), repo.booking.ID, Actor{ID: repo.booking.OwnerID})
		if !errors.Is(err, ErrBookingLocked) {
			t.Fatalf("expected ErrBookingLocked deleting a %s booking, got %v", status, err)
		}
		if repo.deleted {
			t.Fatalf("expected %s booking to be left unchanged", status)
		}
	}

	repo := &lifecycleStoreStub{booking: testBooking(domain.StatusDraft)}
	lc := newTestLifecycle(repo, nil)
	if err := lc.Delete(context.Background(), repo.booking.ID, Actor{ID: repo.booking.OwnerID}); err != nil {
		t.Fatalf("expected draft deletion to succeed, got %v", err)
	}
	if !repo.deleted {
		t.Fatal("expected draft booking to be deleted")
	}
}
