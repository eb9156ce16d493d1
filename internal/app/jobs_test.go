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

// jobStoreStub serves both the pass's candidate query and the lifecycle
// controller's status writes against a single in-memory map.
type jobStoreStub struct {
	bookings map[uuid.UUID]*domain.Booking

	loadErrs  []error
	loadCalls int
	failWrite map[uuid.UUID]error
}

func newJobStoreStub(bookings ...*domain.Booking) *jobStoreStub {
	s := &jobStoreStub{bookings: make(map[uuid.UUID]*domain.Booking)}
	for _, b := range bookings {
		s.bookings[b.ID] = b
	}
	return s
}

func (s *jobStoreStub) GetLifecycleCandidates(ctx context.Context) ([]domain.Booking, error) {
	s.loadCalls++
	if len(s.loadErrs) > 0 {
		err := s.loadErrs[0]
		s.loadErrs = s.loadErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	var out []domain.Booking
	for _, b := range s.bookings {
		if b.Status == domain.StatusPending || b.Status == domain.StatusActive {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *jobStoreStub) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	copy := *s.bookings[bookingID]
	return &copy, nil
}

func (s *jobStoreStub) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	if err, ok := s.failWrite[bookingID]; ok {
		return err
	}
	s.bookings[bookingID].Status = status
	return nil
}

func (s *jobStoreStub) UpdateDraftBooking(ctx context.Context, bookingID uuid.UUID, update domain.DraftUpdate) (*domain.Booking, error) {
	return s.bookings[bookingID], nil
}

func (s *jobStoreStub) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	delete(s.bookings, bookingID)
	return nil
}

func jobBooking(status domain.BookingStatus, start, end time.Time) *domain.Booking {
	return &domain.Booking{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Name:      "lifecycle candidate",
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
}

func newTestJobs(repo *jobStoreStub) *Jobs {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lifecycle := NewLifecycle(repo, nil, logger)
	return NewJobs(repo, lifecycle, NewTracker(time.UTC), logger)
}

func TestRunLifecyclePass_ActivatesAndCompletes(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

	startsToday := jobBooking(domain.StatusPending,
		time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC))
	startedYesterday := jobBooking(domain.StatusPending,
		time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 9, 0, 0, 0, 0, time.UTC))
	startsTomorrow := jobBooking(domain.StatusPending,
		time.Date(2026, time.March, 11, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 11, 0, 0, 0, 0, time.UTC))
	endedYesterday := jobBooking(domain.StatusActive,
		time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC))
	endsToday := jobBooking(domain.StatusActive,
		time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC))

	repo := newJobStoreStub(startsToday, startedYesterday, startsTomorrow, endedYesterday, endsToday)
	jobs := newTestJobs(repo)

	summary := jobs.RunLifecyclePass(context.Background(), now)
	if summary.Activated != 2 {
		t.Fatalf("expected 2 activations, got %d", summary.Activated)
	}
	if summary.Completed != 1 {
		t.Fatalf("expected 1 completion, got %d", summary.Completed)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", summary.Errors)
	}

	if repo.bookings[startsToday.ID].Status != domain.StatusActive {
		t.Fatal("expected a booking starting today to be activated")
	}
	if repo.bookings[startsTomorrow.ID].Status != domain.StatusPending {
		t.Fatal("expected a booking starting tomorrow to stay pending")
	}
	if repo.bookings[endedYesterday.ID].Status != domain.StatusCompleted {
		t.Fatal("expected a booking that ended yesterday to be completed")
	}
	if repo.bookings[endsToday.ID].Status != domain.StatusActive {
		t.Fatal("expected a booking ending today to stay active until tomorrow")
	}
}

func TestRunLifecyclePass_Idempotent(t *testing.T) {
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)

	pending := jobBooking(domain.StatusPending,
		time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 10, 0, 0, 0, 0, time.UTC))
	repo := newJobStoreStub(pending)
	jobs := newTestJobs(repo)

	first := jobs.RunLifecyclePass(context.Background(), now)
	if first.Activated != 1 {
		t.Fatalf("expected one activation on the first pass, got %d", first.Activated)
	}

	second := jobs.RunLifecyclePass(context.Background(), now)
	if second.Activated != 0 || second.Completed != 0 {
		t.Fatalf("expected the second pass to make no transitions, got %+v", second)
	}
	if repo.bookings[pending.ID].Status != domain.StatusActive {
		t.Fatal("expected the booking to remain active after the second pass")
	}
}

func TestRunLifecyclePass_ContinuesPastFailures(t *testing.T) {
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)
	start := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.April, 9, 0, 0, 0, 0, time.UTC)

	failing := jobBooking(domain.StatusPending, start, end)
	healthy := jobBooking(domain.StatusPending, start, end)

	repo := newJobStoreStub(failing, healthy)
	repo.failWrite = map[uuid.UUID]error{failing.ID: errors.New("write timeout")}
	jobs := newTestJobs(repo)

	summary := jobs.RunLifecyclePass(context.Background(), now)
	if summary.Activated != 1 {
		t.Fatalf("expected the healthy booking to be activated, got %d", summary.Activated)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("expected exactly one error recorded, got %v", summary.Errors)
	}
	if repo.bookings[healthy.ID].Status != domain.StatusActive {
		t.Fatal("expected the pass to continue past the failing booking")
	}
	if repo.bookings[failing.ID].Status != domain.StatusPending {
		t.Fatal("expected the failing booking to be left pending")
	}
}

func TestRunLifecyclePass_RetriesCandidateLoadOnce(t *testing.T) {
	now := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)

	pending := jobBooking(domain.StatusPending,
		time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.April, 9, 0, 0, 0, 0, time.UTC))
	repo := newJobStoreStub(pending)
	repo.loadErrs = []error{errors.New("connection reset")}
	jobs := newTestJobs(repo)

	summary := jobs.RunLifecyclePass(context.Background(), now)
	if repo.loadCalls != 2 {
		t.Fatalf("expected one retry after the transient load failure, got %d calls", repo.loadCalls)
	}
	if summary.Activated != 1 {
		t.Fatalf("expected the retried pass to activate the booking, got %+v", summary)
	}
}

func TestRunLifecyclePass_PersistentLoadFailureAborts(t *testing.T) {
	repo := newJobStoreStub()
	repo.loadErrs = []error{errors.New("down"), errors.New("still down")}
	jobs := newTestJobs(repo)

	summary := jobs.RunLifecyclePass(context.Background(), time.Now())
	if repo.loadCalls != 2 {
		t.Fatalf("expected exactly two load attempts, got %d", repo.loadCalls)
	}
	if summary.Processed != 0 || len(summary.Errors) != 1 {
		t.Fatalf("expected an aborted pass with one error, got %+v", summary)
	}
}
