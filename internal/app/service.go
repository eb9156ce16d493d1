/**
 * @description
 * This file contains the booking orchestration service: assembling a priced
 * draft from validated inputs, checking calendar availability, and driving
 * the submit flow of quote -> coupon validation -> payment authorization ->
 * pending booking -> coupon application -> optional subscription.
 *
 * @notes
 * - A booking is never marked pending unless payment authorization
 *   succeeded, and payment calls are never retried automatically.
 * - Coupon application and subscription creation happen after payment; their
 *   failures are logged as warnings and never roll back the confirmed
 *   booking, since funds have already moved.
 */

package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
	"github.com/MightWarriorNo1/kioskads-booking-service/internal/store"
)

// PaymentAuthorizer is the payment collaborator: it either returns a
// client-side confirmation token or an error reason, never retried here.
type PaymentAuthorizer interface {
	Authorize(ctx context.Context, amount float64, currency string) (string, error)
}

// Service provides the booking assembly and submission flows.
type Service struct {
	repo            store.Repository
	coupons         *CouponEngine
	lifecycle       *Lifecycle
	payments        PaymentAuthorizer
	events          EventPublisher
	tracker         Tracker
	discountPercent float64
	currency        string
	logger          *slog.Logger
}

// NewService creates a booking service. discountPercent is the per-tenant
// additional-resource discount loaded once at startup; callers pass 0 when
// the setting is unavailable so booking flows never fail on a missing
// config row.
func NewService(repo store.Repository, coupons *CouponEngine, lifecycle *Lifecycle, payments PaymentAuthorizer, events EventPublisher, tracker Tracker, discountPercent float64, currency string, logger *slog.Logger) *Service {
	return &Service{
		repo:            repo,
		coupons:         coupons,
		lifecycle:       lifecycle,
		payments:        payments,
		events:          events,
		tracker:         tracker,
		discountPercent: discountPercent,
		currency:        currency,
		logger:          logger,
	}
}

// CheckAvailability reports whether a candidate start date is selectable on
// a kiosk, given the windows the caller is currently editing.
func (s *Service) CheckAvailability(ctx context.Context, resourceID uuid.UUID, candidate, now time.Time, editing []domain.SelectedWindow, mode BookingMode, durationMonths int) (bool, error) {
	booked, err := s.repo.GetBookedWindows(ctx, resourceID)
	if err != nil {
		return false, fmt.Errorf("failed to load booked windows for resource %s: %w", resourceID, err)
	}
	blocked := s.tracker.IsBlocked(candidate, now, booked, editing, BlockedDays(mode, durationMonths))
	return blocked, nil
}

// QuoteBooking prices a campaign across the given kiosks. All kiosks must
// exist and be active; the first kiosk's base rate prices the campaign, with
// the configured discount applied to each additional kiosk.
func (s *Service) QuoteBooking(ctx context.Context, resourceIDs []uuid.UUID, slots, durationMonths int) (float64, error) {
	if len(resourceIDs) == 0 {
		return 0, fmt.Errorf("at least one resource is required")
	}

	var baseRate float64
	for i, id := range resourceIDs {
		res, err := s.repo.FindResourceByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if res.Status != domain.ResourceActive {
			return 0, fmt.Errorf("resource %s is not available for booking", id)
		}
		if i == 0 {
			baseRate = res.BaseRate
		}
	}

	return Quote(slots, baseRate, durationMonths, len(resourceIDs), s.discountPercent), nil
}

// CreateDraftRequest carries the inputs for assembling a draft booking.
type CreateDraftRequest struct {
	Name           string
	ResourceIDs    []uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	Slots          int
	DurationMonths int
	AssetID        *uuid.UUID
}

// CreateDraft validates and persists a priced draft booking for the owner.
func (s *Service) CreateDraft(ctx context.Context, ownerID uuid.UUID, req CreateDraftRequest) (*domain.Booking, error) {
	if !req.StartDate.Before(req.EndDate) {
		return nil, ErrInvalidDateRange
	}
	if req.Slots <= 0 {
		return nil, fmt.Errorf("total slots must be positive")
	}

	total, err := s.QuoteBooking(ctx, req.ResourceIDs, req.Slots, req.DurationMonths)
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		OwnerID:     ownerID,
		Name:        req.Name,
		ResourceIDs: req.ResourceIDs,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TotalSlots:  req.Slots,
		TotalCost:   total,
		Status:      domain.StatusDraft,
		AssetID:     req.AssetID,
	}
	created, err := s.repo.CreateBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		event := domain.BookingEvent{
			BookingID:  created.ID,
			OwnerID:    created.OwnerID,
			Status:     created.Status,
			OccurredAt: time.Now(),
			Metadata:   map[string]string{"name": created.Name},
		}
		if err := s.events.PublishBookingEvent(ctx, domain.EventBookingCreated, event); err != nil {
			s.logger.Warn("failed to publish booking created event", "booking_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// SubmitRequest carries the options for submitting a draft.
type SubmitRequest struct {
	CouponCode         string
	CouponContext      domain.CouponContext
	CreateSubscription bool
	AutoRenewal        bool
}

// SubmitResult reports the outcome of a successful submission.
type SubmitResult struct {
	Booking           *domain.Booking          `json:"booking"`
	ConfirmationToken string                   `json:"confirmation_token"`
	Coupon            *domain.CouponValidation `json:"coupon,omitempty"`
	SubscriptionID    *uuid.UUID               `json:"subscription_id,omitempty"`
}

// CouponRejected wraps an invalid coupon validation so handlers can render
// the specific reason instead of a generic failure.
type CouponRejected struct {
	Validation domain.CouponValidation
}

func (e *CouponRejected) Error() string {
	return fmt.Sprintf("coupon rejected: %s", e.Validation.Reason)
}

// Submit drives payment and promotion of a draft to pending. The coupon, if
// any, is validated before payment and applied only after payment success.
func (s *Service) Submit(ctx context.Context, bookingID uuid.UUID, actor Actor, req SubmitRequest) (*SubmitResult, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if booking.Status != domain.StatusDraft {
		return nil, fmt.Errorf("%w: cannot submit a %s booking", ErrBookingLocked, booking.Status)
	}

	amount := booking.TotalCost
	var couponResult *domain.CouponValidation

	if req.CouponCode != "" {
		cc := req.CouponContext
		cc.UserID = booking.OwnerID
		cc.Amount = amount
		cc.ResourceIDs = booking.ResourceIDs

		validation, err := s.coupons.Validate(ctx, req.CouponCode, cc)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, &CouponRejected{Validation: validation}
		}
		couponResult = &validation
		amount = validation.FinalAmount
	}

	token, err := s.payments.Authorize(ctx, amount, s.currency)
	if err != nil {
		// Payment failures propagate verbatim; the booking stays a draft.
		return nil, err
	}

	if _, err := s.lifecycle.Submit(ctx, bookingID, actor); err != nil {
		return nil, err
	}
	booking.Status = domain.StatusPending

	if couponResult != nil {
		err := s.coupons.Apply(ctx, couponResult.CouponID, req.CouponCode, booking.OwnerID, &booking.ID, couponResult.DiscountAmount)
		if err != nil {
			// Funds have already moved; surface as a warning, never a rollback.
			s.logger.Warn("coupon application failed after payment",
				"booking_id", booking.ID, "coupon_id", couponResult.CouponID, "error", err)
		}
	}

	result := &SubmitResult{
		Booking:           booking,
		ConfirmationToken: token,
		Coupon:            couponResult,
	}

	if req.CreateSubscription {
		sub, err := s.repo.CreateSubscription(ctx, &domain.Subscription{
			OwnerID:     booking.OwnerID,
			Status:      domain.SubscriptionActive,
			AutoRenewal: req.AutoRenewal,
			StartDate:   booking.StartDate,
		})
		if err != nil {
			s.logger.Warn("failed to create subscription for booking", "booking_id", booking.ID, "error", err)
		} else {
			if err := s.repo.LinkBookingToSubscription(ctx, sub.ID, booking.ID); err != nil {
				s.logger.Warn("failed to link booking to subscription",
					"booking_id", booking.ID, "subscription_id", sub.ID, "error", err)
			}
			result.SubscriptionID = &sub.ID
		}
	}

	return result, nil
}

// ValidateCoupon exposes coupon validation for the pre-checkout UI.
func (s *Service) ValidateCoupon(ctx context.Context, code string, cc domain.CouponContext) (domain.CouponValidation, error) {
	return s.coupons.Validate(ctx, code, cc)
}

// CancelSubscription stops a subscription from auto-renewing and marks it
// cancelled. The linked bookings are unaffected; their lifecycle is
// independent.
func (s *Service) CancelSubscription(ctx context.Context, subID uuid.UUID, actor Actor) error {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		return err
	}
	if sub.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := s.repo.SetSubscriptionAutoRenewal(ctx, subID, false); err != nil {
		return err
	}
	return s.repo.UpdateSubscriptionStatus(ctx, subID, domain.SubscriptionCancelled)
}

// PauseSubscription suspends an active subscription's billing.
func (s *Service) PauseSubscription(ctx context.Context, subID uuid.UUID, actor Actor) error {
	return s.setSubscriptionStatus(ctx, subID, actor, domain.SubscriptionActive, domain.SubscriptionPaused)
}

// ResumeSubscription reactivates a paused subscription.
func (s *Service) ResumeSubscription(ctx context.Context, subID uuid.UUID, actor Actor) error {
	return s.setSubscriptionStatus(ctx, subID, actor, domain.SubscriptionPaused, domain.SubscriptionActive)
}

func (s *Service) setSubscriptionStatus(ctx context.Context, subID uuid.UUID, actor Actor, from, to domain.SubscriptionStatus) error {
	sub, err := s.repo.GetSubscriptionByID(ctx, subID)
	if err != nil {
		return err
	}
	if sub.OwnerID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	if sub.Status != from {
		return fmt.Errorf("%w: subscription is %s", ErrInvalidTransition, sub.Status)
	}
	return s.repo.UpdateSubscriptionStatus(ctx, subID, to)
}
