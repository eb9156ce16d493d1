/**
 * @description
 * This file contains the coupon validation and application engine. Validation
 * checks a code against activity, usage caps, time bounds, minimum amounts,
 * and scope predicates in a fixed order so the first applicable failure
 * reason is deterministic; the outcome is always returned as data for the UI
 * to render, never as an error.
 *
 * @notes
 * - Validate-then-apply is a deliberately non-atomic two-phase operation.
 *   Two concurrent checkouts can both pass validation for a single-use code
 *   before either records usage; the design accepts this race instead of
 *   serializing validation behind a distributed lock. Application happens
 *   only after payment success and its failure is surfaced as a warning, not
 *   a rollback, since funds have already moved.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
	"github.com/MightWarriorNo1/kioskads-booking-service/internal/store"
)

// CouponStore defines the database operations the engine needs.
type CouponStore interface {
	GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error)
	HasCouponUsage(ctx context.Context, couponID, userID uuid.UUID) (bool, error)
	RecordCouponUsage(ctx context.Context, usage domain.CouponUsage) error
	IncrementCouponUses(ctx context.Context, couponID uuid.UUID) error
}

// CouponCache is a read-through cache for coupon metadata keyed by normalized
// code. Get returns (nil, nil) on a miss.
type CouponCache interface {
	Get(ctx context.Context, code string) (*domain.Coupon, error)
	Set(ctx context.Context, code string, coupon *domain.Coupon) error
	Delete(ctx context.Context, code string) error
}

// CouponEngine validates promotional codes and records their redemption.
type CouponEngine struct {
	repo   CouponStore
	cache  CouponCache
	logger *slog.Logger
	now    func() time.Time
}

// NewCouponEngine creates a coupon engine. cache may be nil to disable
// caching entirely.
func NewCouponEngine(repo CouponStore, cache CouponCache, logger *slog.Logger) *CouponEngine {
	return &CouponEngine{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// NormalizeCouponCode trims surrounding whitespace and uppercases a code.
// Codes are case-insensitive throughout the system.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate checks a code against the checkout context and computes the
// discounted amounts. Checks short-circuit on the first failure in a fixed
// order: existence/activity, usage cap, time window, minimum amount, scopes,
// and finally prior usage by this user (last because it needs a lookup).
func (e *CouponEngine) Validate(ctx context.Context, code string, cc domain.CouponContext) (domain.CouponValidation, error) {
	normalized := NormalizeCouponCode(code)
	if normalized == "" {
		return invalid(domain.ReasonInvalidCode, "coupon code is required"), nil
	}

	coupon, err := e.lookup(ctx, normalized)
	if err != nil {
		if errors.Is(err, store.ErrCouponNotFound) {
			return invalid(domain.ReasonInvalidCode, "coupon code not recognized"), nil
		}
		return domain.CouponValidation{}, fmt.Errorf("failed to load coupon %q: %w", normalized, err)
	}
	if !coupon.IsActive {
		return invalid(domain.ReasonInvalidCode, "coupon code not recognized"), nil
	}

	if coupon.MaxUses > 0 && coupon.CurrentUses >= coupon.MaxUses {
		return invalid(domain.ReasonUsageLimitReached, "coupon has reached its usage limit"), nil
	}

	now := e.now()
	if now.Before(coupon.ValidFrom) {
		return invalid(domain.ReasonNotYetValid, "coupon is not valid yet"), nil
	}
	if now.After(coupon.ValidUntil) {
		return invalid(domain.ReasonExpired, "coupon has expired"), nil
	}

	if coupon.MinAmount != nil && cc.Amount < *coupon.MinAmount {
		return invalid(domain.ReasonBelowMinimum,
			fmt.Sprintf("order total must be at least %.2f to use this coupon", *coupon.MinAmount)), nil
	}

	if msg, ok := evaluateScopes(coupon.Scopes, cc); !ok {
		return invalid(domain.ReasonScopeMismatch, msg), nil
	}

	used, err := e.repo.HasCouponUsage(ctx, coupon.ID, cc.UserID)
	if err != nil {
		return domain.CouponValidation{}, fmt.Errorf("failed to check coupon usage: %w", err)
	}
	if used {
		return invalid(domain.ReasonAlreadyUsed, "coupon has already been used on this account"), nil
	}

	discount := discountFor(coupon, cc.Amount)
	final := cc.Amount - discount
	if final < 0 {
		final = 0
	}

	return domain.CouponValidation{
		Valid:          true,
		DiscountAmount: RoundCurrency(discount),
		FinalAmount:    RoundCurrency(final),
		CouponID:       coupon.ID,
	}, nil
}

// Apply records a redemption after payment has succeeded: it inserts the
// usage record and increments the coupon's counter. It is not atomic with
// Validate; see the file comment for the accepted race.
func (e *CouponEngine) Apply(ctx context.Context, couponID uuid.UUID, code string, userID uuid.UUID, bookingID *uuid.UUID, discountAmount float64) error {
	usage := domain.CouponUsage{
		CouponID:       couponID,
		UserID:         userID,
		BookingID:      bookingID,
		DiscountAmount: discountAmount,
		UsedAt:         e.now(),
	}
	if err := e.repo.RecordCouponUsage(ctx, usage); err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	if err := e.repo.IncrementCouponUses(ctx, couponID); err != nil {
		return fmt.Errorf("failed to increment coupon uses: %w", err)
	}

	// The cached copy now carries a stale counter; drop it so the next
	// validation reloads from the store.
	if e.cache != nil {
		if err := e.cache.Delete(ctx, NormalizeCouponCode(code)); err != nil {
			e.logger.Warn("failed to invalidate coupon cache", "code", code, "error", err)
		}
	}
	return nil
}

func (e *CouponEngine) lookup(ctx context.Context, normalized string) (*domain.Coupon, error) {
	if e.cache != nil {
		cached, err := e.cache.Get(ctx, normalized)
		if err != nil {
			e.logger.Warn("coupon cache read failed", "code", normalized, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	coupon, err := e.repo.GetCouponByCode(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, normalized, coupon); err != nil {
			e.logger.Warn("coupon cache write failed", "code", normalized, "error", err)
		}
	}
	return coupon, nil
}

// evaluateScopes applies every scope predicate; all must pass. Resource
// scopes collectively define the covered kiosk set and fail when the booking
// includes a kiosk outside it.
func evaluateScopes(scopes []domain.CouponScope, cc domain.CouponContext) (string, bool) {
	var coveredResources map[string]bool

	for _, s := range scopes {
		switch s.ScopeType {
		case domain.ScopeRole:
			if cc.UserRole != s.ScopeValue {
				return "coupon is limited to a different user role", false
			}
		case domain.ScopeProduct:
			if cc.ProductType != s.ScopeValue {
				return "coupon applies to a different product type", false
			}
		case domain.ScopeSubscriptionTier:
			if cc.SubscriptionTier != s.ScopeValue {
				return "coupon is limited to a different subscription tier", false
			}
		case domain.ScopeResource:
			if coveredResources == nil {
				coveredResources = make(map[string]bool)
			}
			coveredResources[s.ScopeValue] = true
		}
	}

	if coveredResources != nil {
		for _, id := range cc.ResourceIDs {
			if !coveredResources[id.String()] {
				return "coupon does not cover the selected kiosks", false
			}
		}
	}
	return "", true
}

func discountFor(coupon *domain.Coupon, amount float64) float64 {
	switch coupon.Type {
	case domain.CouponPercentage:
		return amount * coupon.Value / 100
	case domain.CouponFixed:
		if coupon.Value > amount {
			return amount
		}
		return coupon.Value
	case domain.CouponFree:
		return amount
	}
	return 0
}

func invalid(reason domain.CouponReason, message string) domain.CouponValidation {
	return domain.CouponValidation{Valid: false, Reason: reason, Message: message}
}
