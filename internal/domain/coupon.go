/**
 * @description
 * This file defines the domain models for promotional coupons, their
 * eligibility scopes, and usage records, together with the validation result
 * types returned to callers.
 *
 * @notes
 * - Validation outcomes are returned as data, never as errors, because the
 *   caller needs to render the specific reason to the end user.
 * - A coupon with zero scopes applies universally; scopes are ANDed.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// CouponType enumerates how a coupon's value is interpreted.
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
	CouponFree       CouponType = "free"
)

// ScopeType enumerates the eligibility predicates a coupon may carry.
type ScopeType string

const (
	ScopeRole             ScopeType = "role"
	ScopeResource         ScopeType = "resource"
	ScopeProduct          ScopeType = "product"
	ScopeSubscriptionTier ScopeType = "subscription_tier"
)

// Coupon represents a promotional code owned by the platform. Booking flows
// read coupons but never modify them except through usage application.
type Coupon struct {
	ID          uuid.UUID     `json:"id"`
	Code        string        `json:"code"`
	Type        CouponType    `json:"type"`
	Value       float64       `json:"value"`
	MaxUses     int           `json:"max_uses"`
	CurrentUses int           `json:"current_uses"`
	MinAmount   *float64      `json:"min_amount,omitempty"`
	ValidFrom   time.Time     `json:"valid_from"`
	ValidUntil  time.Time     `json:"valid_until"`
	IsActive    bool          `json:"is_active"`
	Scopes      []CouponScope `json:"scopes"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CouponScope is a single eligibility predicate attached to a coupon.
type CouponScope struct {
	ScopeType  ScopeType `json:"scope_type"`
	ScopeValue string    `json:"scope_value"`
}

// CouponUsage records a single redemption of a coupon by a user. At most one
// usage record may exist per (coupon, user) pair; the engine enforces this by
// lookup before acceptance rather than a storage-level constraint.
type CouponUsage struct {
	CouponID       uuid.UUID  `json:"coupon_id"`
	UserID         uuid.UUID  `json:"user_id"`
	BookingID      *uuid.UUID `json:"booking_id,omitempty"`
	DiscountAmount float64    `json:"discount_amount"`
	UsedAt         time.Time  `json:"used_at"`
}

// CouponReason identifies why a coupon failed validation. The order in which
// the engine checks these is part of the contract with the UI.
type CouponReason string

const (
	ReasonInvalidCode       CouponReason = "INVALID_CODE"
	ReasonUsageLimitReached CouponReason = "USAGE_LIMIT_REACHED"
	ReasonNotYetValid       CouponReason = "NOT_YET_VALID"
	ReasonExpired           CouponReason = "EXPIRED"
	ReasonBelowMinimum      CouponReason = "BELOW_MINIMUM"
	ReasonScopeMismatch     CouponReason = "SCOPE_MISMATCH"
	ReasonAlreadyUsed       CouponReason = "ALREADY_USED"
)

// CouponContext carries everything the engine needs to evaluate eligibility
// for one checkout attempt.
type CouponContext struct {
	UserID           uuid.UUID   `json:"user_id"`
	UserRole         string      `json:"user_role"`
	Amount           float64     `json:"amount"`
	ResourceIDs      []uuid.UUID `json:"resource_ids"`
	ProductType      string      `json:"product_type"`
	SubscriptionTier string      `json:"subscription_tier"`
}

// CouponValidation is the outcome of validating a code against a context.
type CouponValidation struct {
	Valid          bool         `json:"valid"`
	Reason         CouponReason `json:"reason,omitempty"`
	Message        string       `json:"message,omitempty"`
	DiscountAmount float64      `json:"discount_amount"`
	FinalAmount    float64      `json:"final_amount"`
	CouponID       uuid.UUID    `json:"coupon_id,omitempty"`
}
