/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access operations required by the booking service. Defining an interface
 * decouples the business logic from the PostgreSQL implementation and keeps
 * the app layer testable with hand-rolled stubs.
 *
 * @dependencies
 * - context, time: Standard Go libraries.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Resource methods
	FindResourceByID(ctx context.Context, resourceID uuid.UUID) (*domain.Resource, error)
	ListActiveResources(ctx context.Context) ([]domain.Resource, error)

	// Booking methods
	CreateBooking(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error
	UpdateDraftBooking(ctx context.Context, bookingID uuid.UUID, update domain.DraftUpdate) (*domain.Booking, error)
	DeleteBooking(ctx context.Context, bookingID uuid.UUID) error
	// GetLifecycleCandidates returns bookings in the pending or active states,
	// the only states the lifecycle pass may advance.
	GetLifecycleCandidates(ctx context.Context) ([]domain.Booking, error)
	// GetBookedWindows returns the confirmed windows on a resource that block
	// new date selections (bookings not in a terminal or draft state).
	GetBookedWindows(ctx context.Context, resourceID uuid.UUID) ([]domain.SelectedWindow, error)

	// Coupon methods
	GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error)
	HasCouponUsage(ctx context.Context, couponID, userID uuid.UUID) (bool, error)
	RecordCouponUsage(ctx context.Context, usage domain.CouponUsage) error
	IncrementCouponUses(ctx context.Context, couponID uuid.UUID) error

	// Subscription methods
	CreateSubscription(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	GetSubscriptionByID(ctx context.Context, subID uuid.UUID) (*domain.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, subID uuid.UUID, status domain.SubscriptionStatus) error
	SetSubscriptionAutoRenewal(ctx context.Context, subID uuid.UUID, autoRenewal bool) error
	LinkBookingToSubscription(ctx context.Context, subID, bookingID uuid.UUID) error
}
