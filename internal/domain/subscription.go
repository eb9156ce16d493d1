/**
 * @description
 * Domain model for a recurring subscription optionally created alongside a
 * booking. Its lifecycle is independent of the booking lifecycle.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus enumerates subscription states.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionPaused    SubscriptionStatus = "paused"
)

// Subscription represents a recurring billing arrangement for one owner,
// linked to zero or more bookings.
type Subscription struct {
	ID          uuid.UUID          `json:"id"`
	OwnerID     uuid.UUID          `json:"owner_id"`
	Status      SubscriptionStatus `json:"status"`
	AutoRenewal bool               `json:"auto_renewal"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
	BookingIDs  []uuid.UUID        `json:"booking_ids"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
