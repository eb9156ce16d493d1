/**
 * @description
 * This file defines the core domain models for campaign bookings. A booking
 * reserves display slots on one or more kiosks for a billed subscription
 * period and moves through a time-driven status lifecycle.
 *
 * @notes
 * - Monetary amounts are float64 currency values rounded to two decimal
 *   places at the final step of each calculation (see internal/app/pricing.go).
 * - Statuses are stored as plain strings in the database; the typed constants
 *   below are the only values ever written.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus enumerates the lifecycle states of a campaign booking.
type BookingStatus string

const (
	StatusDraft     BookingStatus = "draft"
	StatusPending   BookingStatus = "pending"
	StatusActive    BookingStatus = "active"
	StatusPaused    BookingStatus = "paused"
	StatusCompleted BookingStatus = "completed"
	StatusRejected  BookingStatus = "rejected"
	StatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether a booking in this status can never transition again.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// Booking represents a purchased (or in-assembly) campaign reservation.
// This struct maps directly to the `bookings` table.
type Booking struct {
	ID          uuid.UUID     `json:"id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Name        string        `json:"name"`
	ResourceIDs []uuid.UUID   `json:"resource_ids"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	TotalSlots  int           `json:"total_slots"`
	TotalCost   float64       `json:"total_cost"`
	Status      BookingStatus `json:"status"`
	AssetID     *uuid.UUID    `json:"asset_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// SelectedWindow is a value object used while assembling a booking, before a
// Booking row exists. A multi-period booking is composed of several windows.
type SelectedWindow struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Slots     int       `json:"slots"`
}

// CampaignBlock is a run of contiguous selected windows reported as a single
// combined date range for display and conflict checks.
type CampaignBlock struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	WindowCount int       `json:"window_count"`
}

// DraftUpdate carries the restricted set of fields that may still be edited
// once a booking exists but has not been submitted. Anything beyond dates and
// the linked asset is locked after creation.
type DraftUpdate struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	AssetID   *uuid.UUID `json:"asset_id,omitempty"`
}
