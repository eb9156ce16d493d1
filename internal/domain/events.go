/**
 * @description
 * Event payloads published to the notification exchange when a booking
 * changes status. Delivery is best-effort: publishing failures are logged and
 * never fail the transition that produced them.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for booking events on the notification topic exchange.
const (
	EventBookingCreated   = "booking.created"
	EventBookingActive    = "booking.active"
	EventBookingPaused    = "booking.paused"
	EventBookingCompleted = "booking.completed"
)

// BookingEvent is the payload delivered to the notification sink whenever a
// booking enters a status the owner should hear about.
type BookingEvent struct {
	BookingID  uuid.UUID         `json:"booking_id"`
	OwnerID    uuid.UUID         `json:"owner_id"`
	Status     BookingStatus     `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}
