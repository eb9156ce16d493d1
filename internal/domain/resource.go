/**
 * @description
 * Domain model for a kiosk resource, the physical unit being booked.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ResourceStatus enumerates the operational states of a kiosk.
type ResourceStatus string

const (
	ResourceActive      ResourceStatus = "active"
	ResourceInactive    ResourceStatus = "inactive"
	ResourceMaintenance ResourceStatus = "maintenance"
)

// Resource represents a kiosk available for campaign bookings. Base rate is
// currency per slot per billing period. Only administrators may change a
// resource while bookings reference it.
type Resource struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Location  string         `json:"location"`
	BaseRate  float64        `json:"base_rate"`
	Status    ResourceStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
