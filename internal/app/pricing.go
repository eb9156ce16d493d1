/**
 * @description
 * Tiered multi-resource pricing for campaign bookings.
 *
 * The base charge is slots x base rate x duration in billing months, with no
 * break for longer durations: a 3-month and a 12-month campaign pay strictly
 * proportionally. When a campaign spans more than one kiosk, the first kiosk
 * is charged at the full rate and every additional kiosk at a configurable
 * percentage discount off the base rate.
 *
 * @notes
 * - Rounding to two decimal places happens once, at the final step, using
 *   round-half-up semantics. Intermediate products are never rounded.
 * - The additional-resource discount is a tenant setting; callers fall back
 *   to 0 when the setting cannot be loaded so a missing config row never
 *   fails a booking flow.
 */

package app

import "math"

// RoundCurrency rounds a currency amount to two decimal places, half-up.
func RoundCurrency(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}

// Quote computes the total cost of a campaign across one or more kiosks.
// additionalDiscountPercent applies only to the second kiosk onward and is
// expressed as a whole percentage (20 means 20% off the base rate).
func Quote(slots int, baseRate float64, durationMonths, resourceCount int, additionalDiscountPercent float64) float64 {
	if slots <= 0 || durationMonths <= 0 || resourceCount <= 0 {
		return 0
	}

	periodUnits := float64(slots) * float64(durationMonths)
	total := periodUnits * baseRate

	if resourceCount > 1 {
		discountedRate := baseRate * (1 - additionalDiscountPercent/100)
		total += float64(resourceCount-1) * periodUnits * discountedRate
	}

	return RoundCurrency(total)
}
