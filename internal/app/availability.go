/**
 * @description
 * Calendar availability tracking for campaign date selection. Decides whether
 * a candidate start date is selectable on a kiosk given the windows already
 * booked there, supports the toggle behavior of the date picker, and
 * coalesces contiguous selected windows into campaign blocks for display.
 *
 * @notes
 * - All date comparisons normalize to start-of-day in the configured
 *   reference timezone. "Today" and earlier dates are never selectable.
 * - Billing months are fixed 30-day blocks (DaysPerBillingMonth), an
 *   intentional simplification kept for behavioral compatibility with the
 *   billing engine, not calendar-accurate month arithmetic.
 */

package app

import (
	"sort"
	"time"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/domain"
)

const (
	// DaysPerBillingMonth is the fixed length of one billing period in days.
	DaysPerBillingMonth = 30

	// WeeklyWindowDays is the length of a single weekly campaign window.
	WeeklyWindowDays = 7

	// MaxWeeklyWindows caps how many windows a weekly-mode booking may contain.
	MaxWeeklyWindows = 4
)

// BookingMode selects between weekly multi-window campaigns and a single
// open-ended monthly subscription window.
type BookingMode string

const (
	ModeWeekly  BookingMode = "weekly"
	ModeMonthly BookingMode = "monthly"
)

// Tracker answers date-selection questions against a reference timezone.
type Tracker struct {
	loc *time.Location
}

// NewTracker creates a Tracker anchored to the given timezone. A nil location
// falls back to UTC.
func NewTracker(loc *time.Location) Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return Tracker{loc: loc}
}

// StartOfDay normalizes a timestamp to midnight in the tracker's timezone.
func (t Tracker) StartOfDay(ts time.Time) time.Time {
	y, m, d := ts.In(t.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.loc)
}

// BlockedDays returns how many days a new window occupies in the given mode.
// Monthly windows block durationMonths fixed 30-day billing periods.
func BlockedDays(mode BookingMode, durationMonths int) int {
	if mode == ModeMonthly {
		if durationMonths < 1 {
			durationMonths = 1
		}
		return durationMonths * DaysPerBillingMonth
	}
	return WeeklyWindowDays
}

// IsBlocked reports whether a candidate start date is unselectable. A date is
// blocked when it is today or earlier, or when it falls inside
// [windowStart, windowStart+durationDays) of any existing window that is not
// part of the selection currently being edited.
func (t Tracker) IsBlocked(candidate, now time.Time, existing, editing []domain.SelectedWindow, durationDays int) bool {
	day := t.StartOfDay(candidate)
	today := t.StartOfDay(now)

	if !day.After(today) {
		return true
	}

	for _, w := range existing {
		if t.inEditingSet(w, editing) {
			continue
		}
		start := t.StartOfDay(w.StartDate)
		end := start.AddDate(0, 0, durationDays)
		if !day.Before(start) && day.Before(end) {
			return true
		}
	}
	return false
}

func (t Tracker) inEditingSet(w domain.SelectedWindow, editing []domain.SelectedWindow) bool {
	start := t.StartOfDay(w.StartDate)
	for _, e := range editing {
		if t.StartOfDay(e.StartDate).Equal(start) {
			return true
		}
	}
	return false
}

// ToggleWindow adds a window starting at the given date to the selection, or
// removes it when one with the same start date is already selected. Selecting
// an already-selected date is a deselect, not an error. The returned slice is
// sorted by start date.
func (t Tracker) ToggleWindow(selection []domain.SelectedWindow, start time.Time, durationDays, slots int) []domain.SelectedWindow {
	day := t.StartOfDay(start)

	out := make([]domain.SelectedWindow, 0, len(selection)+1)
	removed := false
	for _, w := range selection {
		if t.StartOfDay(w.StartDate).Equal(day) {
			removed = true
			continue
		}
		out = append(out, w)
	}
	if !removed {
		out = append(out, domain.SelectedWindow{
			StartDate: day,
			EndDate:   day.AddDate(0, 0, durationDays),
			Slots:     slots,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

// CanAddWindow reports whether the selection may grow by one more window in
// the given mode: weekly bookings carry at most MaxWeeklyWindows windows,
// monthly bookings exactly one.
func CanAddWindow(mode BookingMode, selected int) bool {
	if mode == ModeMonthly {
		return selected < 1
	}
	return selected < MaxWeeklyWindows
}

// CoalesceBlocks merges runs of contiguous windows into campaign blocks. Two
// windows are contiguous when the second starts exactly durationDays after
// the first; non-contiguous windows form separate blocks.
func (t Tracker) CoalesceBlocks(windows []domain.SelectedWindow, durationDays int) []domain.CampaignBlock {
	if len(windows) == 0 {
		return nil
	}

	sorted := make([]domain.SelectedWindow, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	var blocks []domain.CampaignBlock
	current := domain.CampaignBlock{
		StartDate:   t.StartOfDay(sorted[0].StartDate),
		EndDate:     t.StartOfDay(sorted[0].StartDate).AddDate(0, 0, durationDays),
		WindowCount: 1,
	}

	for _, w := range sorted[1:] {
		start := t.StartOfDay(w.StartDate)
		if start.Equal(current.EndDate) {
			current.EndDate = start.AddDate(0, 0, durationDays)
			current.WindowCount++
			continue
		}
		blocks = append(blocks, current)
		current = domain.CampaignBlock{
			StartDate:   start,
			EndDate:     start.AddDate(0, 0, durationDays),
			WindowCount: 1,
		}
	}
	return append(blocks, current)
}
