// Package blocks implements the exclusion-window rules: which blocks apply
// to a date, the day-level full-block short circuit, and the helpers that
// materialize range and quick-add blocks into stored rows.
package blocks

import (
	"fmt"
	"time"

	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/timeslot"
)

// DayBlocked reports whether the whole day is excluded: any all-day block on
// the exact date, or any recurring all-day block for the date's weekday.
// Callers consult this before generating slots or validating a booking; when
// true, partial blocks need not be enumerated at all.
func DayBlocked(dateBlocks, recurringBlocks []models.BlockedTime) bool {
	for _, b := range dateBlocks {
		if b.AllDay {
			return true
		}
	}
	for _, b := range recurringBlocks {
		if b.AllDay {
			return true
		}
	}
	return false
}

// FirstTimedConflict returns the first timed block (date-specific first, then
// recurring) whose interval overlaps [startMin, endMin), or nil when the
// interval is clear. All-day blocks are skipped here; DayBlocked owns them.
func FirstTimedConflict(startMin, endMin int, dateBlocks, recurringBlocks []models.BlockedTime) *models.BlockedTime {
	for _, group := range [][]models.BlockedTime{dateBlocks, recurringBlocks} {
		for i := range group {
			b := group[i]
			if b.AllDay {
				continue
			}
			if timeslot.Overlaps(startMin, endMin, b.StartMinutes, b.EndMinutes) {
				return &b
			}
		}
	}
	return nil
}

// MaterializeRange expands a closed date range (a holiday, say) into one
// all-day row per day. Ranges are never stored as ranges.
func MaterializeRange(startDate, endDate, reason string) ([]models.BlockedTime, error) {
	start, err := time.Parse(models.DateLayout, startDate)
	if err != nil {
		return nil, fmt.Errorf("parse start date %q: %w", startDate, err)
	}
	end, err := time.Parse(models.DateLayout, endDate)
	if err != nil {
		return nil, fmt.Errorf("parse end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("range end %s before start %s", endDate, startDate)
	}

	var rows []models.BlockedTime
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		rows = append(rows, models.BlockedTime{
			Date:   d.Format(models.DateLayout),
			Reason: reason,
			AllDay: true,
		})
	}
	return rows, nil
}

// QuickAddAllDayRest is the duration value that blocks the rest of the day
// from the given start time.
const QuickAddAllDayRest = "all_day"

// QuickAdd builds a timed block from the calendar quick-add form. A duration
// of QuickAddAllDayRest blocks from the start time until 23:59 (a timed row,
// not a true all-day one, so earlier bookings stand).
func QuickAdd(date, startTime, duration, reason string) (models.BlockedTime, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.BlockedTime{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	startMin, err := timeslot.ToMinutes(startTime)
	if err != nil {
		return models.BlockedTime{}, err
	}

	if reason == "" {
		reason = "Blocked"
	}

	block := models.BlockedTime{
		Date:         date,
		StartMinutes: startMin,
		Reason:       reason,
	}

	if duration == QuickAddAllDayRest {
		block.EndMinutes = 23*60 + 59
		return block, nil
	}

	var mins int
	if _, err := fmt.Sscanf(duration, "%d", &mins); err != nil || mins <= 0 {
		return models.BlockedTime{}, fmt.Errorf("invalid quick-add duration %q", duration)
	}
	block.EndMinutes = startMin + mins
	return block, nil
}
