// Package slots enumerates the candidate start times a customer can book.
package slots

import (
	"context"
	"fmt"

	"github.com/JayBeez180/booking-system/internal/blocks"
	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/timeslot"
)

// DefaultStrideMinutes is the fixed step between candidate start times,
// regardless of service duration.
const DefaultStrideMinutes = 30

// Slot is a candidate (start, end) interval offered for booking.
type Slot struct {
	StartMinutes int    `json:"start_minutes"`
	EndMinutes   int    `json:"end_minutes"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

func newSlot(startMin, endMin int) Slot {
	return Slot{
		StartMinutes: startMin,
		EndMinutes:   endMin,
		Start:        timeslot.FromMinutes(startMin),
		End:          timeslot.FromMinutes(endMin),
	}
}

// Store supplies the calendar state the generator reads. GetActiveBookings
// returns only bookings that occupy the calendar.
type Store interface {
	GetWindowsForWeekday(ctx context.Context, weekday int) ([]models.AvailabilityWindow, error)
	GetBlocksForDate(ctx context.Context, date string) ([]models.BlockedTime, error)
	GetRecurringBlocksForWeekday(ctx context.Context, weekday int) ([]models.BlockedTime, error)
	GetActiveBookings(ctx context.Context, date string) ([]models.Booking, error)
}

// Generator produces free slots for a date. It is read-only and safe to run
// concurrently; a returned slot can go stale at any moment, which is why the
// validator re-checks at commit time.
type Generator struct {
	store  Store
	stride int
}

// NewGenerator creates a generator. A stride of zero or less falls back to
// DefaultStrideMinutes.
func NewGenerator(store Store, stride int) *Generator {
	if stride <= 0 {
		stride = DefaultStrideMinutes
	}
	return &Generator{store: store, stride: stride}
}

// Generate walks each availability window for the date's weekday in storage
// order, emitting every stride-aligned slot whose full duration fits the
// window and clears both blocks and occupying bookings. A fully blocked day
// short-circuits to an empty list. Overlapping windows are not merged, so a
// start time can appear once per window that contains it.
func (g *Generator) Generate(ctx context.Context, date string, durationMinutes int) ([]Slot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("non-positive duration %d", durationMinutes)
	}

	weekday, err := models.Weekday(date)
	if err != nil {
		return nil, err
	}

	dateBlocks, err := g.store.GetBlocksForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load blocks for %s: %w", date, err)
	}
	recurring, err := g.store.GetRecurringBlocksForWeekday(ctx, weekday)
	if err != nil {
		return nil, fmt.Errorf("load recurring blocks: %w", err)
	}
	if blocks.DayBlocked(dateBlocks, recurring) {
		return nil, nil
	}

	windows, err := g.store.GetWindowsForWeekday(ctx, weekday)
	if err != nil {
		return nil, fmt.Errorf("load windows: %w", err)
	}
	if len(windows) == 0 {
		return nil, nil
	}

	bookings, err := g.store.GetActiveBookings(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load bookings for %s: %w", date, err)
	}

	var result []Slot
	for _, w := range windows {
		for t := w.StartMinutes; t+durationMinutes <= w.EndMinutes; t += g.stride {
			end := t + durationMinutes
			if blocks.FirstTimedConflict(t, end, dateBlocks, recurring) != nil {
				continue
			}
			if overlapsAny(t, end, bookings) {
				continue
			}
			result = append(result, newSlot(t, end))
		}
	}
	return result, nil
}

func overlapsAny(startMin, endMin int, bookings []models.Booking) bool {
	for _, b := range bookings {
		if timeslot.Overlaps(startMin, endMin, b.StartMinutes, b.EndMinutes) {
			return true
		}
	}
	return false
}
