package booking

import (
	"context"
	"fmt"

	"github.com/JayBeez180/booking-system/internal/blocks"
	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/timeslot"
)

// Validator is the gatekeeper for every booking mutation: create, move,
// extend and import all pass through here before anything is written.
type Validator struct {
	store ReadStore
}

// NewValidator creates a validator over the given store view. Pass the
// transactional view when validating as part of a commit.
func NewValidator(store ReadStore) *Validator {
	return &Validator{store: store}
}

// Validate checks [startMin, endMin) on date against blocks and occupying
// bookings, short-circuiting on the first conflict. excludeID skips one
// booking from the overlap check so a move never conflicts with its own old
// slot; pass 0 to exclude nothing.
func (v *Validator) Validate(ctx context.Context, date string, startMin, endMin int, excludeID int64) (Result, error) {
	return v.ValidateWith(ctx, date, startMin, endMin, excludeID, nil)
}

// ValidateWith is Validate plus a set of pending bookings that are not in the
// store yet. Bulk import uses it so row N is checked against rows 1..N-1 of
// the same batch.
func (v *Validator) ValidateWith(ctx context.Context, date string, startMin, endMin int, excludeID int64, pending []models.Booking) (Result, error) {
	weekday, err := models.Weekday(date)
	if err != nil {
		return Result{}, err
	}

	dateBlocks, err := v.store.GetBlocksForDate(ctx, date)
	if err != nil {
		return Result{}, fmt.Errorf("load blocks for %s: %w", date, err)
	}
	recurring, err := v.store.GetRecurringBlocksForWeekday(ctx, weekday)
	if err != nil {
		return Result{}, fmt.Errorf("load recurring blocks: %w", err)
	}

	if blocks.DayBlocked(dateBlocks, recurring) {
		return Result{Kind: ConflictDayBlocked}, nil
	}

	if b := blocks.FirstTimedConflict(startMin, endMin, dateBlocks, recurring); b != nil {
		return Result{Kind: ConflictTimeBlocked, Block: b}, nil
	}

	existing, err := v.store.GetActiveBookings(ctx, date)
	if err != nil {
		return Result{}, fmt.Errorf("load bookings for %s: %w", date, err)
	}
	for i := range existing {
		b := existing[i]
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if timeslot.Overlaps(startMin, endMin, b.StartMinutes, b.EndMinutes) {
			return Result{Kind: ConflictBookingOverlap, Booking: &b}, nil
		}
	}
	for i := range pending {
		b := pending[i]
		if b.Date != date {
			continue
		}
		if timeslot.Overlaps(startMin, endMin, b.StartMinutes, b.EndMinutes) {
			return Result{Kind: ConflictBookingOverlap, Booking: &b}, nil
		}
	}

	return ok(), nil
}
