package booking

import (
	"fmt"

	"github.com/JayBeez180/booking-system/internal/models"
)

// ConflictKind classifies why a requested interval was rejected.
type ConflictKind string

const (
	ConflictDayBlocked     ConflictKind = "day_blocked"
	ConflictTimeBlocked    ConflictKind = "time_blocked"
	ConflictBookingOverlap ConflictKind = "booking_overlap"
)

// Result is the validator's answer. A rejection is a normal "no", not an
// error: the caller renders a message from the conflicting block or booking
// and lets the user pick again.
type Result struct {
	OK      bool                `json:"ok"`
	Kind    ConflictKind        `json:"kind,omitempty"`
	Block   *models.BlockedTime `json:"block,omitempty"`
	Booking *models.Booking     `json:"booking,omitempty"`
}

func ok() Result { return Result{OK: true} }

// Message renders a user-facing description of the conflict.
func (r Result) Message() string {
	switch {
	case r.OK:
		return "slot is available"
	case r.Kind == ConflictDayBlocked:
		return "the entire day is blocked"
	case r.Kind == ConflictTimeBlocked && r.Block != nil:
		return fmt.Sprintf("the time %s-%s is blocked", r.Block.StartClock(), r.Block.EndClock())
	case r.Kind == ConflictBookingOverlap && r.Booking != nil:
		return fmt.Sprintf("conflicts with the booking at %s", r.Booking.StartClock())
	default:
		return "slot is not available"
	}
}

// Appointment duration bounds in minutes for extend/reduce.
const (
	MinDurationMinutes = 15
	MaxDurationMinutes = 240
)

// DurationOutOfRangeError reports an extend/reduce that would leave the
// appointment outside the allowed total duration.
type DurationOutOfRangeError struct {
	Minutes int
}

func (e *DurationOutOfRangeError) Error() string {
	return fmt.Sprintf("appointment duration %d minutes is outside [%d, %d]",
		e.Minutes, MinDurationMinutes, MaxDurationMinutes)
}
