package booking

import (
	"fmt"

	"github.com/JayBeez180/booking-system/internal/models"
)

// Allowed status transitions. Completion and cancellation are one-way;
// no-show can be undone back to confirmed; marking an already completed
// booking completed again is an idempotent no-op the table permits.
var transitions = map[string][]string{
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
	models.StatusNoShow:    {models.StatusConfirmed},
	models.StatusCompleted: {models.StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError reports a manual status change the transition table
// forbids.
type TransitionError struct {
	BookingID int64
	From, To  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot change status %s to %s", e.BookingID, e.From, e.To)
}

// DueForCompletion reports whether a booking should be auto-completed: it is
// confirmed and its end has passed. Dates are DateLayout strings, so the
// comparison below is chronological.
func DueForCompletion(b models.Booking, today string, nowMinutes int) bool {
	if b.Status != models.StatusConfirmed {
		return false
	}
	if b.Date < today {
		return true
	}
	return b.Date == today && b.EndMinutes <= nowMinutes
}
