package models

import (
	"fmt"
	"time"

	"github.com/JayBeez180/booking-system/internal/timeslot"
)

// DateLayout is the storage and wire format for calendar dates.
const DateLayout = "2006-01-02"

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// OccupiesCalendar reports whether a booking with the given status counts
// toward conflict checks. Cancelled and no-show rows keep their place in
// history but no longer arm the overlap check.
func OccupiesCalendar(status string) bool {
	return status == StatusConfirmed || status == StatusCompleted
}

// Weekday returns the day of week for a DateLayout date, with Monday=0 and
// Sunday=6.
func Weekday(date string) (int, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", date, err)
	}
	return (int(t.Weekday()) + 6) % 7, nil
}

// Service is a bookable offering. Its duration feeds the slot generator and
// validator; bookings snapshot it at creation time.
type Service struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Description     string    `json:"description,omitempty"`
	IsActive        bool      `json:"is_active"`
	DisplayOrder    int       `json:"display_order"`
	CreatedAt       time.Time `json:"created_at"`
}

// AvailabilityWindow is a configured open-hours interval for one weekday.
// A weekday may carry several disjoint (or even overlapping) windows.
// Windows are soft-deactivated, never deleted.
type AvailabilityWindow struct {
	ID           int64     `json:"id"`
	DayOfWeek    int       `json:"day_of_week"` // 0=Monday .. 6=Sunday
	StartMinutes int       `json:"start_minutes"`
	EndMinutes   int       `json:"end_minutes"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BlockedTime is an administrator-defined exclusion window: a lunch break, a
// day off, a holiday day. Four shapes exist: single-date timed, single-date
// all-day, recurring-weekly timed, recurring-weekly all-day. A date range is
// stored as one all-day row per day, not as a range.
type BlockedTime struct {
	ID                 int64     `json:"id"`
	Date               string    `json:"date"` // ignored when RecurringWeekly
	StartMinutes       int       `json:"start_minutes"`
	EndMinutes         int       `json:"end_minutes"`
	Reason             string    `json:"reason,omitempty"`
	AllDay             bool      `json:"all_day"`
	RecurringWeekly    bool      `json:"recurring_weekly"`
	RecurringDayOfWeek int       `json:"recurring_day_of_week"` // 0=Monday .. 6=Sunday
	CreatedAt          time.Time `json:"created_at"`
}

// StartClock formats the block start as "HH:MM".
func (b BlockedTime) StartClock() string { return timeslot.FromMinutes(b.StartMinutes) }

// EndClock formats the block end as "HH:MM".
func (b BlockedTime) EndClock() string { return timeslot.FromMinutes(b.EndMinutes) }

// Booking is a customer reservation. Start and end are snapshotted at
// creation from the service duration; later service edits never resize
// existing bookings. Bookings are never deleted, cancellation is a status.
type Booking struct {
	ID            int64      `json:"id"`
	Reference     string     `json:"reference"`
	ServiceID     int64      `json:"service_id"`
	ServiceName   string     `json:"service_name,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	Date          string     `json:"date"`
	StartMinutes  int        `json:"start_minutes"`
	EndMinutes    int        `json:"end_minutes"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	NoShowAt      *time.Time `json:"no_show_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StartClock formats the booking start as "HH:MM".
func (b Booking) StartClock() string { return timeslot.FromMinutes(b.StartMinutes) }

// EndClock formats the booking end as "HH:MM".
func (b Booking) EndClock() string { return timeslot.FromMinutes(b.EndMinutes) }

// DurationMinutes is the snapshotted appointment length.
func (b Booking) DurationMinutes() int { return b.EndMinutes - b.StartMinutes }
