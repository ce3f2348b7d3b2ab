package booking

import (
	"context"
	"time"

	"github.com/JayBeez180/booking-system/internal/models"
)

// ReadStore is the slice of the store the conflict validator needs.
// GetActiveBookings returns only bookings that occupy the calendar
// (confirmed and completed).
type ReadStore interface {
	GetBlocksForDate(ctx context.Context, date string) ([]models.BlockedTime, error)
	GetRecurringBlocksForWeekday(ctx context.Context, weekday int) ([]models.BlockedTime, error)
	GetActiveBookings(ctx context.Context, date string) ([]models.Booking, error)
}

// Store is the full calendar store surface the booking service drives.
// Inside InTx all reads and writes see one consistent snapshot.
type Store interface {
	ReadStore

	GetWindowsForWeekday(ctx context.Context, weekday int) ([]models.AvailabilityWindow, error)
	CreateAvailabilityWindow(ctx context.Context, w *models.AvailabilityWindow) error
	DeactivateAvailabilityWindow(ctx context.Context, id int64) error
	ListAvailabilityWindows(ctx context.Context) ([]models.AvailabilityWindow, error)

	CreateBlockedTime(ctx context.Context, b *models.BlockedTime) error
	CreateBlockedTimes(ctx context.Context, rows []models.BlockedTime) error
	GetBlockedTime(ctx context.Context, id int64) (*models.BlockedTime, error)
	DeleteBlockedTime(ctx context.Context, id int64) error
	ListBlockedTimes(ctx context.Context) ([]models.BlockedTime, error)

	GetServiceByID(ctx context.Context, id int64) (*models.Service, error)
	GetServiceByName(ctx context.Context, name string) (*models.Service, error)
	ListServices(ctx context.Context) ([]models.Service, error)

	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBookingSchedule(ctx context.Context, id int64, date string, startMin, endMin int) error
	UpdateBookingStatus(ctx context.Context, id int64, status string, noShowAt *time.Time) error
	ListBookingsForDate(ctx context.Context, date string) ([]models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, from, to string) ([]models.Booking, error)
	CompleteDueBookings(ctx context.Context, today string, nowMinutes int) (int64, error)
}

// TxRunner executes fn against a transactional store view. The write made by
// fn commits only if fn returns nil, so validate-then-write happens as one
// atomic step with respect to every other calendar mutation.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Store) error) error
}
