package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/JayBeez180/booking-system/internal/models"
)

const bookingColumns = `id, reference, service_id, service_name, customer_name,
	customer_email, customer_phone, date, start_min, end_min, status, notes,
	no_show_at, created_at, updated_at`

// GetBooking loads one booking by id.
func (s *Store) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE id = ?`,
		id,
	)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query booking %d: %w", id, err)
	}
	return b, nil
}

// GetActiveBookings returns the bookings that occupy the calendar for a date
// (confirmed and completed), ordered by start time.
func (s *Store) GetActiveBookings(ctx context.Context, date string) ([]models.Booking, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE date = ? AND status IN (?, ?)
		ORDER BY start_min`,
		date, models.StatusConfirmed, models.StatusCompleted,
	)
	if err != nil {
		return nil, fmt.Errorf("query active bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// ListBookingsForDate returns every booking for a date regardless of status.
func (s *Store) ListBookingsForDate(ctx context.Context, date string) ([]models.Booking, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE date = ?
		ORDER BY start_min`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// GetBookingsByDateRange returns bookings with from <= date <= to.
func (s *Store) GetBookingsByDateRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE date >= ? AND date <= ?
		ORDER BY date, start_min`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query bookings by range: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// CreateBooking inserts a booking and fills in id and timestamps.
func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	now := time.Now().UTC()
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO bookings (reference, service_id, service_name, customer_name,
			customer_email, customer_phone, date, start_min, end_min, status, notes,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Reference, b.ServiceID, b.ServiceName, b.CustomerName,
		b.CustomerEmail, b.CustomerPhone, b.Date, b.StartMinutes, b.EndMinutes,
		b.Status, b.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// UpdateBookingSchedule rewrites a booking's date and interval (move and
// extend paths).
func (s *Store) UpdateBookingSchedule(ctx context.Context, id int64, date string, startMin, endMin int) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE bookings
		SET date = ?, start_min = ?, end_min = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		date, startMin, endMin, id,
	)
	if err != nil {
		return fmt.Errorf("update booking %d schedule: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateBookingStatus rewrites a booking's status. noShowAt is set when
// entering no_show and cleared otherwise.
func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, status string, noShowAt *time.Time) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, no_show_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		status, noShowAt, id,
	)
	if err != nil {
		return fmt.Errorf("update booking %d status: %w", id, err)
	}
	return requireRow(res, id)
}

// CompleteDueBookings flips every confirmed booking whose end has passed to
// completed in one statement. Dates compare chronologically as strings; end
// times compare as integer minutes.
func (s *Store) CompleteDueBookings(ctx context.Context, today string, nowMinutes int) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE bookings
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND (date < ? OR (date = ? AND end_min <= ?))`,
		models.StatusCompleted, models.StatusConfirmed, today, today, nowMinutes,
	)
	if err != nil {
		return 0, fmt.Errorf("complete due bookings: %w", err)
	}
	return res.RowsAffected()
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("booking %d: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var noShowAt sql.NullTime
	if err := row.Scan(&b.ID, &b.Reference, &b.ServiceID, &b.ServiceName,
		&b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.Date,
		&b.StartMinutes, &b.EndMinutes, &b.Status, &b.Notes,
		&noShowAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if noShowAt.Valid {
		b.NoShowAt = &noShowAt.Time
	}
	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
