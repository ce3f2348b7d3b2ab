package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JayBeez180/booking-system/internal/models"
)

// GetWindowsForWeekday returns the active windows for a weekday in storage
// order. Overlapping windows are returned as stored, unmerged.
func (s *Store) GetWindowsForWeekday(ctx context.Context, weekday int) ([]models.AvailabilityWindow, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, day_of_week, start_min, end_min, is_active, created_at, updated_at
		FROM availability_windows
		WHERE day_of_week = ? AND is_active = 1
		ORDER BY id`,
		weekday,
	)
	if err != nil {
		return nil, fmt.Errorf("query windows: %w", err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

// ListAvailabilityWindows returns every window, active or not.
func (s *Store) ListAvailabilityWindows(ctx context.Context) ([]models.AvailabilityWindow, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, day_of_week, start_min, end_min, is_active, created_at, updated_at
		FROM availability_windows
		ORDER BY day_of_week, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query windows: %w", err)
	}
	defer rows.Close()
	return scanWindows(rows)
}

// CreateAvailabilityWindow inserts a window and fills in its id.
func (s *Store) CreateAvailabilityWindow(ctx context.Context, w *models.AvailabilityWindow) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO availability_windows (day_of_week, start_min, end_min, is_active)
		VALUES (?, ?, ?, ?)`,
		w.DayOfWeek, w.StartMinutes, w.EndMinutes, w.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}
	w.ID, err = res.LastInsertId()
	return err
}

// DeactivateAvailabilityWindow soft-deactivates a window. Windows are never
// deleted while bookings may reference the historical schedule.
func (s *Store) DeactivateAvailabilityWindow(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE availability_windows
		SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deactivate window %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanWindows(rows *sql.Rows) ([]models.AvailabilityWindow, error) {
	var windows []models.AvailabilityWindow
	for rows.Next() {
		var w models.AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.DayOfWeek, &w.StartMinutes, &w.EndMinutes,
			&w.IsActive, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan window: %w", err)
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}
