package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JayBeez180/booking-system/internal/models"
)

const blockColumns = `id, date, start_min, end_min, reason, all_day,
	recurring_weekly, recurring_day_of_week, created_at`

// GetBlocksForDate returns the non-recurring blocks for an exact date.
func (s *Store) GetBlocksForDate(ctx context.Context, date string) ([]models.BlockedTime, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM blocked_times
		WHERE recurring_weekly = 0 AND date = ?
		ORDER BY id`,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

// GetRecurringBlocksForWeekday returns the weekly blocks for a weekday.
func (s *Store) GetRecurringBlocksForWeekday(ctx context.Context, weekday int) ([]models.BlockedTime, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM blocked_times
		WHERE recurring_weekly = 1 AND recurring_day_of_week = ?
		ORDER BY id`,
		weekday,
	)
	if err != nil {
		return nil, fmt.Errorf("query recurring blocks: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

// ListBlockedTimes returns every block.
func (s *Store) ListBlockedTimes(ctx context.Context) ([]models.BlockedTime, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+blockColumns+`
		FROM blocked_times
		ORDER BY recurring_weekly, date, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query blocks: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

// GetBlockedTime loads one block by id.
func (s *Store) GetBlockedTime(ctx context.Context, id int64) (*models.BlockedTime, error) {
	var b models.BlockedTime
	err := s.q.QueryRowContext(ctx, `
		SELECT `+blockColumns+`
		FROM blocked_times
		WHERE id = ?`,
		id,
	).Scan(&b.ID, &b.Date, &b.StartMinutes, &b.EndMinutes, &b.Reason,
		&b.AllDay, &b.RecurringWeekly, &b.RecurringDayOfWeek, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("block %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query block %d: %w", id, err)
	}
	return &b, nil
}

// CreateBlockedTime inserts one block and fills in its id.
func (s *Store) CreateBlockedTime(ctx context.Context, b *models.BlockedTime) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO blocked_times (date, start_min, end_min, reason, all_day,
			recurring_weekly, recurring_day_of_week)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Date, b.StartMinutes, b.EndMinutes, b.Reason, b.AllDay,
		b.RecurringWeekly, b.RecurringDayOfWeek,
	)
	if err != nil {
		return fmt.Errorf("insert block: %w", err)
	}
	b.ID, err = res.LastInsertId()
	return err
}

// CreateBlockedTimes inserts a batch of blocks, filling in ids in place.
// Used by range materialization; the caller wraps it in a transaction.
func (s *Store) CreateBlockedTimes(ctx context.Context, rows []models.BlockedTime) error {
	for i := range rows {
		if err := s.CreateBlockedTime(ctx, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// DeleteBlockedTime removes a block. Blocks are the one calendar entity that
// is hard-deleted.
func (s *Store) DeleteBlockedTime(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM blocked_times WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete block %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("block %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanBlocks(rows *sql.Rows) ([]models.BlockedTime, error) {
	var blocks []models.BlockedTime
	for rows.Next() {
		var b models.BlockedTime
		if err := rows.Scan(&b.ID, &b.Date, &b.StartMinutes, &b.EndMinutes, &b.Reason,
			&b.AllDay, &b.RecurringWeekly, &b.RecurringDayOfWeek, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
