package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JayBeez180/booking-system/internal/models"
)

const serviceColumns = `id, name, duration_minutes, price, description,
	is_active, display_order, created_at`

// GetServiceByID loads a service by id.
func (s *Store) GetServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = ?`,
		id,
	)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("service %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query service %d: %w", id, err)
	}
	return svc, nil
}

// GetServiceByName loads an active service by exact name; import rows
// reference services this way.
func (s *Store) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE name = ? AND is_active = 1`,
		name,
	)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("service %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query service %q: %w", name, err)
	}
	return svc, nil
}

// ListServices returns the active services in display order.
func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE is_active = 1
		ORDER BY display_order, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var services []models.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, *svc)
	}
	return services, rows.Err()
}

// CreateService inserts a service and fills in its id.
func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO services (name, duration_minutes, price, description, is_active, display_order)
		VALUES (?, ?, ?, ?, ?, ?)`,
		svc.Name, svc.DurationMinutes, svc.Price, svc.Description, svc.IsActive, svc.DisplayOrder,
	)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	svc.ID, err = res.LastInsertId()
	return err
}

func scanService(row rowScanner) (*models.Service, error) {
	var svc models.Service
	if err := row.Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price,
		&svc.Description, &svc.IsActive, &svc.DisplayOrder, &svc.CreatedAt); err != nil {
		return nil, err
	}
	return &svc, nil
}
