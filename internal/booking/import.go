package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JayBeez180/booking-system/internal/metrics"
	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/timeslot"
)

// ImportRow is one already-parsed row of a bulk booking upload. File parsing
// lives with the caller; the core only sees fields.
type ImportRow struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	ServiceName   string `json:"service_name"`
	Date          string `json:"date"`
	Start         string `json:"start"`
}

// RowError ties a rejection to its row number (1-based over the submitted
// batch).
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult reports what a batch import did.
type ImportResult struct {
	Imported int        `json:"imported"`
	Errors   []RowError `json:"errors,omitempty"`
	Bookings []models.Booking `json:"bookings,omitempty"`
}

// ImportBookings validates and inserts a batch in one transaction. Each row
// is checked against stored bookings plus the rows already accepted from the
// same batch, so two identical rows in one file reject the second. Rejected
// rows do not abort the batch; they are reported and skipped.
func (s *Service) ImportBookings(ctx context.Context, rows []ImportRow) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result ImportResult
	err := s.tx.InTx(ctx, func(st Store) error {
		validator := NewValidator(st)
		var accepted []models.Booking

		for i, row := range rows {
			rowNum := i + 1

			if row.CustomerName == "" || row.CustomerEmail == "" {
				result.Errors = append(result.Errors, RowError{rowNum, "missing customer name or email"})
				continue
			}

			svc, err := st.GetServiceByName(ctx, row.ServiceName)
			if err != nil {
				result.Errors = append(result.Errors, RowError{rowNum, fmt.Sprintf("service %q not found", row.ServiceName)})
				continue
			}

			if _, err := time.Parse(models.DateLayout, row.Date); err != nil {
				result.Errors = append(result.Errors, RowError{rowNum, fmt.Sprintf("invalid date %q, use YYYY-MM-DD", row.Date)})
				continue
			}

			startMin, err := timeslot.ToMinutes(row.Start)
			if err != nil {
				result.Errors = append(result.Errors, RowError{rowNum, fmt.Sprintf("invalid time %q, use HH:MM", row.Start)})
				continue
			}
			endMin := startMin + svc.DurationMinutes

			res, err := validator.ValidateWith(ctx, row.Date, startMin, endMin, 0, accepted)
			if err != nil {
				return err
			}
			if !res.OK {
				metrics.IncBookingConflict(string(res.Kind))
				result.Errors = append(result.Errors, RowError{rowNum,
					fmt.Sprintf("%s %s on %s: %s", row.Start, timeslot.FromMinutes(endMin), row.Date, res.Message())})
				continue
			}

			b := models.Booking{
				Reference:     uuid.NewString(),
				ServiceID:     svc.ID,
				ServiceName:   svc.Name,
				CustomerName:  row.CustomerName,
				CustomerEmail: row.CustomerEmail,
				CustomerPhone: row.CustomerPhone,
				Date:          row.Date,
				StartMinutes:  startMin,
				EndMinutes:    endMin,
				Status:        models.StatusConfirmed,
			}
			if err := st.CreateBooking(ctx, &b); err != nil {
				return fmt.Errorf("insert imported booking (row %d): %w", rowNum, err)
			}
			accepted = append(accepted, b)
		}

		result.Bookings = accepted
		result.Imported = len(accepted)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	seen := make(map[string]struct{})
	for _, b := range result.Bookings {
		if _, dup := seen[b.Date]; !dup {
			seen[b.Date] = struct{}{}
			s.invalidate(ctx, b.Date)
		}
	}

	for range result.Bookings {
		metrics.IncBookingCreated("import")
	}
	s.logger.Info().
		Int("imported", result.Imported).
		Int("rejected", len(result.Errors)).
		Msg("bulk import finished")
	return result, nil
}
