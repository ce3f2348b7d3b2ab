package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/JayBeez180/booking-system/internal/blocks"
	"github.com/JayBeez180/booking-system/internal/metrics"
	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/slots"
	"github.com/JayBeez180/booking-system/internal/timeslot"
)

// SlotCache caches generated slot lists. Implementations may be arbitrarily
// stale; the validator re-checks at commit time, so a stale hit is harmless.
type SlotCache interface {
	Get(ctx context.Context, date string, duration int) ([]slots.Slot, bool)
	Set(ctx context.Context, date string, duration int, list []slots.Slot)
	// InvalidateDate drops cached slots for one date after a mutation there.
	InvalidateDate(ctx context.Context, date string)
	// Reset drops everything; used when windows or recurring blocks change.
	Reset(ctx context.Context)
}

// Service owns every calendar mutation. Mutations are serialized by a single
// lock and executed inside a store transaction, so two concurrent callers can
// never both validate against the same stale snapshot and both commit.
// Read paths (slot generation, listings) take no lock.
type Service struct {
	store  Store
	tx     TxRunner
	gen    *slots.Generator
	cache  SlotCache
	logger *zerolog.Logger

	// mu serializes mutations; one practitioner means one calendar, so a
	// global writer lock is sufficient.
	mu sync.Mutex

	now func() time.Time
}

// NewService wires the booking service. cache may be nil.
func NewService(store Store, tx TxRunner, gen *slots.Generator, cache SlotCache, logger *zerolog.Logger) *Service {
	return &Service{
		store:  store,
		tx:     tx,
		gen:    gen,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// GenerateSlots returns the bookable slots for a date and duration, serving
// from cache when possible. The result is advisory: booking a listed slot
// still goes through commit-time validation.
func (s *Service) GenerateSlots(ctx context.Context, date string, durationMinutes int) ([]slots.Slot, error) {
	if s.cache != nil {
		if list, hit := s.cache.Get(ctx, date, durationMinutes); hit {
			metrics.IncSlotRequest("hit")
			return list, nil
		}
	}

	list, err := s.gen.Generate(ctx, date, durationMinutes)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, date, durationMinutes, list)
		metrics.IncSlotRequest("miss")
	} else {
		metrics.IncSlotRequest("uncached")
	}
	return list, nil
}

// ValidateBooking runs the conflict validator against current state without
// writing anything. Flows that only preview use this; committing flows
// re-validate inside their transaction.
func (s *Service) ValidateBooking(ctx context.Context, date, start, end string, excludeID int64) (Result, error) {
	startMin, err := timeslot.ToMinutes(start)
	if err != nil {
		return Result{}, err
	}
	endMin, err := timeslot.ToMinutes(end)
	if err != nil {
		return Result{}, err
	}
	return NewValidator(s.store).Validate(ctx, date, startMin, endMin, excludeID)
}

// CreateRequest carries a new booking from the public flow or staff entry.
type CreateRequest struct {
	ServiceID     int64  `json:"service_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	Notes         string `json:"notes"`
}

// CreateBooking validates and commits a new booking atomically. The end time
// is the start plus the service's current duration, snapshotted into the row.
// A non-OK Result with a nil error is an ordinary rejection.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*models.Booking, Result, error) {
	startMin, err := timeslot.ToMinutes(req.Start)
	if err != nil {
		return nil, Result{}, err
	}
	if _, err := models.Weekday(req.Date); err != nil {
		return nil, Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var booking *models.Booking
	var res Result
	err = s.tx.InTx(ctx, func(st Store) error {
		svc, err := st.GetServiceByID(ctx, req.ServiceID)
		if err != nil {
			return fmt.Errorf("load service %d: %w", req.ServiceID, err)
		}
		endMin := startMin + svc.DurationMinutes

		res, err = NewValidator(st).Validate(ctx, req.Date, startMin, endMin, 0)
		if err != nil {
			return err
		}
		if !res.OK {
			return nil
		}

		b := &models.Booking{
			Reference:     uuid.NewString(),
			ServiceID:     svc.ID,
			ServiceName:   svc.Name,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Date:          req.Date,
			StartMinutes:  startMin,
			EndMinutes:    endMin,
			Status:        models.StatusConfirmed,
			Notes:         req.Notes,
		}
		if err := st.CreateBooking(ctx, b); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	if !res.OK {
		metrics.IncBookingConflict(string(res.Kind))
		return nil, res, nil
	}

	s.invalidate(ctx, req.Date)
	metrics.IncBookingCreated("direct")
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("date", booking.Date).
		Str("start", booking.StartClock()).
		Msg("booking created")
	return booking, res, nil
}

// MoveBooking reschedules a booking to a new date and start time, keeping
// its snapshotted duration. The booking itself is excluded from the overlap
// check so moving within its own old slot never self-conflicts.
func (s *Service) MoveBooking(ctx context.Context, id int64, newDate, newStart string) (*models.Booking, Result, error) {
	startMin, err := timeslot.ToMinutes(newStart)
	if err != nil {
		return nil, Result{}, err
	}
	if _, err := models.Weekday(newDate); err != nil {
		return nil, Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var booking *models.Booking
	var res Result
	var oldDate string
	err = s.tx.InTx(ctx, func(st Store) error {
		b, err := st.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		oldDate = b.Date
		endMin := startMin + b.DurationMinutes()

		res, err = NewValidator(st).Validate(ctx, newDate, startMin, endMin, b.ID)
		if err != nil {
			return err
		}
		if !res.OK {
			return nil
		}

		if err := st.UpdateBookingSchedule(ctx, b.ID, newDate, startMin, endMin); err != nil {
			return fmt.Errorf("update booking %d: %w", b.ID, err)
		}
		b.Date = newDate
		b.StartMinutes = startMin
		b.EndMinutes = endMin
		booking = b
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	if !res.OK {
		metrics.IncBookingConflict(string(res.Kind))
		return nil, res, nil
	}

	s.invalidate(ctx, oldDate)
	s.invalidate(ctx, newDate)
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("from", oldDate).
		Str("to", newDate).
		Str("start", booking.StartClock()).
		Msg("booking moved")
	return booking, res, nil
}

// ExtendBooking grows or shrinks a booking by deltaMinutes, keeping the
// start fixed. The new total duration must stay within
// [MinDurationMinutes, MaxDurationMinutes]. Only growth is re-validated, and
// only the added tail (old end to new end): shrinking frees time, which
// cannot create a conflict.
func (s *Service) ExtendBooking(ctx context.Context, id int64, deltaMinutes int) (*models.Booking, Result, error) {
	if deltaMinutes == 0 {
		return nil, Result{}, fmt.Errorf("zero extension")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var booking *models.Booking
	var res Result
	err := s.tx.InTx(ctx, func(st Store) error {
		b, err := st.GetBooking(ctx, id)
		if err != nil {
			return err
		}

		newDuration := b.DurationMinutes() + deltaMinutes
		if newDuration < MinDurationMinutes || newDuration > MaxDurationMinutes {
			return &DurationOutOfRangeError{Minutes: newDuration}
		}
		newEnd := b.StartMinutes + newDuration

		if deltaMinutes > 0 {
			res, err = NewValidator(st).Validate(ctx, b.Date, b.EndMinutes, newEnd, b.ID)
			if err != nil {
				return err
			}
			if !res.OK {
				return nil
			}
		} else {
			res = ok()
		}

		if err := st.UpdateBookingSchedule(ctx, b.ID, b.Date, b.StartMinutes, newEnd); err != nil {
			return fmt.Errorf("update booking %d: %w", b.ID, err)
		}
		b.EndMinutes = newEnd
		booking = b
		return nil
	})
	if err != nil {
		return nil, Result{}, err
	}
	if !res.OK {
		metrics.IncBookingConflict(string(res.Kind))
		return nil, res, nil
	}

	s.invalidate(ctx, booking.Date)
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int("delta_minutes", deltaMinutes).
		Str("new_end", booking.EndClock()).
		Msg("booking duration changed")
	return booking, res, nil
}

// CancelBooking, MarkNoShow, UndoNoShow and MarkCompleted are the manual
// lifecycle transitions; each checks the transition table before writing.

func (s *Service) CancelBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusCancelled)
}

func (s *Service) MarkNoShow(ctx context.Context, id int64) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusNoShow)
}

func (s *Service) UndoNoShow(ctx context.Context, id int64) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusConfirmed)
}

func (s *Service) MarkCompleted(ctx context.Context, id int64) (*models.Booking, error) {
	return s.transition(ctx, id, models.StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id int64, to string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var booking *models.Booking
	err := s.tx.InTx(ctx, func(st Store) error {
		b, err := st.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if !CanTransition(b.Status, to) {
			return &TransitionError{BookingID: id, From: b.Status, To: to}
		}

		var noShowAt *time.Time
		if to == models.StatusNoShow {
			t := s.now()
			noShowAt = &t
		}
		if err := st.UpdateBookingStatus(ctx, b.ID, to, noShowAt); err != nil {
			return fmt.Errorf("update status of booking %d: %w", b.ID, err)
		}
		b.Status = to
		b.NoShowAt = noShowAt
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, booking.Date)
	metrics.IncStatusChanged(to)
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("status", to).
		Msg("booking status changed")
	return booking, nil
}

// RunAutoCompletionSweep marks every confirmed booking whose end has passed
// as completed and returns how many rows changed. It is idempotent and cheap
// enough that every read path calls it defensively.
func (s *Service) RunAutoCompletionSweep(ctx context.Context, now time.Time) (int64, error) {
	today := now.Format(models.DateLayout)
	nowMinutes := now.Hour()*60 + now.Minute()

	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	err := s.tx.InTx(ctx, func(st Store) error {
		var err error
		count, err = st.CompleteDueBookings(ctx, today, nowMinutes)
		return err
	})
	if err != nil {
		return 0, err
	}

	metrics.ObserveSweep(count)
	if count > 0 {
		s.logger.Info().Int64("completed", count).Msg("auto-completion sweep")
	}
	return count, nil
}

// ListBookings returns every booking for a date regardless of status,
// sweeping first so read paths never show a stale confirmed status.
func (s *Service) ListBookings(ctx context.Context, date string) ([]models.Booking, error) {
	if _, err := s.RunAutoCompletionSweep(ctx, s.now()); err != nil {
		return nil, err
	}
	return s.store.ListBookingsForDate(ctx, date)
}

// BookingsInRange returns bookings between two dates inclusive, swept.
func (s *Service) BookingsInRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	if _, err := s.RunAutoCompletionSweep(ctx, s.now()); err != nil {
		return nil, err
	}
	return s.store.GetBookingsByDateRange(ctx, from, to)
}

// GetBooking loads one booking by id.
func (s *Service) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListServices returns the bookable service catalog.
func (s *Service) ListServices(ctx context.Context) ([]models.Service, error) {
	return s.store.ListServices(ctx)
}

// GetService loads one service by id.
func (s *Service) GetService(ctx context.Context, id int64) (*models.Service, error) {
	return s.store.GetServiceByID(ctx, id)
}

// ListAvailabilityWindows returns every window, active or not.
func (s *Service) ListAvailabilityWindows(ctx context.Context) ([]models.AvailabilityWindow, error) {
	return s.store.ListAvailabilityWindows(ctx)
}

// ListBlocks returns every stored block.
func (s *Service) ListBlocks(ctx context.Context) ([]models.BlockedTime, error) {
	return s.store.ListBlockedTimes(ctx)
}

// AddBlock stores a single block (timed or all-day, recurring or not).
func (s *Service) AddBlock(ctx context.Context, block models.BlockedTime) (*models.BlockedTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tx.InTx(ctx, func(st Store) error {
		return st.CreateBlockedTime(ctx, &block)
	})
	if err != nil {
		return nil, err
	}

	if block.RecurringWeekly {
		s.reset(ctx)
	} else {
		s.invalidate(ctx, block.Date)
	}
	return &block, nil
}

// AddBlockRange materializes a date range into daily all-day blocks and
// stores them in one transaction.
func (s *Service) AddBlockRange(ctx context.Context, startDate, endDate, reason string) ([]models.BlockedTime, error) {
	rows, err := blocks.MaterializeRange(startDate, endDate, reason)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.tx.InTx(ctx, func(st Store) error {
		return st.CreateBlockedTimes(ctx, rows)
	})
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		s.invalidate(ctx, r.Date)
	}
	return rows, nil
}

// QuickAddBlock serves the calendar quick-add: a timed block from the start
// time for the given duration, or until 23:59 for "all_day".
func (s *Service) QuickAddBlock(ctx context.Context, date, startTime, duration, reason string) (*models.BlockedTime, error) {
	block, err := blocks.QuickAdd(date, startTime, duration, reason)
	if err != nil {
		return nil, err
	}
	return s.AddBlock(ctx, block)
}

// DeleteBlock removes a block by id.
func (s *Service) DeleteBlock(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var block *models.BlockedTime
	err := s.tx.InTx(ctx, func(st Store) error {
		var err error
		block, err = st.GetBlockedTime(ctx, id)
		if err != nil {
			return err
		}
		return st.DeleteBlockedTime(ctx, id)
	})
	if err != nil {
		return err
	}

	if block.RecurringWeekly {
		s.reset(ctx)
	} else {
		s.invalidate(ctx, block.Date)
	}
	return nil
}

// AddAvailabilityWindow stores a new open-hours window. start must precede
// end; overlapping windows for the same weekday are allowed and not merged.
func (s *Service) AddAvailabilityWindow(ctx context.Context, w models.AvailabilityWindow) (*models.AvailabilityWindow, error) {
	if w.StartMinutes >= w.EndMinutes {
		return nil, fmt.Errorf("window start %s must precede end %s",
			timeslot.FromMinutes(w.StartMinutes), timeslot.FromMinutes(w.EndMinutes))
	}
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return nil, fmt.Errorf("day of week %d out of range", w.DayOfWeek)
	}
	w.IsActive = true

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tx.InTx(ctx, func(st Store) error {
		return st.CreateAvailabilityWindow(ctx, &w)
	})
	if err != nil {
		return nil, err
	}

	s.reset(ctx)
	return &w, nil
}

// DeactivateAvailabilityWindow soft-deactivates a window; historical
// bookings keep referencing the schedule that admitted them.
func (s *Service) DeactivateAvailabilityWindow(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.tx.InTx(ctx, func(st Store) error {
		return st.DeactivateAvailabilityWindow(ctx, id)
	})
	if err != nil {
		return err
	}

	s.reset(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context, date string) {
	if s.cache != nil {
		s.cache.InvalidateDate(ctx, date)
	}
}

func (s *Service) reset(ctx context.Context) {
	if s.cache != nil {
		s.cache.Reset(ctx)
	}
}
