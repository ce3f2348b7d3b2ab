package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JayBeez180/booking-system/internal/models"
	"github.com/JayBeez180/booking-system/internal/slots"
)

var errNotFound = errors.New("not found")

// memStore is an in-memory booking.Store. A memTx hands it out as the
// transactional view, which is enough for single-goroutine tests.
type memStore struct {
	windows  []models.AvailabilityWindow
	blocks   []models.BlockedTime
	services []models.Service
	bookings []*models.Booking
	nextID   int64
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) GetWindowsForWeekday(ctx context.Context, weekday int) ([]models.AvailabilityWindow, error) {
	var out []models.AvailabilityWindow
	for _, w := range m.windows {
		if w.DayOfWeek == weekday && w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memStore) CreateAvailabilityWindow(ctx context.Context, w *models.AvailabilityWindow) error {
	w.ID = m.id()
	m.windows = append(m.windows, *w)
	return nil
}

func (m *memStore) DeactivateAvailabilityWindow(ctx context.Context, id int64) error {
	for i := range m.windows {
		if m.windows[i].ID == id {
			m.windows[i].IsActive = false
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) ListAvailabilityWindows(ctx context.Context) ([]models.AvailabilityWindow, error) {
	return m.windows, nil
}

func (m *memStore) GetBlocksForDate(ctx context.Context, date string) ([]models.BlockedTime, error) {
	var out []models.BlockedTime
	for _, b := range m.blocks {
		if !b.RecurringWeekly && b.Date == date {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) GetRecurringBlocksForWeekday(ctx context.Context, weekday int) ([]models.BlockedTime, error) {
	var out []models.BlockedTime
	for _, b := range m.blocks {
		if b.RecurringWeekly && b.RecurringDayOfWeek == weekday {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) CreateBlockedTime(ctx context.Context, b *models.BlockedTime) error {
	b.ID = m.id()
	m.blocks = append(m.blocks, *b)
	return nil
}

func (m *memStore) CreateBlockedTimes(ctx context.Context, rows []models.BlockedTime) error {
	for i := range rows {
		if err := m.CreateBlockedTime(ctx, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) GetBlockedTime(ctx context.Context, id int64) (*models.BlockedTime, error) {
	for _, b := range m.blocks {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, errNotFound
}

func (m *memStore) DeleteBlockedTime(ctx context.Context, id int64) error {
	for i, b := range m.blocks {
		if b.ID == id {
			m.blocks = append(m.blocks[:i], m.blocks[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) ListBlockedTimes(ctx context.Context) ([]models.BlockedTime, error) {
	return m.blocks, nil
}

func (m *memStore) GetServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	for _, s := range m.services {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, errNotFound
}

func (m *memStore) GetServiceByName(ctx context.Context, name string) (*models.Service, error) {
	for _, s := range m.services {
		if s.Name == name && s.IsActive {
			return &s, nil
		}
	}
	return nil, errNotFound
}

func (m *memStore) ListServices(ctx context.Context) ([]models.Service, error) {
	return m.services, nil
}

func (m *memStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id {
			c := *b
			return &c, nil
		}
	}
	return nil, errNotFound
}

func (m *memStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	b.ID = m.id()
	c := *b
	m.bookings = append(m.bookings, &c)
	return nil
}

func (m *memStore) UpdateBookingSchedule(ctx context.Context, id int64, date string, startMin, endMin int) error {
	for _, b := range m.bookings {
		if b.ID == id {
			b.Date = date
			b.StartMinutes = startMin
			b.EndMinutes = endMin
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) UpdateBookingStatus(ctx context.Context, id int64, status string, noShowAt *time.Time) error {
	for _, b := range m.bookings {
		if b.ID == id {
			b.Status = status
			b.NoShowAt = noShowAt
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) GetActiveBookings(ctx context.Context, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Date == date && models.OccupiesCalendar(b.Status) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMinutes < out[j].StartMinutes })
	return out, nil
}

func (m *memStore) ListBookingsForDate(ctx context.Context, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Date == date {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) GetBookingsByDateRange(ctx context.Context, from, to string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range m.bookings {
		if b.Date >= from && b.Date <= to {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) CompleteDueBookings(ctx context.Context, today string, nowMinutes int) (int64, error) {
	var n int64
	for _, b := range m.bookings {
		if DueForCompletion(*b, today, nowMinutes) {
			b.Status = models.StatusCompleted
			n++
		}
	}
	return n, nil
}

type memTx struct {
	store *memStore
}

func (t memTx) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(t.store)
}

func newTestService(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := &memStore{
		services: []models.Service{
			{ID: 1, Name: "Consultation", DurationMinutes: 30, IsActive: true},
			{ID: 2, Name: "Full Session", DurationMinutes: 90, IsActive: true},
		},
		windows: []models.AvailabilityWindow{
			{ID: 100, DayOfWeek: 0, StartMinutes: 540, EndMinutes: 1020, IsActive: true},
		},
		nextID: 1000,
	}
	logger := zerolog.New(io.Discard)
	gen := slots.NewGenerator(store, 30)
	return NewService(store, memTx{store}, gen, nil, &logger), store
}

func mustCreate(t *testing.T, svc *Service, serviceID int64, date, start string) *models.Booking {
	t.Helper()
	b, res, err := svc.CreateBooking(context.Background(), CreateRequest{
		ServiceID:     serviceID,
		CustomerName:  "Test Customer",
		CustomerEmail: "test@example.com",
		Date:          date,
		Start:         start,
	})
	require.NoError(t, err)
	require.True(t, res.OK, "expected booking to be accepted: %s", res.Message())
	return b
}

func TestCreateBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 1, testDate, "10:00")
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, 600, b.StartMinutes)
	assert.Equal(t, 630, b.EndMinutes, "end is start plus the snapshotted service duration")
	assert.NotEmpty(t, b.Reference)
	assert.Equal(t, "Consultation", b.ServiceName)

	// The exact duplicate is an ordinary rejection, not an error.
	_, res, err := svc.CreateBooking(ctx, CreateRequest{
		ServiceID: 1, CustomerName: "Other", CustomerEmail: "o@example.com",
		Date: testDate, Start: "10:00",
	})
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, ConflictBookingOverlap, res.Kind)
	require.NotNil(t, res.Booking)
	assert.Equal(t, b.ID, res.Booking.ID)

	// Back to back is fine.
	mustCreate(t, svc, 1, testDate, "10:30")
}

func TestCreateBookingInvalidInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.CreateBooking(ctx, CreateRequest{ServiceID: 1, Date: testDate, Start: "ten"})
	assert.Error(t, err)

	_, _, err = svc.CreateBooking(ctx, CreateRequest{ServiceID: 1, Date: "garbage", Start: "10:00"})
	assert.Error(t, err)

	_, _, err = svc.CreateBooking(ctx, CreateRequest{ServiceID: 99, Date: testDate, Start: "10:00"})
	assert.Error(t, err, "unknown service is an error, not a conflict")
}

func TestCreateBookingOnBlockedDay(t *testing.T) {
	svc, store := newTestService(t)
	store.blocks = []models.BlockedTime{{ID: 1, Date: testDate, AllDay: true}}

	_, res, err := svc.CreateBooking(context.Background(), CreateRequest{
		ServiceID: 1, CustomerName: "X", CustomerEmail: "x@example.com",
		Date: testDate, Start: "10:00",
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictDayBlocked, res.Kind)
}

func TestMoveBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 2, testDate, "10:00") // 10:00-11:30

	// Overlapping its own old slot is allowed: the booking excludes itself.
	moved, res, err := svc.MoveBooking(ctx, b.ID, testDate, "10:30")
	require.NoError(t, err)
	require.True(t, res.OK, res.Message())
	assert.Equal(t, 630, moved.StartMinutes)
	assert.Equal(t, 720, moved.EndMinutes, "duration survives the move")

	// Moving onto another booking is rejected.
	other := mustCreate(t, svc, 1, "2025-01-07", "09:00")
	_, res, err = svc.MoveBooking(ctx, b.ID, "2025-01-07", "09:00")
	require.NoError(t, err)
	assert.Equal(t, ConflictBookingOverlap, res.Kind)
	require.NotNil(t, res.Booking)
	assert.Equal(t, other.ID, res.Booking.ID)
}

func TestExtendBooking(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 1, testDate, "10:00") // 10:00-10:30

	// Grow by 30: validates only the new tail 10:30-11:00.
	grown, res, err := svc.ExtendBooking(ctx, b.ID, 30)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message())
	assert.Equal(t, 660, grown.EndMinutes)

	// A block covering the booking's existing interval does not stop a grow:
	// only the added tail is checked.
	store.blocks = append(store.blocks, models.BlockedTime{
		ID: 900, Date: testDate, StartMinutes: 600, EndMinutes: 650,
	})
	grown, res, err = svc.ExtendBooking(ctx, b.ID, 30)
	require.NoError(t, err)
	require.True(t, res.OK, res.Message())
	assert.Equal(t, 690, grown.EndMinutes)

	// Growing into a neighbor is rejected.
	mustCreate(t, svc, 1, testDate, "11:30")
	_, res, err = svc.ExtendBooking(ctx, b.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, ConflictBookingOverlap, res.Kind)
}

func TestExtendBookingDurationBounds(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 1, testDate, "10:00") // 30 minutes

	var durErr *DurationOutOfRangeError
	_, _, err := svc.ExtendBooking(ctx, b.ID, -20)
	require.Error(t, err)
	assert.True(t, errors.As(err, &durErr), "below 15 minutes: %v", err)

	_, _, err = svc.ExtendBooking(ctx, b.ID, 211)
	require.Error(t, err)
	assert.True(t, errors.As(err, &durErr), "above 240 minutes: %v", err)

	_, _, err = svc.ExtendBooking(ctx, b.ID, 0)
	assert.Error(t, err)
}

func TestReduceNeverValidates(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 2, testDate, "10:00") // 10:00-11:30

	// A block over the region being freed is irrelevant when shrinking.
	store.blocks = append(store.blocks, models.BlockedTime{
		ID: 901, Date: testDate, StartMinutes: 660, EndMinutes: 690,
	})
	shrunk, res, err := svc.ExtendBooking(ctx, b.ID, -60)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 630, shrunk.EndMinutes)
}

func TestLifecycleTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 1, testDate, "10:00")

	ns, err := svc.MarkNoShow(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, ns.Status)
	assert.NotNil(t, ns.NoShowAt)

	// The no-show slot is free for a replacement customer.
	mustCreate(t, svc, 1, testDate, "10:00")

	back, err := svc.UndoNoShow(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, back.Status)
	assert.Nil(t, back.NoShowAt)

	done, err := svc.MarkCompleted(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	// Completing again is an idempotent no-op.
	_, err = svc.MarkCompleted(ctx, b.ID)
	assert.NoError(t, err)

	// Completed bookings cannot be cancelled.
	_, err = svc.CancelBooking(ctx, b.ID)
	assert.Error(t, err)
}

func TestCancelFreesSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 1, testDate, "10:00")
	cancelled, err := svc.CancelBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	mustCreate(t, svc, 1, testDate, "10:00")

	// Cancellation is final.
	_, err = svc.UndoNoShow(ctx, b.ID)
	assert.Error(t, err)
}

func TestAutoCompletionSweep(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

	yesterday := mustCreate(t, svc, 1, "2025-01-03", "10:00") // a past Friday
	ended := mustCreate(t, svc, 1, testDate, "09:00")         // ended 09:30
	tonight := mustCreate(t, svc, 1, testDate, "16:30")       // ends 17:00

	count, err := svc.RunAutoCompletionSweep(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	for _, tc := range []struct {
		id   int64
		want string
	}{
		{yesterday.ID, models.StatusCompleted},
		{ended.ID, models.StatusCompleted},
		{tonight.ID, models.StatusConfirmed},
	} {
		got, err := store.GetBooking(ctx, tc.id)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.Status, "booking %d", tc.id)
	}

	// Idempotent: a second sweep finds nothing.
	count, err = svc.RunAutoCompletionSweep(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestImportBookings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// An existing booking the second row will collide with.
	mustCreate(t, svc, 1, testDate, "14:00")

	rows := []ImportRow{
		{CustomerName: "A", CustomerEmail: "a@example.com", ServiceName: "Consultation", Date: testDate, Start: "09:00"},
		{CustomerName: "B", CustomerEmail: "b@example.com", ServiceName: "Consultation", Date: testDate, Start: "14:00"},
		{CustomerName: "C", CustomerEmail: "c@example.com", ServiceName: "Consultation", Date: testDate, Start: "09:00"},
		{CustomerName: "D", CustomerEmail: "d@example.com", ServiceName: "Nope", Date: testDate, Start: "10:00"},
		{CustomerName: "E", CustomerEmail: "e@example.com", ServiceName: "Consultation", Date: testDate, Start: "10am"},
		{CustomerName: "", CustomerEmail: "", ServiceName: "Consultation", Date: testDate, Start: "11:00"},
		{CustomerName: "F", CustomerEmail: "f@example.com", ServiceName: "Consultation", Date: "bad", Start: "11:00"},
	}

	result, err := svc.ImportBookings(ctx, rows)
	require.NoError(t, err)

	// Row 1 imports; row 2 hits the stored booking; row 3 hits row 1 even
	// though neither existed before the import began.
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 6)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 3, result.Errors[1].Row)
	assert.Contains(t, result.Errors[1].Message, "conflicts", "row 3 must conflict with row 1")
}

func TestImportAccumulationAcrossCleanStore(t *testing.T) {
	svc, _ := newTestService(t)

	rows := []ImportRow{
		{CustomerName: "A", CustomerEmail: "a@example.com", ServiceName: "Consultation", Date: testDate, Start: "10:00"},
		{CustomerName: "B", CustomerEmail: "b@example.com", ServiceName: "Consultation", Date: testDate, Start: "10:00"},
	}
	result, err := svc.ImportBookings(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
}

func TestBlocksManagement(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rows, err := svc.AddBlockRange(ctx, "2025-02-10", "2025-02-12", "Holiday")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Len(t, store.blocks, 3)

	quick, err := svc.QuickAddBlock(ctx, testDate, "12:00", "60", "Lunch")
	require.NoError(t, err)
	assert.Equal(t, 720, quick.StartMinutes)
	assert.Equal(t, 780, quick.EndMinutes)

	_, res, err := svc.CreateBooking(ctx, CreateRequest{
		ServiceID: 1, CustomerName: "X", CustomerEmail: "x@example.com",
		Date: testDate, Start: "12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, ConflictTimeBlocked, res.Kind)

	require.NoError(t, svc.DeleteBlock(ctx, quick.ID))
	mustCreate(t, svc, 1, testDate, "12:00")
}

func TestAvailabilityWindowManagement(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	w, err := svc.AddAvailabilityWindow(ctx, models.AvailabilityWindow{
		DayOfWeek: 1, StartMinutes: 540, EndMinutes: 720,
	})
	require.NoError(t, err)
	assert.True(t, w.IsActive)

	_, err = svc.AddAvailabilityWindow(ctx, models.AvailabilityWindow{
		DayOfWeek: 1, StartMinutes: 720, EndMinutes: 720,
	})
	assert.Error(t, err, "start must precede end")

	_, err = svc.AddAvailabilityWindow(ctx, models.AvailabilityWindow{
		DayOfWeek: 7, StartMinutes: 540, EndMinutes: 720,
	})
	assert.Error(t, err, "weekday out of range")

	require.NoError(t, svc.DeactivateAvailabilityWindow(ctx, w.ID))
	for _, stored := range store.windows {
		if stored.ID == w.ID {
			assert.False(t, stored.IsActive)
		}
	}
}

func TestGenerateSlotsThroughService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, 1, testDate, "09:00")

	list, err := svc.GenerateSlots(ctx, testDate, 30)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, "09:30", list[0].Start, "the 09:00 slot is taken")

	for _, s := range list {
		assert.NotEqual(t, "09:00", s.Start)
	}
}

func TestListBookingsSweepsFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, 1, "2025-01-03", "10:00")
	svc.now = func() time.Time { return time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC) }

	list, err := svc.ListBookings(ctx, "2025-01-03")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.StatusCompleted, list[0].Status, "read path must sweep before listing")
	assert.Equal(t, b.ID, list[0].ID)
}

func TestConflictMessage(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{Result{OK: true}, "slot is available"},
		{Result{Kind: ConflictDayBlocked}, "the entire day is blocked"},
		{
			Result{Kind: ConflictTimeBlocked, Block: &models.BlockedTime{StartMinutes: 720, EndMinutes: 780}},
			"the time 12:00-13:00 is blocked",
		},
		{
			Result{Kind: ConflictBookingOverlap, Booking: &models.Booking{StartMinutes: 600}},
			"conflicts with the booking at 10:00",
		},
		{Result{Kind: ConflictBookingOverlap}, "slot is not available"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.res.Message(), fmt.Sprintf("%+v", tt.res))
	}
}
