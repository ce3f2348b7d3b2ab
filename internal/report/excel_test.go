package report

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JayBeez180/booking-system/internal/models"
)

func TestWriteBookings(t *testing.T) {
	bookings := []models.Booking{
		{
			Reference:     "ref-1",
			CustomerName:  "John Smith",
			CustomerEmail: "john@example.com",
			ServiceName:   "Consultation",
			Date:          "2025-03-10",
			StartMinutes:  600,
			EndMinutes:    645,
			Status:        models.StatusConfirmed,
		},
		{
			Reference:    "ref-2",
			CustomerName: "Jane Doe",
			ServiceName:  "Follow-up",
			Date:         "2025-03-11",
			StartMinutes: 840,
			EndMinutes:   900,
			Status:       models.StatusCancelled,
		},
	}

	var buf bytes.Buffer
	if err := WriteBookings(&buf, bookings); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Reference" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "John Smith" || rows[1][6] != "10:00" || rows[1][7] != "10:45" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][9] != models.StatusCancelled {
		t.Errorf("second row status = %q", rows[2][9])
	}
}

func TestWriteBookingsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBookings(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("expected a workbook even with no bookings")
	}
}
