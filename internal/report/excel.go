// Package report renders booking exports as Excel workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/JayBeez180/booking-system/internal/models"
)

var bookingHeader = []string{
	"Reference", "Customer", "Email", "Phone", "Service",
	"Date", "Start", "End", "Duration (min)", "Status", "Notes",
}

// WriteBookings writes one "Bookings" sheet with a bold header row and one
// row per booking, in the order given.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Bookings"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range bookingHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}

	// Bold the header row.
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(bookingHeader), 1)
		_ = f.SetCellStyle(sheet, startCell, endCell, style)
	}

	for rowIdx, b := range bookings {
		row := []interface{}{
			b.Reference, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.ServiceName,
			b.Date, b.StartClock(), b.EndClock(), b.DurationMinutes(), b.Status, b.Notes,
		}
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return fmt.Errorf("write booking row %d: %w", rowIdx+1, err)
			}
		}
	}

	return f.Write(w)
}
