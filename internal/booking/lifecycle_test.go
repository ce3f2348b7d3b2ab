package booking

import (
	"testing"

	"github.com/JayBeez180/booking-system/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"confirm to complete", models.StatusConfirmed, models.StatusCompleted, true},
		{"confirm to cancel", models.StatusConfirmed, models.StatusCancelled, true},
		{"confirm to no-show", models.StatusConfirmed, models.StatusNoShow, true},
		{"undo no-show", models.StatusNoShow, models.StatusConfirmed, true},
		{"complete again is idempotent", models.StatusCompleted, models.StatusCompleted, true},
		{"cancel is final", models.StatusCancelled, models.StatusConfirmed, false},
		{"complete cannot cancel", models.StatusCompleted, models.StatusCancelled, false},
		{"no-show cannot complete", models.StatusNoShow, models.StatusCompleted, false},
		{"unknown status", "pending", models.StatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDueForCompletion(t *testing.T) {
	const today = "2025-01-06"
	const noon = 720

	tests := []struct {
		name    string
		booking models.Booking
		want    bool
	}{
		{
			"yesterday confirmed",
			models.Booking{Date: "2025-01-05", EndMinutes: 1430, Status: models.StatusConfirmed},
			true,
		},
		{
			"today ended",
			models.Booking{Date: today, EndMinutes: 700, Status: models.StatusConfirmed},
			true,
		},
		{
			"today ending exactly now",
			models.Booking{Date: today, EndMinutes: noon, Status: models.StatusConfirmed},
			true,
		},
		{
			"today ends tonight",
			models.Booking{Date: today, EndMinutes: 1439, Status: models.StatusConfirmed},
			false,
		},
		{
			"tomorrow",
			models.Booking{Date: "2025-01-07", EndMinutes: 600, Status: models.StatusConfirmed},
			false,
		},
		{
			"yesterday but cancelled",
			models.Booking{Date: "2025-01-05", EndMinutes: 600, Status: models.StatusCancelled},
			false,
		},
		{
			"yesterday but already completed",
			models.Booking{Date: "2025-01-05", EndMinutes: 600, Status: models.StatusCompleted},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DueForCompletion(tt.booking, today, noon); got != tt.want {
				t.Errorf("DueForCompletion = %v, want %v", got, tt.want)
			}
		})
	}
}
