// Package timeslot holds the minute-of-day time representation and the
// single interval overlap rule used by every conflict check in the system.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatError reports a wall-clock string that could not be parsed.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid time format: %q", e.Input)
}

// ToMinutes converts a "HH:MM" wall-clock string to minutes from midnight.
// Only the shape is validated: values like "25:00" parse to 1500 without
// complaint, matching the historical behavior of the schedule data. Callers
// that need range checks do them against the configured windows instead.
func ToMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, &FormatError{Input: s}
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, &FormatError{Input: s}
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, &FormatError{Input: s}
	}

	return hour*60 + minute, nil
}

// FromMinutes converts minutes from midnight to a "HH:MM" string. Values of
// 1440 and above format as "24:00", "24:30" and so on rather than wrapping:
// appointments never cross midnight, so such values only appear as degenerate
// end-time arithmetic and must stay comparable downstream, not crash.
func FromMinutes(n int) string {
	return fmt.Sprintf("%02d:%02d", n/60, n%60)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. An appointment ending at 10:00 does not conflict
// with one starting at 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}
