package trip

import (
	"fmt"
	"strings"

	"github.com/andariego/trip-reservation/internal/model"
)

// minutesPerDay is the length of one calendar day in the integer
// minutes-since-midnight arithmetic used throughout this package.
const minutesPerDay = 24 * 60

// clockMinutes converts a 12-hour wall-clock time to minutes since
// midnight. Meridiem boundaries are converted explicitly: 12 AM is
// hour 0 and 12 PM is hour 12.
func clockMinutes(t model.ClockTime) (int, error) {
	if t.Hour < 1 || t.Hour > 12 {
		return 0, &InputError{Reason: fmt.Sprintf("clock hour %d out of range 1..12", t.Hour)}
	}
	if t.Minute < 0 || t.Minute > 59 {
		return 0, &InputError{Reason: fmt.Sprintf("clock minute %d out of range 0..59", t.Minute)}
	}
	h := t.Hour % 12 // 12 AM -> 0, 12 PM -> 0 before the PM shift below
	switch strings.ToUpper(strings.TrimSpace(t.Meridiem)) {
	case "AM":
	case "PM":
		h += 12
	default:
		return 0, &InputError{Reason: "meridiem must be AM or PM"}
	}
	return h*60 + t.Minute, nil
}

// formatMinutes renders an absolute minute count as a 12-hour wall-clock
// string ("08:05 AM"). The day component is discarded; callers track it
// separately as a day offset. Display conversion floors to the minute.
func formatMinutes(minutes int) string {
	m := minutes % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	h24 := m / 60
	min := m % 60
	meridiem := "AM"
	h12 := h24
	if h24 >= 12 {
		meridiem = "PM"
		h12 = h24 - 12
	}
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h12, min, meridiem)
}

// dayOffsetOf returns how many whole days past the service date an
// absolute minute count falls.
func dayOffsetOf(minutes int) int {
	if minutes < 0 {
		return 0
	}
	return minutes / minutesPerDay
}
