package bookings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rizkyyjun/sportmate/internal/models"
)

// ParseClock converts an HH:MM string to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching endpoints do not conflict.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && e1 > s2
}

// HasConflict reports whether the candidate interval collides with any
// pending or confirmed booking in existing. Intervals are compared in
// minutes since midnight; callers pass bookings already filtered to a
// single field and date.
func HasConflict(startMin, endMin int, existing []models.Booking) bool {
	for _, b := range existing {
		if !b.Status.Active() {
			continue
		}
		bs, err := ParseClock(b.StartTime)
		if err != nil {
			continue
		}
		be, err := ParseClock(b.EndTime)
		if err != nil {
			continue
		}
		if Overlaps(startMin, endMin, bs, be) {
			return true
		}
	}
	return false
}
