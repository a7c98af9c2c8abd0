package fields

import (
	"fmt"
	"time"

	"github.com/rizkyyjun/sportmate/internal/config"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// BuildAvailability computes the bookable-slot calendar for a field:
// windowDays consecutive dates starting at today, each carrying the
// operating-hours template with slots marked booked when a pending or
// confirmed booking matches the slot's date and time range exactly.
//
// Pure function of its inputs; calling it twice with the same booking set
// yields identical output, so availability is recomputed on every read
// instead of cached.
func BuildAvailability(template []config.OperatingSlot, bookings []models.Booking, today time.Time, windowDays int) []models.DayAvailability {
	byDate := make(map[string][]models.Booking, len(bookings))
	for _, b := range bookings {
		if !b.Status.Active() {
			continue
		}
		byDate[b.Date] = append(byDate[b.Date], b)
	}

	availability := make([]models.DayAvailability, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		date := today.AddDate(0, 0, i).Format("2006-01-02")
		dayBookings := byDate[date]

		slots := make([]models.TimeSlot, len(template))
		for idx, tmpl := range template {
			booked := false
			for _, b := range dayBookings {
				if b.StartTime == tmpl.StartTime && b.EndTime == tmpl.EndTime {
					booked = true
					break
				}
			}
			slots[idx] = models.TimeSlot{
				ID:        fmt.Sprintf("%s-%d", date, idx),
				StartTime: tmpl.StartTime,
				EndTime:   tmpl.EndTime,
				IsBooked:  booked,
			}
		}

		availability = append(availability, models.DayAvailability{Date: date, Slots: slots})
	}
	return availability
}
