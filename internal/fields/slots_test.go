package fields

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizkyyjun/sportmate/internal/config"
	"github.com/rizkyyjun/sportmate/internal/models"
)

func TestBuildAvailability_WindowAndTemplate(t *testing.T) {
	today := time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC)
	template := config.DefaultOperatingHours()

	days := BuildAvailability(template, nil, today, 30)

	require.Len(t, days, 30)
	assert.Equal(t, "2026-03-10", days[0].Date)
	assert.Equal(t, "2026-04-08", days[29].Date)

	for _, day := range days {
		require.Len(t, day.Slots, 13, "every day carries the full template")
		assert.Equal(t, "09:00", day.Slots[0].StartTime)
		assert.Equal(t, "22:00", day.Slots[12].EndTime)
		for _, slot := range day.Slots {
			assert.False(t, slot.IsBooked)
		}
	}
}

func TestBuildAvailability_SlotIDs(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	days := BuildAvailability(config.DefaultOperatingHours(), nil, today, 2)

	assert.Equal(t, "2026-03-10-0", days[0].Slots[0].ID)
	assert.Equal(t, "2026-03-10-12", days[0].Slots[12].ID)
	assert.Equal(t, "2026-03-11-0", days[1].Slots[0].ID)
}

func TestBuildAvailability_MarksExactMatches(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{Date: "2026-03-10", StartTime: "10:00", EndTime: "11:00", Status: models.BookingStatusConfirmed},
		{Date: "2026-03-11", StartTime: "15:00", EndTime: "16:00", Status: models.BookingStatusPending},
		// Inactive statuses release the slot.
		{Date: "2026-03-10", StartTime: "12:00", EndTime: "13:00", Status: models.BookingStatusCancelled},
		{Date: "2026-03-10", StartTime: "14:00", EndTime: "15:00", Status: models.BookingStatusRejected},
		// A two-hour booking does not match any single-hour slot exactly.
		{Date: "2026-03-10", StartTime: "18:00", EndTime: "20:00", Status: models.BookingStatusConfirmed},
	}

	days := BuildAvailability(config.DefaultOperatingHours(), bookings, today, 3)

	booked := map[string]bool{}
	for _, day := range days {
		for _, slot := range day.Slots {
			if slot.IsBooked {
				booked[day.Date+" "+slot.StartTime] = true
			}
		}
	}
	assert.Equal(t, map[string]bool{
		"2026-03-10 10:00": true,
		"2026-03-11 15:00": true,
	}, booked)
}

func TestBuildAvailability_Deterministic(t *testing.T) {
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		{Date: "2026-03-12", StartTime: "09:00", EndTime: "10:00", Status: models.BookingStatusPending},
	}

	first := BuildAvailability(config.DefaultOperatingHours(), bookings, today, 30)
	second := BuildAvailability(config.DefaultOperatingHours(), bookings, today, 30)
	assert.Equal(t, first, second)
}
