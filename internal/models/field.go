package models

import (
	"time"

	"github.com/google/uuid"
)

// Field represents a bookable sports field.
type Field struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Location     string    `json:"location"`
	Sport        string    `json:"sport"`
	Price        float64   `json:"price"` // hourly rate
	Description  string    `json:"description"`
	Images       []string  `json:"images"`
	ContactPhone string    `json:"contact_phone"`
	ContactEmail string    `json:"contact_email"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TimeSlot is a derived hourly slot in a field's availability calendar.
// Slots are never persisted; they are recomputed from bookings on every read.
type TimeSlot struct {
	ID        string `json:"id"` // "<date>-<index>"
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsBooked  bool   `json:"is_booked"`
}

// DayAvailability groups the slots of a single calendar date.
type DayAvailability struct {
	Date  string     `json:"date"` // YYYY-MM-DD
	Slots []TimeSlot `json:"slots"`
}
