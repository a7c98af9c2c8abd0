package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus defines the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a reservation of a field for a whole-hour time range
// on a single date. No two pending/confirmed bookings for the same field
// and date may overlap.
type Booking struct {
	ID         uuid.UUID     `json:"id"`
	UserID     uuid.UUID     `json:"user_id"`
	FieldID    uuid.UUID     `json:"field_id"`
	Date       string        `json:"date"`       // YYYY-MM-DD
	StartTime  string        `json:"start_time"` // HH:MM
	EndTime    string        `json:"end_time"`   // HH:MM
	TotalPrice float64       `json:"total_price"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Active reports whether the booking occupies its slot for conflict checks.
func (s BookingStatus) Active() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}
