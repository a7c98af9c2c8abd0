package bookings

import (
	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/models"
)

// CreateBookingRequest carries a user's booking submission.
type CreateBookingRequest struct {
	FieldID   uuid.UUID `json:"field_id"`
	Date      string    `json:"date"`       // YYYY-MM-DD
	StartTime string    `json:"start_time"` // HH:MM, whole hours
	EndTime   string    `json:"end_time"`   // HH:MM, whole hours
}

// UpdateStatusRequest carries a requested status transition.
type UpdateStatusRequest struct {
	Status models.BookingStatus `json:"status"`
}
