package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents an organized sports event with open joining.
type Event struct {
	ID              uuid.UUID          `json:"id"`
	Name            string             `json:"name"`
	Description     string             `json:"description"`
	Sport           string             `json:"sport"`
	Location        string             `json:"location"`
	Date            string             `json:"date"` // YYYY-MM-DD
	Time            string             `json:"time"` // HH:MM
	MaxParticipants int                `json:"max_participants"`
	OrganizerID     uuid.UUID          `json:"organizer_id"`
	FieldID         *uuid.UUID         `json:"field_id,omitempty"`
	ChatRoomID      uuid.UUID          `json:"chat_room_id"`
	IsActive        bool               `json:"is_active"`
	Participants    []EventParticipant `json:"participants,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// EventParticipant is a user attending an event. The organizer is never an
// explicit participant row but is treated as attending everywhere.
type EventParticipant struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	EventID     uuid.UUID `json:"event_id"`
	IsAttending bool      `json:"is_attending"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
