package models

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantStatus defines the approval state of a teammate participant.
type ParticipantStatus string

const (
	ParticipantStatusPending  ParticipantStatus = "pending"
	ParticipantStatusApproved ParticipantStatus = "approved"
	ParticipantStatusRejected ParticipantStatus = "rejected"
)

// TeammateRequest represents a call for players created by a user.
type TeammateRequest struct {
	ID                   uuid.UUID             `json:"id"`
	CreatorID            uuid.UUID             `json:"creator_id"`
	Sport                string                `json:"sport"`
	Location             string                `json:"location"`
	Date                 string                `json:"date"` // YYYY-MM-DD
	Time                 string                `json:"time"` // HH:MM
	Description          string                `json:"description"`
	RequiredParticipants int                   `json:"required_participants"`
	IsActive             bool                  `json:"is_active"`
	ChatRoomID           uuid.UUID             `json:"chat_room_id"`
	Participants         []TeammateParticipant `json:"participants,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// TeammateParticipant is a user's join request against a TeammateRequest.
// Status is mutated only by the request's creator.
type TeammateParticipant struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	RequestID uuid.UUID         `json:"request_id"`
	Status    ParticipantStatus `json:"status"`
	Message   string            `json:"message,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
