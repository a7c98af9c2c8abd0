package chat

import (
	"time"

	"github.com/google/uuid"
)

// SendMessageRequest is a message submission from a live session.
type SendMessageRequest struct {
	RoomID   uuid.UUID `json:"room_id"`
	SenderID uuid.UUID `json:"sender_id"`
	Content  string    `json:"content"`
	// Timestamp is the client-assigned send time, preserved as-is.
	Timestamp time.Time `json:"timestamp"`
}

// ListMessagesRequest pages backwards through a room's history.
type ListMessagesRequest struct {
	RoomID uuid.UUID
	// Before excludes messages persisted at or after this instant.
	Before *time.Time
	Limit  int
}
