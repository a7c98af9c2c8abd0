package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatRoomType defines what kind of conversation a room hosts.
type ChatRoomType string

const (
	ChatRoomTypeDirect   ChatRoomType = "direct"
	ChatRoomTypeTeammate ChatRoomType = "teammate"
	ChatRoomTypeEvent    ChatRoomType = "event"
)

// ChatRoom represents a persisted conversation. At most one direct room may
// exist per unordered pair of participants.
type ChatRoom struct {
	ID           uuid.UUID    `json:"id"`
	Type         ChatRoomType `json:"type"`
	Name         string       `json:"name,omitempty"`
	Participants []User       `json:"participants,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Message is a persisted chat message. Timestamp is the client-assigned
// send time; CreatedAt is when the server persisted the record.
type Message struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}
