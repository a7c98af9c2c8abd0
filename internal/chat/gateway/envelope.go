package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/apperr"
)

// ClientEventType tags messages received from a live session.
type ClientEventType string

const (
	ClientEventJoinRoom  ClientEventType = "join_room"
	ClientEventLeaveRoom ClientEventType = "leave_room"
	ClientEventSend      ClientEventType = "send_message"
	ClientEventMarkRead  ClientEventType = "mark_message_read"
)

// ServerEventType tags messages pushed to live sessions.
type ServerEventType string

const (
	ServerEventNewMessage  ServerEventType = "new_message"
	ServerEventMessageRead ServerEventType = "message_read"
	ServerEventError       ServerEventType = "error"
)

// Envelope is the tagged union every client payload arrives in. The
// payload is validated against the type before dispatch; malformed
// envelopes produce an error event to the sender only.
type Envelope struct {
	Type ClientEventType `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerEvent is the envelope for server-to-client pushes.
type ServerEvent struct {
	Type ServerEventType `json:"type"`
	Data any             `json:"data"`
}

// RoomPayload addresses join_room and leave_room events.
type RoomPayload struct {
	RoomID uuid.UUID `json:"room_id"`
}

// SendMessagePayload is a message submission over the live connection.
type SendMessagePayload struct {
	RoomID    uuid.UUID `json:"room_id"`
	SenderID  uuid.UUID `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MarkReadPayload is a read-receipt submission.
type MarkReadPayload struct {
	MessageID uuid.UUID `json:"message_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// ReadReceipt is broadcast to a room when a recipient reads a message.
type ReadReceipt struct {
	MessageID uuid.UUID `json:"message_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// ErrorPayload is emitted to the triggering session only, never broadcast.
type ErrorPayload struct {
	Message string `json:"message"`
}

// ParseEnvelope decodes and validates a raw client frame.
func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, apperr.Validationf("malformed envelope: %v", err)
	}
	switch env.Type {
	case ClientEventJoinRoom, ClientEventLeaveRoom, ClientEventSend, ClientEventMarkRead:
		return &env, nil
	default:
		return nil, apperr.Validationf("unknown event type %q", env.Type)
	}
}
