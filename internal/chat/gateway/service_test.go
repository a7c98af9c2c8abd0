package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/chat"
	"github.com/rizkyyjun/sportmate/internal/models"
)

type fakeChatApp struct {
	sendErr error
	marked  []uuid.UUID
	readMsg *models.Message
	changed bool
}

func (f *fakeChatApp) SendMessage(ctx context.Context, req chat.SendMessageRequest) (*models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &models.Message{
		ID:        uuid.New(),
		RoomID:    req.RoomID,
		SenderID:  req.SenderID,
		Content:   req.Content,
		Timestamp: req.Timestamp,
		CreatedAt: time.Now(),
	}, nil
}

func (f *fakeChatApp) MarkMessageRead(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, bool, error) {
	f.marked = append(f.marked, messageID)
	return f.readMsg, f.changed, nil
}

func decodeEvent(t *testing.T, raw []byte) (ServerEventType, json.RawMessage) {
	t.Helper()
	var event struct {
		Type ServerEventType `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &event))
	return event.Type, event.Data
}

func newTestService(app ChatApp) (*Service, *Registry) {
	registry := NewRegistry(DefaultSessionConfig())
	return NewService(registry, app, nil), registry
}

func TestDispatch_SendMessageBroadcastsPersistedRecord(t *testing.T) {
	svc, registry := newTestService(&fakeChatApp{})
	session := newTestSession(registry)
	roomID := uuid.New()
	registry.Join(roomID, session)

	payload, _ := json.Marshal(SendMessagePayload{
		RoomID:    roomID,
		SenderID:  session.Identity.UserID,
		Content:   "hello",
		Timestamp: time.Now(),
	})
	raw, _ := json.Marshal(Envelope{Type: ClientEventSend, Data: payload})

	svc.dispatch(session, raw)

	select {
	case msg := <-registry.broadcastCh:
		assert.Equal(t, roomID, msg.roomID)
		assert.Equal(t, ServerEventNewMessage, msg.event.Type)
		persisted := msg.event.Data.(*models.Message)
		assert.Equal(t, "hello", persisted.Content)
		assert.NotEqual(t, uuid.Nil, persisted.ID)
	default:
		t.Fatal("no broadcast queued")
	}
	assert.Len(t, session.Send, 0, "no error event on success")
}

func TestDispatch_SendMessageRejectsSpoofedSender(t *testing.T) {
	svc, registry := newTestService(&fakeChatApp{})
	session := newTestSession(registry)

	payload, _ := json.Marshal(SendMessagePayload{
		RoomID:   uuid.New(),
		SenderID: uuid.New(), // not the session's user
		Content:  "hello",
	})
	raw, _ := json.Marshal(Envelope{Type: ClientEventSend, Data: payload})

	svc.dispatch(session, raw)

	require.Len(t, session.Send, 1)
	eventType, _ := decodeEvent(t, <-session.Send)
	assert.Equal(t, ServerEventError, eventType)
	assert.Len(t, registry.broadcastCh, 0, "errors are never broadcast")
}

func TestDispatch_SendMessageErrorGoesToSenderOnly(t *testing.T) {
	svc, registry := newTestService(&fakeChatApp{
		sendErr: apperr.Forbiddenf("sender is not a participant of this room"),
	})
	session := newTestSession(registry)

	payload, _ := json.Marshal(SendMessagePayload{
		RoomID:   uuid.New(),
		SenderID: session.Identity.UserID,
		Content:  "hello",
	})
	raw, _ := json.Marshal(Envelope{Type: ClientEventSend, Data: payload})

	svc.dispatch(session, raw)

	require.Len(t, session.Send, 1)
	eventType, data := decodeEvent(t, <-session.Send)
	assert.Equal(t, ServerEventError, eventType)

	var errPayload ErrorPayload
	require.NoError(t, json.Unmarshal(data, &errPayload))
	assert.Contains(t, errPayload.Message, "not a participant")
	assert.Len(t, registry.broadcastCh, 0)
}

func TestDispatch_MarkReadBroadcastsReceiptOnlyWhenChanged(t *testing.T) {
	roomID := uuid.New()
	msgID := uuid.New()

	app := &fakeChatApp{
		readMsg: &models.Message{ID: msgID, RoomID: roomID, IsRead: true},
		changed: true,
	}
	svc, registry := newTestService(app)
	session := newTestSession(registry)

	payload, _ := json.Marshal(MarkReadPayload{MessageID: msgID, UserID: session.Identity.UserID})
	raw, _ := json.Marshal(Envelope{Type: ClientEventMarkRead, Data: payload})

	svc.dispatch(session, raw)

	select {
	case msg := <-registry.broadcastCh:
		assert.Equal(t, roomID, msg.roomID)
		assert.Equal(t, ServerEventMessageRead, msg.event.Type)
		receipt := msg.event.Data.(ReadReceipt)
		assert.Equal(t, msgID, receipt.MessageID)
		assert.Equal(t, session.Identity.UserID, receipt.UserID)
	default:
		t.Fatal("no read receipt queued")
	}

	// Sender no-op path: nothing broadcast.
	app.changed = false
	app.readMsg = &models.Message{ID: msgID, RoomID: roomID, SenderID: session.Identity.UserID}
	svc.dispatch(session, raw)
	assert.Len(t, registry.broadcastCh, 0)
}

func TestDispatch_MalformedEnvelope(t *testing.T) {
	svc, registry := newTestService(&fakeChatApp{})
	session := newTestSession(registry)

	svc.dispatch(session, []byte(`{"type":"shout"}`))

	require.Len(t, session.Send, 1)
	eventType, _ := decodeEvent(t, <-session.Send)
	assert.Equal(t, ServerEventError, eventType)
	assert.Len(t, registry.broadcastCh, 0)
}

func TestDispatch_JoinRoomRegistersSession(t *testing.T) {
	svc, registry := newTestService(&fakeChatApp{})
	session := newTestSession(registry)
	roomID := uuid.New()

	payload, _ := json.Marshal(RoomPayload{RoomID: roomID})
	raw, _ := json.Marshal(Envelope{Type: ClientEventJoinRoom, Data: payload})
	svc.dispatch(session, raw)

	sessions, rooms := registry.Stats()
	assert.Equal(t, 1, sessions)
	assert.Equal(t, 1, rooms)

	raw, _ = json.Marshal(Envelope{Type: ClientEventLeaveRoom, Data: payload})
	svc.dispatch(session, raw)

	_, rooms = registry.Stats()
	assert.Equal(t, 0, rooms)
}
