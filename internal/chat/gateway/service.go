package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/chat"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// ChatApp defines what the gateway needs from the chat application.
type ChatApp interface {
	SendMessage(ctx context.Context, req chat.SendMessageRequest) (*models.Message, error)
	MarkMessageRead(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, bool, error)
}

// TokenVerifier authenticates upgrade requests once, at connect time.
type TokenVerifier interface {
	IdentityFromRequest(r *http.Request) (*auth.Identity, error)
}

// Service is the live messaging gateway: it upgrades connections,
// dispatches client envelopes, and runs the persist-then-broadcast
// pipeline on top of the room registry.
type Service struct {
	registry *Registry
	app      ChatApp
	verifier TokenVerifier

	// dispatchTimeout bounds the persistence work done for one frame.
	dispatchTimeout time.Duration
}

// NewService creates a new gateway service.
func NewService(registry *Registry, app ChatApp, verifier TokenVerifier) *Service {
	return &Service{
		registry:        registry,
		app:             app,
		verifier:        verifier,
		dispatchTimeout: 10 * time.Second,
	}
}

// Start runs the registry's broadcast loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	s.registry.Start(ctx)
}

// RegisterRoutes registers WebSocket routes with an HTTP mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/chat", s.handleConnection)
	mux.HandleFunc("GET /ws/stats", s.handleStats)
}

// handleConnection authenticates and upgrades a client connection. The
// bearer token is validated once here; a failed check rejects the upgrade.
func (s *Service) handleConnection(w http.ResponseWriter, r *http.Request) {
	identity, err := s.verifier.IdentityFromRequest(r)
	if err != nil {
		http.Error(w, "invalid or missing token", http.StatusUnauthorized)
		return
	}

	if _, err := s.registry.Upgrade(w, r, identity, s.dispatch); err != nil {
		log.Error().Err(err).Str("user_id", identity.UserID.String()).Msg("failed to upgrade connection")
	}
}

func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	sessions, rooms := s.registry.Stats()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{
		"total_sessions": sessions,
		"active_rooms":   rooms,
	})
}

// dispatch routes one validated client envelope. Errors are emitted to the
// triggering session only, never broadcast.
func (s *Service) dispatch(session *Session, raw []byte) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		session.SendEvent(errorEvent(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.dispatchTimeout)
	defer cancel()

	switch env.Type {
	case ClientEventJoinRoom:
		s.handleJoinRoom(session, env.Data)
	case ClientEventLeaveRoom:
		s.handleLeaveRoom(session, env.Data)
	case ClientEventSend:
		s.handleSendMessage(ctx, session, env.Data)
	case ClientEventMarkRead:
		s.handleMarkRead(ctx, session, env.Data)
	}
}

func (s *Service) handleJoinRoom(session *Session, data json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == uuid.Nil {
		session.SendEvent(errorEvent(apperr.Validationf("invalid join_room payload")))
		return
	}
	s.registry.Join(payload.RoomID, session)
}

func (s *Service) handleLeaveRoom(session *Session, data json.RawMessage) {
	var payload RoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == uuid.Nil {
		session.SendEvent(errorEvent(apperr.Validationf("invalid leave_room payload")))
		return
	}
	s.registry.Leave(payload.RoomID, session)
}

// handleSendMessage runs the delivery pipeline for one message: validate,
// persist, then broadcast the persisted record to every live session in
// the room, including the sender, which reconciles its local state from
// the echo. Persistence is awaited before broadcast, so deliveries within
// a room follow persistence order.
func (s *Service) handleSendMessage(ctx context.Context, session *Session, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		session.SendEvent(errorEvent(apperr.Validationf("invalid send_message payload")))
		return
	}
	if payload.SenderID != session.Identity.UserID {
		session.SendEvent(errorEvent(apperr.Forbiddenf("sender_id does not match the authenticated user")))
		return
	}

	msg, err := s.app.SendMessage(ctx, chat.SendMessageRequest{
		RoomID:    payload.RoomID,
		SenderID:  payload.SenderID,
		Content:   payload.Content,
		Timestamp: payload.Timestamp,
	})
	if err != nil {
		session.SendEvent(errorEvent(err))
		return
	}

	s.registry.BroadcastToRoom(msg.RoomID, ServerEvent{
		Type: ServerEventNewMessage,
		Data: msg,
	})
}

func (s *Service) handleMarkRead(ctx context.Context, session *Session, data json.RawMessage) {
	var payload MarkReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		session.SendEvent(errorEvent(apperr.Validationf("invalid mark_message_read payload")))
		return
	}
	if payload.UserID != session.Identity.UserID {
		session.SendEvent(errorEvent(apperr.Forbiddenf("user_id does not match the authenticated user")))
		return
	}

	msg, changed, err := s.app.MarkMessageRead(ctx, payload.MessageID, payload.UserID)
	if err != nil {
		session.SendEvent(errorEvent(err))
		return
	}
	// Sender marking their own message is a no-op: nothing to broadcast.
	if !changed {
		return
	}

	s.registry.BroadcastToRoom(msg.RoomID, ServerEvent{
		Type: ServerEventMessageRead,
		Data: ReadReceipt{MessageID: msg.ID, UserID: payload.UserID},
	})
}

func errorEvent(err error) ServerEvent {
	return ServerEvent{
		Type: ServerEventError,
		Data: ErrorPayload{Message: err.Error()},
	}
}
