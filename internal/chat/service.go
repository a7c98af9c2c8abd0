package chat

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/httputil"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// ChatApp defines what the service layer needs from the chat application.
type ChatApp interface {
	CreateDirectRoom(ctx context.Context, currentUserID, otherUserID uuid.UUID) (*models.ChatRoom, bool, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error)
	AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (*models.ChatRoom, error)
	RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	ListMessages(ctx context.Context, roomID uuid.UUID, before *time.Time, limit int) ([]models.Message, error)
}

// Service exposes the chat HTTP endpoints. Live messaging runs over the
// WebSocket gateway; these routes cover room management and backfill.
type Service struct {
	app ChatApp
}

// NewService creates a new chat HTTP service.
func NewService(app ChatApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers chat routes with an HTTP mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /chat/rooms", s.handleListRooms)
	mux.HandleFunc("GET /chat/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("GET /chat/rooms/{id}/messages", s.handleListMessages)
	mux.HandleFunc("POST /chat/rooms/direct/{userId}", s.handleCreateDirectRoom)
	mux.HandleFunc("POST /chat/rooms/{id}/participants/{userId}", s.handleAddParticipant)
	mux.HandleFunc("DELETE /chat/rooms/{id}/participants/{userId}", s.handleRemoveParticipant)
}

func (s *Service) handleListRooms(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	rooms, err := s.app.ListRooms(r.Context(), identity.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if rooms == nil {
		rooms = []models.ChatRoom{}
	}
	httputil.WriteJSON(w, http.StatusOK, rooms)
}

func (s *Service) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid room id"))
		return
	}

	room, err := s.app.GetRoom(r.Context(), roomID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, room)
}

func (s *Service) handleListMessages(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid room id"))
		return
	}

	q := r.URL.Query()
	var before *time.Time
	if raw := q.Get("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, apperr.Validationf("invalid before cursor, expected RFC3339"))
			return
		}
		before = &t
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	messages, err := s.app.ListMessages(r.Context(), roomID, before, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	httputil.WriteJSON(w, http.StatusOK, messages)
}

func (s *Service) handleCreateDirectRoom(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	otherID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid user id"))
		return
	}

	room, created, err := s.app.CreateDirectRoom(r.Context(), identity.UserID, otherID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, room)
}

func (s *Service) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid room id"))
		return
	}
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid user id"))
		return
	}

	room, err := s.app.AddParticipant(r.Context(), roomID, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, room)
}

func (s *Service) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid room id"))
		return
	}
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid user id"))
		return
	}

	deleted, err := s.app.RemoveParticipant(r.Context(), roomID, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if deleted {
		httputil.WriteJSON(w, http.StatusNoContent, nil)
		return
	}

	room, err := s.app.GetRoom(r.Context(), roomID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, room)
}
