package events

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/httputil"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// EventsApp defines what the service layer needs from the application.
type EventsApp interface {
	Create(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*models.Event, error)
	List(ctx context.Context, req ListEventsRequest) (*ListEventsResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Event, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	Join(ctx context.Context, eventID, userID uuid.UUID, notes string) (*models.EventParticipant, error)
	Leave(ctx context.Context, eventID, userID uuid.UUID) error
}

// Service exposes the event HTTP endpoints.
type Service struct {
	app EventsApp
}

// NewService creates a new events HTTP service.
func NewService(app EventsApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers event routes with an HTTP mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /events", s.handleCreate)
	mux.HandleFunc("GET /events", s.handleList)
	mux.HandleFunc("GET /events/{id}", s.handleGet)
	mux.HandleFunc("DELETE /events/{id}", s.handleDelete)
	mux.HandleFunc("POST /events/{id}/join", s.handleJoin)
	mux.HandleFunc("DELETE /events/{id}/leave", s.handleLeave)
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	var req CreateEventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	event, err := s.app.Create(r.Context(), identity.UserID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, event)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	resp, err := s.app.List(r.Context(), ListEventsRequest{
		Sport: q.Get("sport"),
		Date:  q.Get("date"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid event id"))
		return
	}

	event, err := s.app.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, event)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid event id"))
		return
	}

	if err := s.app.Delete(r.Context(), id, identity.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (s *Service) handleJoin(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid event id"))
		return
	}

	var req JoinEventRequest
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	participant, err := s.app.Join(r.Context(), id, identity.UserID, req.Notes)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, participant)
}

func (s *Service) handleLeave(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid event id"))
		return
	}

	if err := s.app.Leave(r.Context(), id, identity.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}
