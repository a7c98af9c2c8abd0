package teammates

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/httputil"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// TeammatesApp defines what the service layer needs from the application.
type TeammatesApp interface {
	Create(ctx context.Context, creatorID uuid.UUID, req CreateRequestRequest) (*models.TeammateRequest, error)
	List(ctx context.Context, filter ListRequestsFilter) ([]models.TeammateRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.TeammateRequest, error)
	Delete(ctx context.Context, id, actorID uuid.UUID) error
	Join(ctx context.Context, requestID, userID uuid.UUID, message string) (*models.TeammateParticipant, error)
	UpdateParticipantStatus(ctx context.Context, requestID, participantID, actorID uuid.UUID, status models.ParticipantStatus) (*models.TeammateParticipant, error)
	Leave(ctx context.Context, requestID, userID uuid.UUID) error
}

// Service exposes the teammate request HTTP endpoints.
type Service struct {
	app TeammatesApp
}

// NewService creates a new teammates HTTP service.
func NewService(app TeammatesApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers teammate routes with an HTTP mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /teammates", s.handleCreate)
	mux.HandleFunc("GET /teammates", s.handleList)
	mux.HandleFunc("GET /teammates/{id}", s.handleGet)
	mux.HandleFunc("DELETE /teammates/{id}", s.handleDelete)
	mux.HandleFunc("POST /teammates/{id}/join", s.handleJoin)
	mux.HandleFunc("DELETE /teammates/{id}/leave", s.handleLeave)
	mux.HandleFunc("PATCH /teammates/{id}/participants/{pid}/status", s.handleUpdateParticipantStatus)
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	var req CreateRequestRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	request, err := s.app.Create(r.Context(), identity.UserID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, request)
}

func (s *Service) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	requests, err := s.app.List(r.Context(), ListRequestsFilter{
		Sport: q.Get("sport"),
		Date:  q.Get("date"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if requests == nil {
		requests = []models.TeammateRequest{}
	}
	httputil.WriteJSON(w, http.StatusOK, requests)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid request id"))
		return
	}

	request, err := s.app.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, request)
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid request id"))
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
		httputil.WriteError(w, apperr.Validationf("invalid request id"))
		return
	}

	var req JoinRequest
	if r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	participant, err := s.app.Join(r.Context(), id, identity.UserID, req.Message)
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
		httputil.WriteError(w, apperr.Validationf("invalid request id"))
		return
	}

	if err := s.app.Leave(r.Context(), id, identity.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusNoContent, nil)
}

func (s *Service) handleUpdateParticipantStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}
	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid request id"))
		return
	}
	participantID, err := uuid.Parse(r.PathValue("pid"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid participant id"))
		return
	}

	var req UpdateParticipantStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	participant, err := s.app.UpdateParticipantStatus(r.Context(), requestID, participantID,
		identity.UserID, models.ParticipantStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, participant)
}
