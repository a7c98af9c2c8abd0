package bookings

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/httputil"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// BookingsApp defines what the service layer needs from the bookings application.
type BookingsApp interface {
	CreateBooking(ctx context.Context, actor *auth.Identity, req CreateBookingRequest) (*models.Booking, error)
	UpdateStatus(ctx context.Context, actor *auth.Identity, id uuid.UUID, status models.BookingStatus) (*models.Booking, error)
	GetBooking(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*models.Booking, error)
	ListUserBookings(ctx context.Context, actor *auth.Identity) ([]models.Booking, error)
	ListBookings(ctx context.Context, actor *auth.Identity) ([]models.Booking, error)
}

// Service exposes the bookings HTTP endpoints.
type Service struct {
	app BookingsApp
}

// NewService creates a new bookings HTTP service.
func NewService(app BookingsApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers booking routes with an HTTP mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /bookings", s.handleListBookings)
	mux.HandleFunc("GET /bookings/my", s.handleListUserBookings)
	mux.HandleFunc("GET /bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("PATCH /bookings/{id}/status", s.handleUpdateStatus)
}

func (s *Service) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := s.app.CreateBooking(r.Context(), identity, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, booking)
}

func (s *Service) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid booking id"))
		return
	}

	var req UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := s.app.UpdateStatus(r.Context(), identity, id, req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, booking)
}

func (s *Service) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid booking id"))
		return
	}

	booking, err := s.app.GetBooking(r.Context(), identity, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, booking)
}

func (s *Service) handleListUserBookings(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	bookings, err := s.app.ListUserBookings(r.Context(), identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	httputil.WriteJSON(w, http.StatusOK, bookings)
}

func (s *Service) handleListBookings(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	bookings, err := s.app.ListBookings(r.Context(), identity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	httputil.WriteJSON(w, http.StatusOK, bookings)
}
