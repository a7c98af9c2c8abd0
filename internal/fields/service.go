package fields

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

// FieldsApp defines what the service layer needs from the fields application.
type FieldsApp interface {
	GetFieldWithAvailability(ctx context.Context, id uuid.UUID) (*FieldWithAvailability, error)
	ListFields(ctx context.Context, req ListFieldsRequest) (*ListFieldsResponse, error)
	ListUserBookings(ctx context.Context, fieldID, userID uuid.UUID) ([]models.Booking, error)
}

// Service exposes the fields HTTP endpoints.
type Service struct {
	app FieldsApp
}

// NewService creates a new fields HTTP service.
func NewService(app FieldsApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers field routes with an HTTP mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /fields", s.handleListFields)
	mux.HandleFunc("GET /fields/{id}", s.handleGetField)
	mux.HandleFunc("GET /fields/{id}/my-bookings", s.handleListUserBookings)
}

func (s *Service) handleListFields(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	resp, err := s.app.ListFields(r.Context(), ListFieldsRequest{
		Sport:    q.Get("sport"),
		Location: q.Get("location"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Service) handleGetField(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid field id"))
		return
	}

	field, err := s.app.GetFieldWithAvailability(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, field)
}

func (s *Service) handleListUserBookings(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.ErrUnauthorized)
		return
	}

	fieldID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, apperr.Validationf("invalid field id"))
		return
	}

	bookings, err := s.app.ListUserBookings(r.Context(), fieldID, identity.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	httputil.WriteJSON(w, http.StatusOK, bookings)
}
