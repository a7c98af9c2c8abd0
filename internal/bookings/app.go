package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// BookingsRepository defines what the app layer needs from the repository.
type BookingsRepository interface {
	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListActiveForFieldDate(ctx context.Context, fieldID uuid.UUID, date string) ([]models.Booking, error)
	ListUserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, status models.BookingStatus, allowedFrom []models.BookingStatus) (*models.Booking, error)
}

// FieldGetter looks up fields for availability and pricing.
type FieldGetter interface {
	GetField(ctx context.Context, id uuid.UUID) (*models.Field, error)
}

// App owns the booking lifecycle: creation with conflict checking and the
// status state machine with per-actor transition authority.
type App struct {
	repo   BookingsRepository
	fields FieldGetter
	clock  clockwork.Clock
}

// NewApp creates a new bookings App.
func NewApp(repo BookingsRepository, fields FieldGetter, clock clockwork.Clock) *App {
	return &App{
		repo:   repo,
		fields: fields,
		clock:  clock,
	}
}

// CreateBooking validates and persists a new pending booking. The conflict
// check re-reads the field's active bookings immediately before the insert;
// a second identical concurrent request is rejected by the same check, with
// a small race window accepted as a known limitation.
func (a *App) CreateBooking(ctx context.Context, actor *auth.Identity, req CreateBookingRequest) (*models.Booking, error) {
	startMin, endMin, err := a.validateCreateBookingRequest(req)
	if err != nil {
		return nil, err
	}

	field, err := a.fields.GetField(ctx, req.FieldID)
	if err != nil {
		return nil, err
	}
	if !field.IsAvailable {
		return nil, apperr.InvalidStatef("field is not available for booking")
	}

	existing, err := a.repo.ListActiveForFieldDate(ctx, req.FieldID, req.Date)
	if err != nil {
		return nil, err
	}
	if HasConflict(startMin, endMin, existing) {
		return nil, apperr.Conflictf("field is already booked for this time slot")
	}

	hours := (endMin - startMin) / 60
	now := a.clock.Now()
	booking := &models.Booking{
		ID:         uuid.New(),
		UserID:     actor.UserID,
		FieldID:    req.FieldID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		TotalPrice: field.Price * float64(hours),
		Status:     models.BookingStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := a.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", booking.ID.String()).
		Str("field_id", booking.FieldID.String()).
		Str("user_id", booking.UserID.String()).
		Str("date", booking.Date).
		Str("slot", booking.StartTime+"-"+booking.EndTime).
		Msg("booking created")
	return booking, nil
}

// UpdateStatus applies a lifecycle transition. Cancellation is owner-only;
// confirmation and rejection are admin-only. The repository applies the
// transition as a compare-and-set on the current status so two racing
// decisions cannot both win.
func (a *App) UpdateStatus(ctx context.Context, actor *auth.Identity, id uuid.UUID, status models.BookingStatus) (*models.Booking, error) {
	var allowedFrom []models.BookingStatus
	switch status {
	case models.BookingStatusCancelled:
		allowedFrom = []models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}
	case models.BookingStatusConfirmed, models.BookingStatusRejected:
		allowedFrom = []models.BookingStatus{models.BookingStatusPending}
	default:
		return nil, apperr.Validationf("invalid status %q, must be confirmed, rejected or cancelled", status)
	}

	booking, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if status == models.BookingStatusCancelled {
		if booking.UserID != actor.UserID {
			return nil, apperr.Forbiddenf("not authorized to cancel this booking")
		}
	} else if !actor.IsAdmin {
		return nil, apperr.Forbiddenf("not authorized to update booking status to %s", status)
	}

	updated, err := a.repo.UpdateStatusFrom(ctx, id, status, allowedFrom)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("booking_id", id.String()).
		Str("status", string(status)).
		Str("actor_id", actor.UserID.String()).
		Msg("booking status updated")
	return updated, nil
}

// GetBooking retrieves a booking visible to its owner or an admin.
func (a *App) GetBooking(ctx context.Context, actor *auth.Identity, id uuid.UUID) (*models.Booking, error) {
	booking, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actor.UserID && !actor.IsAdmin {
		return nil, apperr.Forbiddenf("not authorized to view this booking")
	}
	return booking, nil
}

// ListUserBookings retrieves the actor's bookings, most recent first.
func (a *App) ListUserBookings(ctx context.Context, actor *auth.Identity) ([]models.Booking, error) {
	return a.repo.ListUserBookings(ctx, actor.UserID)
}

// ListBookings retrieves all bookings for the admin review queue.
func (a *App) ListBookings(ctx context.Context, actor *auth.Identity) ([]models.Booking, error) {
	if !actor.IsAdmin {
		return nil, apperr.Forbiddenf("admin access required")
	}
	return a.repo.ListBookings(ctx)
}

// validateCreateBookingRequest checks shape and returns the candidate
// interval in minutes since midnight.
func (a *App) validateCreateBookingRequest(req CreateBookingRequest) (int, int, error) {
	if req.FieldID == uuid.Nil {
		return 0, 0, apperr.Validationf("field_id is required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return 0, 0, apperr.Validationf("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	startMin, err := ParseClock(req.StartTime)
	if err != nil {
		return 0, 0, apperr.Validationf("%v", err)
	}
	endMin, err := ParseClock(req.EndTime)
	if err != nil {
		return 0, 0, apperr.Validationf("%v", err)
	}
	if startMin%60 != 0 || endMin%60 != 0 {
		return 0, 0, apperr.Validationf("only whole-hour bookings are supported")
	}
	if endMin <= startMin {
		return 0, 0, apperr.Validationf("end_time must be after start_time")
	}
	return startMin, endMin, nil
}
