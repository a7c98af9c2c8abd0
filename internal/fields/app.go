package fields

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rizkyyjun/sportmate/internal/config"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// FieldsRepository defines what the app layer needs from the repository.
type FieldsRepository interface {
	GetField(ctx context.Context, id uuid.UUID) (*models.Field, error)
	ListFields(ctx context.Context, req ListFieldsRequest) ([]models.Field, int, error)
	ListActiveBookings(ctx context.Context, fieldID uuid.UUID) ([]models.Booking, error)
	ListUserBookings(ctx context.Context, fieldID, userID uuid.UUID) ([]models.Booking, error)
}

// App handles field reads and the availability calendar.
type App struct {
	repo       FieldsRepository
	template   []config.OperatingSlot
	windowDays int
	clock      clockwork.Clock
}

// NewApp creates a new fields App.
// In production pass clockwork.NewRealClock(); tests pass a FakeClock.
func NewApp(repo FieldsRepository, template []config.OperatingSlot, windowDays int, clock clockwork.Clock) *App {
	return &App{
		repo:       repo,
		template:   template,
		windowDays: windowDays,
		clock:      clock,
	}
}

// GetFieldWithAvailability retrieves a field plus its computed slot calendar.
func (a *App) GetFieldWithAvailability(ctx context.Context, id uuid.UUID) (*FieldWithAvailability, error) {
	field, err := a.repo.GetField(ctx, id)
	if err != nil {
		return nil, err
	}

	bookings, err := a.repo.ListActiveBookings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for availability: %w", err)
	}

	return &FieldWithAvailability{
		Field:        *field,
		Availability: BuildAvailability(a.template, bookings, a.clock.Now(), a.windowDays),
	}, nil
}

// ListFields retrieves a filtered, paginated page of fields.
func (a *App) ListFields(ctx context.Context, req ListFieldsRequest) (*ListFieldsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}

	fields, total, err := a.repo.ListFields(ctx, req)
	if err != nil {
		return nil, err
	}

	lastPage := (total + req.Limit - 1) / req.Limit
	return &ListFieldsResponse{
		Data:     fields,
		Total:    total,
		Page:     req.Page,
		LastPage: lastPage,
	}, nil
}

// ListUserBookings retrieves a user's own active bookings for a field, used
// by clients to distinguish "you already hold this slot" before submitting.
func (a *App) ListUserBookings(ctx context.Context, fieldID, userID uuid.UUID) ([]models.Booking, error) {
	if _, err := a.repo.GetField(ctx, fieldID); err != nil {
		return nil, err
	}
	return a.repo.ListUserBookings(ctx, fieldID, userID)
}
