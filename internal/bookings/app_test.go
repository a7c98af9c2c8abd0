package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/auth"
	"github.com/rizkyyjun/sportmate/internal/models"
)

type fakeBookingsRepo struct {
	bookings map[uuid.UUID]*models.Booking
}

func newFakeBookingsRepo() *fakeBookingsRepo {
	return &fakeBookingsRepo{bookings: make(map[uuid.UUID]*models.Booking)}
}

func (f *fakeBookingsRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	copied := *b
	f.bookings[b.ID] = &copied
	return nil
}

func (f *fakeBookingsRepo) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperr.NotFoundf("booking %s", id)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingsRepo) ListActiveForFieldDate(ctx context.Context, fieldID uuid.UUID, date string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.FieldID == fieldID && b.Date == date && b.Status.Active() {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingsRepo) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingsRepo) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeBookingsRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, status models.BookingStatus, allowedFrom []models.BookingStatus) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperr.InvalidStatef("booking %s does not permit transition to %s", id, status)
	}
	for _, from := range allowedFrom {
		if b.Status == from {
			b.Status = status
			copied := *b
			return &copied, nil
		}
	}
	return nil, apperr.InvalidStatef("booking %s does not permit transition to %s", id, status)
}

type fakeFieldGetter struct {
	fields map[uuid.UUID]*models.Field
}

func (f *fakeFieldGetter) GetField(ctx context.Context, id uuid.UUID) (*models.Field, error) {
	field, ok := f.fields[id]
	if !ok {
		return nil, apperr.NotFoundf("field %s", id)
	}
	return field, nil
}

func newTestApp(t *testing.T) (*App, *fakeBookingsRepo, uuid.UUID) {
	t.Helper()
	repo := newFakeBookingsRepo()
	fieldID := uuid.New()
	fields := &fakeFieldGetter{fields: map[uuid.UUID]*models.Field{
		fieldID: {ID: fieldID, Name: "Court A", Price: 50000, IsAvailable: true},
	}}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC))
	return NewApp(repo, fields, clock), repo, fieldID
}

func user() *auth.Identity {
	return &auth.Identity{UserID: uuid.New()}
}

func admin() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), IsAdmin: true}
}

func TestCreateBooking_PricedPerHour(t *testing.T) {
	app, _, fieldID := newTestApp(t)

	booking, err := app.CreateBooking(context.Background(), user(), CreateBookingRequest{
		FieldID:   fieldID,
		Date:      "2026-03-15",
		StartTime: "10:00",
		EndTime:   "12:00",
	})
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusPending, booking.Status)
	assert.Equal(t, 100000.0, booking.TotalPrice)
	assert.NotEqual(t, uuid.Nil, booking.ID)
}

func TestCreateBooking_Validation(t *testing.T) {
	app, _, fieldID := newTestApp(t)
	ctx := context.Background()

	cases := []CreateBookingRequest{
		{FieldID: uuid.Nil, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00"},
		{FieldID: fieldID, Date: "15-03-2026", StartTime: "10:00", EndTime: "11:00"},
		{FieldID: fieldID, Date: "2026-03-15", StartTime: "10:30", EndTime: "11:30"},
		{FieldID: fieldID, Date: "2026-03-15", StartTime: "11:00", EndTime: "10:00"},
		{FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "10:00"},
	}
	for _, req := range cases {
		_, err := app.CreateBooking(ctx, user(), req)
		assert.ErrorIs(t, err, apperr.ErrValidation, "request %+v", req)
	}
}

func TestCreateBooking_ConflictOnOverlap(t *testing.T) {
	app, _, fieldID := newTestApp(t)
	ctx := context.Background()

	_, err := app.CreateBooking(ctx, user(), CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)

	_, err = app.CreateBooking(ctx, user(), CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "11:00", EndTime: "13:00",
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Back-to-back is fine.
	_, err = app.CreateBooking(ctx, user(), CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "12:00", EndTime: "13:00",
	})
	assert.NoError(t, err)

	// Same slot on another date is fine.
	_, err = app.CreateBooking(ctx, user(), CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-16", StartTime: "10:00", EndTime: "12:00",
	})
	assert.NoError(t, err)
}

func TestCreateBooking_CancelledBookingReleasesSlot(t *testing.T) {
	app, _, fieldID := newTestApp(t)
	ctx := context.Background()
	owner := user()

	first, err := app.CreateBooking(ctx, owner, CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = app.UpdateStatus(ctx, owner, first.ID, models.BookingStatusCancelled)
	require.NoError(t, err)

	_, err = app.CreateBooking(ctx, user(), CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00",
	})
	assert.NoError(t, err)
}

func TestCreateBooking_UnavailableField(t *testing.T) {
	app, _, _ := newTestApp(t)
	closedID := uuid.New()
	app.fields.(*fakeFieldGetter).fields[closedID] = &models.Field{
		ID: closedID, Price: 50000, IsAvailable: false,
	}

	_, err := app.CreateBooking(context.Background(), user(), CreateBookingRequest{
		FieldID: closedID, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestUpdateStatus_TransitionAuthority(t *testing.T) {
	app, _, fieldID := newTestApp(t)
	ctx := context.Background()
	owner := user()

	booking, err := app.CreateBooking(ctx, owner, CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	// A non-admin cannot confirm.
	_, err = app.UpdateStatus(ctx, owner, booking.ID, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// A stranger cannot cancel.
	_, err = app.UpdateStatus(ctx, user(), booking.ID, models.BookingStatusCancelled)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// The admin confirms; the owner can still cancel a confirmed booking.
	confirmed, err := app.UpdateStatus(ctx, admin(), booking.ID, models.BookingStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)

	cancelled, err := app.UpdateStatus(ctx, owner, booking.ID, models.BookingStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	// Terminal: a cancelled booking cannot be confirmed again.
	_, err = app.UpdateStatus(ctx, admin(), booking.ID, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestUpdateStatus_RejectedIsTerminal(t *testing.T) {
	app, _, fieldID := newTestApp(t)
	ctx := context.Background()
	owner := user()

	booking, err := app.CreateBooking(ctx, owner, CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = app.UpdateStatus(ctx, admin(), booking.ID, models.BookingStatusRejected)
	require.NoError(t, err)

	// Rejected bookings cannot be cancelled or re-confirmed.
	_, err = app.UpdateStatus(ctx, owner, booking.ID, models.BookingStatusCancelled)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
	_, err = app.UpdateStatus(ctx, admin(), booking.ID, models.BookingStatusConfirmed)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestUpdateStatus_InvalidTarget(t *testing.T) {
	app, _, fieldID := newTestApp(t)
	ctx := context.Background()
	owner := user()

	booking, err := app.CreateBooking(ctx, owner, CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	// "pending" is never a transition target.
	_, err = app.UpdateStatus(ctx, admin(), booking.ID, models.BookingStatusPending)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetBooking_OwnerOrAdminOnly(t *testing.T) {
	app, _, fieldID := newTestApp(t)
	ctx := context.Background()
	owner := user()

	booking, err := app.CreateBooking(ctx, owner, CreateBookingRequest{
		FieldID: fieldID, Date: "2026-03-15", StartTime: "10:00", EndTime: "11:00",
	})
	require.NoError(t, err)

	_, err = app.GetBooking(ctx, owner, booking.ID)
	assert.NoError(t, err)
	_, err = app.GetBooking(ctx, admin(), booking.ID)
	assert.NoError(t, err)
	_, err = app.GetBooking(ctx, user(), booking.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestListBookings_AdminOnly(t *testing.T) {
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	_, err := app.ListBookings(ctx, user())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = app.ListBookings(ctx, admin())
	assert.NoError(t, err)
}
