package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// Repository implements booking data access operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new bookings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const bookingColumns = `id, user_id, field_id, date, start_time, end_time,
	total_price, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.FieldID, &b.Date, &b.StartTime,
		&b.EndTime, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBooking persists a new booking row.
func (r *Repository) CreateBooking(ctx context.Context, b *models.Booking) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO bookings (id, user_id, field_id, date, start_time, end_time, total_price, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.UserID, b.FieldID, b.Date, b.StartTime, b.EndTime,
		b.TotalPrice, b.Status, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetBooking retrieves a booking by ID.
func (r *Repository) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("booking %s", id)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// ListActiveForFieldDate retrieves pending and confirmed bookings for a
// field on a date, read immediately before a conflict check.
func (r *Repository) ListActiveForFieldDate(ctx context.Context, fieldID uuid.UUID, date string) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE field_id = $1 AND date = $2 AND status IN ('pending', 'confirmed')`,
		fieldID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for conflict check: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListUserBookings retrieves a user's bookings, most recent date first.
func (r *Repository) ListUserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE user_id = $1 ORDER BY date DESC, start_time DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListBookings retrieves all bookings (admin review queue).
func (r *Repository) ListBookings(ctx context.Context) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// UpdateStatusFrom transitions a booking to status only when its current
// status is one of allowedFrom. The conditional UPDATE makes the transition
// a compare-and-set: of two racing decisions on the same booking, exactly
// one matches the WHERE clause and wins.
func (r *Repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, status models.BookingStatus, allowedFrom []models.BookingStatus) (*models.Booking, error) {
	from := make([]string, len(allowedFrom))
	for i, s := range allowedFrom {
		from[i] = string(s)
	}

	row := r.pool.QueryRow(ctx,
		`UPDATE bookings SET status = $2, updated_at = now()
		 WHERE id = $1 AND status = ANY($3)
		 RETURNING `+bookingColumns,
		id, status, from)

	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.InvalidStatef("booking %s does not permit transition to %s", id, status)
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	return b, nil
}

func collectBookings(rows pgx.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
