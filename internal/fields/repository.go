package fields

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

// Repository implements field data access operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new fields repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const fieldColumns = `id, name, location, sport, price, description, images,
	contact_phone, contact_email, is_available, created_at, updated_at`

func scanField(row pgx.Row) (*models.Field, error) {
	var f models.Field
	err := row.Scan(&f.ID, &f.Name, &f.Location, &f.Sport, &f.Price,
		&f.Description, &f.Images, &f.ContactPhone, &f.ContactEmail,
		&f.IsAvailable, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// GetField retrieves a field by ID.
func (r *Repository) GetField(ctx context.Context, id uuid.UUID) (*models.Field, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+fieldColumns+` FROM fields WHERE id = $1`, id)

	f, err := scanField(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("field %s", id)
		}
		return nil, fmt.Errorf("failed to get field: %w", err)
	}
	return f, nil
}

// ListFields retrieves fields filtered by sport and location, paginated.
func (r *Repository) ListFields(ctx context.Context, req ListFieldsRequest) ([]models.Field, int, error) {
	where := ` WHERE ($1 = '' OR sport = $1) AND ($2 = '' OR location ILIKE '%' || $2 || '%')`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM fields`+where, req.Sport, req.Location).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count fields: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+fieldColumns+` FROM fields`+where+` ORDER BY created_at DESC OFFSET $3 LIMIT $4`,
		req.Sport, req.Location, (req.Page-1)*req.Limit, req.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list fields: %w", err)
	}
	defer rows.Close()

	var fields []models.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan field: %w", err)
		}
		fields = append(fields, *f)
	}
	return fields, total, rows.Err()
}

// ListActiveBookings retrieves a field's pending and confirmed bookings.
func (r *Repository) ListActiveBookings(ctx context.Context, fieldID uuid.UUID) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, field_id, date, start_time, end_time, total_price, status, created_at, updated_at
		 FROM bookings
		 WHERE field_id = $1 AND status IN ('pending', 'confirmed')`, fieldID)
	if err != nil {
		return nil, fmt.Errorf("failed to list field bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// ListUserBookings retrieves a user's pending and confirmed bookings for a field.
func (r *Repository) ListUserBookings(ctx context.Context, fieldID, userID uuid.UUID) ([]models.Booking, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, field_id, date, start_time, end_time, total_price, status, created_at, updated_at
		 FROM bookings
		 WHERE field_id = $1 AND user_id = $2 AND status IN ('pending', 'confirmed')`, fieldID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user field bookings: %w", err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

func scanBookings(rows pgx.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		err := rows.Scan(&b.ID, &b.UserID, &b.FieldID, &b.Date, &b.StartTime,
			&b.EndTime, &b.TotalPrice, &b.Status, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
