package teammates

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/models"
	"github.com/rizkyyjun/sportmate/internal/sqlutil"
)

// Repository implements teammate request data access operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new teammates repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const requestColumns = `id, creator_id, sport, location, date, time, description,
	required_participants, is_active, chat_room_id, created_at, updated_at`

func scanRequest(row pgx.Row) (*models.TeammateRequest, error) {
	var req models.TeammateRequest
	err := row.Scan(&req.ID, &req.CreatorID, &req.Sport, &req.Location, &req.Date,
		&req.Time, &req.Description, &req.RequiredParticipants, &req.IsActive,
		&req.ChatRoomID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateRequest persists a new teammate request row.
func (r *Repository) CreateRequest(ctx context.Context, req *models.TeammateRequest) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO teammate_requests (id, creator_id, sport, location, date, time, description,
		 required_participants, is_active, chat_room_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		req.ID, req.CreatorID, req.Sport, req.Location, req.Date, req.Time,
		req.Description, req.RequiredParticipants, req.IsActive, req.ChatRoomID,
		req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create teammate request: %w", err)
	}
	return nil
}

// GetRequest retrieves a teammate request with its participants.
func (r *Repository) GetRequest(ctx context.Context, id uuid.UUID) (*models.TeammateRequest, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM teammate_requests WHERE id = $1`, id)

	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("teammate request %s", id)
		}
		return nil, fmt.Errorf("failed to get teammate request: %w", err)
	}

	participants, err := r.listParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Participants = participants
	return req, nil
}

// ListActiveRequests retrieves active requests, optionally filtered by sport
// and date, newest first.
func (r *Repository) ListActiveRequests(ctx context.Context, filter ListRequestsFilter) ([]models.TeammateRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM teammate_requests WHERE is_active = true`
	args := []any{}
	if filter.Sport != "" {
		args = append(args, filter.Sport)
		query += fmt.Sprintf(" AND sport = $%d", len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += fmt.Sprintf(" AND date = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teammate requests: %w", err)
	}
	defer rows.Close()

	var requests []models.TeammateRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teammate request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range requests {
		participants, err := r.listParticipants(ctx, requests[i].ID)
		if err != nil {
			return nil, err
		}
		requests[i].Participants = participants
	}
	return requests, nil
}

// DeleteRequest removes a request and its participant rows in one
// transaction.
func (r *Repository) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	return sqlutil.RunTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM teammate_participants WHERE request_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete request participants: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM teammate_requests WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete teammate request: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFoundf("teammate request %s", id)
		}
		return nil
	})
}

// CreateParticipant persists a join request row.
func (r *Repository) CreateParticipant(ctx context.Context, p *models.TeammateParticipant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO teammate_participants (id, user_id, request_id, status, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.RequestID, p.Status, p.Message, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create teammate participant: %w", err)
	}
	return nil
}

// GetParticipant retrieves one participant row scoped to a request.
func (r *Repository) GetParticipant(ctx context.Context, requestID, participantID uuid.UUID) (*models.TeammateParticipant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, request_id, status, message, created_at
		 FROM teammate_participants WHERE id = $1 AND request_id = $2`,
		participantID, requestID)

	var p models.TeammateParticipant
	err := row.Scan(&p.ID, &p.UserID, &p.RequestID, &p.Status, &p.Message, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("participant %s in request %s", participantID, requestID)
		}
		return nil, fmt.Errorf("failed to get teammate participant: %w", err)
	}
	return &p, nil
}

// FindParticipantByUser looks up a user's participant row for a request.
func (r *Repository) FindParticipantByUser(ctx context.Context, requestID, userID uuid.UUID) (*models.TeammateParticipant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, request_id, status, message, created_at
		 FROM teammate_participants WHERE request_id = $1 AND user_id = $2`,
		requestID, userID)

	var p models.TeammateParticipant
	err := row.Scan(&p.ID, &p.UserID, &p.RequestID, &p.Status, &p.Message, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user %s is not a participant of request %s", userID, requestID)
		}
		return nil, fmt.Errorf("failed to find teammate participant: %w", err)
	}
	return &p, nil
}

// UpdateParticipantStatus sets a participant's approval status.
func (r *Repository) UpdateParticipantStatus(ctx context.Context, participantID uuid.UUID, status models.ParticipantStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE teammate_participants SET status = $2 WHERE id = $1`,
		participantID, status)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("participant %s", participantID)
	}
	return nil
}

// DeleteParticipant removes a participant row.
func (r *Repository) DeleteParticipant(ctx context.Context, participantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM teammate_participants WHERE id = $1`, participantID)
	if err != nil {
		return fmt.Errorf("failed to delete teammate participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("participant %s", participantID)
	}
	return nil
}

// CountApproved returns the number of approved participants for a request.
func (r *Repository) CountApproved(ctx context.Context, requestID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM teammate_participants
		 WHERE request_id = $1 AND status = 'approved'`, requestID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count approved participants: %w", err)
	}
	return count, nil
}

func (r *Repository) listParticipants(ctx context.Context, requestID uuid.UUID) ([]models.TeammateParticipant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, request_id, status, message, created_at
		 FROM teammate_participants WHERE request_id = $1 ORDER BY created_at`,
		requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teammate participants: %w", err)
	}
	defer rows.Close()

	var participants []models.TeammateParticipant
	for rows.Next() {
		var p models.TeammateParticipant
		if err := rows.Scan(&p.ID, &p.UserID, &p.RequestID, &p.Status, &p.Message, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan teammate participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
