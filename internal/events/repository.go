package events

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

// Repository implements event data access operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, name, description, sport, location, date, time,
	max_participants, organizer_id, field_id, chat_room_id, is_active,
	created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Sport, &e.Location,
		&e.Date, &e.Time, &e.MaxParticipants, &e.OrganizerID, &e.FieldID,
		&e.ChatRoomID, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent persists a new event row.
func (r *Repository) CreateEvent(ctx context.Context, e *models.Event) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, name, description, sport, location, date, time,
		 max_participants, organizer_id, field_id, chat_room_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.Name, e.Description, e.Sport, e.Location, e.Date, e.Time,
		e.MaxParticipants, e.OrganizerID, e.FieldID, e.ChatRoomID, e.IsActive,
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEvent retrieves an event with its participants.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)

	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("event %s", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	participants, err := r.listParticipants(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Participants = participants
	return e, nil
}

// ListEvents retrieves one page of active events with attendance counts,
// soonest first.
func (r *Repository) ListEvents(ctx context.Context, req ListEventsRequest) ([]EventSummary, int, error) {
	where := " WHERE e.is_active = true"
	args := []any{}
	if req.Sport != "" {
		args = append(args, req.Sport)
		where += fmt.Sprintf(" AND e.sport = $%d", len(args))
	}
	if req.Date != "" {
		args = append(args, req.Date)
		where += fmt.Sprintf(" AND e.date = $%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	offset := (req.Page - 1) * req.Limit
	args = append(args, req.Limit, offset)
	query := `SELECT e.id, e.name, e.sport, e.location, e.date, e.time,
		 e.max_participants, e.organizer_id,
		 (SELECT count(*) FROM event_participants p WHERE p.event_id = e.id AND p.is_attending) AS participant_count
		 FROM events e` + where +
		fmt.Sprintf(" ORDER BY e.date, e.time LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var summaries []EventSummary
	for rows.Next() {
		var s EventSummary
		err := rows.Scan(&s.ID, &s.Name, &s.Sport, &s.Location, &s.Date, &s.Time,
			&s.MaxParticipants, &s.OrganizerID, &s.ParticipantCount)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, total, rows.Err()
}

// DeleteEvent removes an event and its participant rows in one transaction.
func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	return sqlutil.RunTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM event_participants WHERE event_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete event participants: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFoundf("event %s", id)
		}
		return nil
	})
}

// CreateParticipant persists an attendance row.
func (r *Repository) CreateParticipant(ctx context.Context, p *models.EventParticipant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_participants (id, user_id, event_id, is_attending, notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.UserID, p.EventID, p.IsAttending, p.Notes, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event participant: %w", err)
	}
	return nil
}

// FindParticipantByUser looks up a user's attendance row for an event.
func (r *Repository) FindParticipantByUser(ctx context.Context, eventID, userID uuid.UUID) (*models.EventParticipant, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, event_id, is_attending, notes, created_at
		 FROM event_participants WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)

	var p models.EventParticipant
	err := row.Scan(&p.ID, &p.UserID, &p.EventID, &p.IsAttending, &p.Notes, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("user %s is not attending event %s", userID, eventID)
		}
		return nil, fmt.Errorf("failed to find event participant: %w", err)
	}
	return &p, nil
}

// DeleteParticipant removes an attendance row.
func (r *Repository) DeleteParticipant(ctx context.Context, participantID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM event_participants WHERE id = $1`, participantID)
	if err != nil {
		return fmt.Errorf("failed to delete event participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("participant %s", participantID)
	}
	return nil
}

// CountAttending returns the number of attending participants for an event.
func (r *Repository) CountAttending(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM event_participants
		 WHERE event_id = $1 AND is_attending`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count event participants: %w", err)
	}
	return count, nil
}

func (r *Repository) listParticipants(ctx context.Context, eventID uuid.UUID) ([]models.EventParticipant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, event_id, is_attending, notes, created_at
		 FROM event_participants WHERE event_id = $1 ORDER BY created_at`,
		eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list event participants: %w", err)
	}
	defer rows.Close()

	var participants []models.EventParticipant
	for rows.Next() {
		var p models.EventParticipant
		if err := rows.Scan(&p.ID, &p.UserID, &p.EventID, &p.IsAttending, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
