package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/models"
	"github.com/rizkyyjun/sportmate/internal/sqlutil"
)

// Repository implements chat room and message data access operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new chat repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRoom persists a room and its initial participants in one transaction.
func (r *Repository) CreateRoom(ctx context.Context, room *models.ChatRoom, participantIDs []uuid.UUID) error {
	return sqlutil.RunTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO chat_rooms (id, type, name, created_at) VALUES ($1, $2, $3, $4)`,
			room.ID, room.Type, room.Name, room.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create chat room: %w", err)
		}
		for _, userID := range participantIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO chat_room_participants (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				room.ID, userID)
			if err != nil {
				return fmt.Errorf("failed to add room participant: %w", err)
			}
		}
		return nil
	})
}

// GetRoom retrieves a room with its participant users.
func (r *Repository) GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, type, name, created_at FROM chat_rooms WHERE id = $1`, id)

	var room models.ChatRoom
	if err := row.Scan(&room.ID, &room.Type, &room.Name, &room.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("chat room %s", id)
		}
		return nil, fmt.Errorf("failed to get chat room: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.email, u.is_admin, u.created_at
		 FROM users u
		 JOIN chat_room_participants p ON p.user_id = u.id
		 WHERE p.room_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get room participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		room.Participants = append(room.Participants, u)
	}
	return &room, rows.Err()
}

// FindDirectRoom looks up the direct room for an unordered user pair.
func (r *Repository) FindDirectRoom(ctx context.Context, a, b uuid.UUID) (*models.ChatRoom, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT cr.id FROM chat_rooms cr
		 JOIN chat_room_participants p ON p.room_id = cr.id
		 WHERE cr.type = 'direct' AND p.user_id IN ($1, $2)
		 GROUP BY cr.id
		 HAVING COUNT(DISTINCT p.user_id) = 2`, a, b)

	var id uuid.UUID
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("direct room for pair")
		}
		return nil, fmt.Errorf("failed to find direct room: %w", err)
	}
	return r.GetRoom(ctx, id)
}

// AddParticipant adds a user to a room; a no-op when already present.
func (r *Repository) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_room_participants (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		roomID, userID)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// IsParticipant reports whether a user belongs to a room.
func (r *Repository) IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM chat_room_participants WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}
	return exists, nil
}

// RemoveParticipant removes a user from a room. Removing the last
// participant deletes the room and its messages in the same transaction.
func (r *Repository) RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (deleted bool, err error) {
	err = sqlutil.RunTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM chat_room_participants WHERE room_id = $1 AND user_id = $2`,
			roomID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}

		var remaining int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM chat_room_participants WHERE room_id = $1`, roomID).Scan(&remaining); err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		if remaining > 0 {
			return nil
		}

		if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE room_id = $1`, roomID); err != nil {
			return fmt.Errorf("failed to delete room messages: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM chat_rooms WHERE id = $1`, roomID); err != nil {
			return fmt.Errorf("failed to delete room: %w", err)
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// ListRoomsForUser retrieves the rooms a user participates in, plus rooms
// of teammate requests the user created, ordered by most recent activity.
func (r *Repository) ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT cr.id, cr.type, cr.name, cr.created_at,
		        COALESCE((SELECT MAX(m.created_at) FROM messages m WHERE m.room_id = cr.id), cr.created_at) AS last_activity
		 FROM chat_rooms cr
		 LEFT JOIN chat_room_participants p ON p.room_id = cr.id
		 LEFT JOIN teammate_requests tr ON tr.chat_room_id = cr.id
		 WHERE p.user_id = $1 OR tr.creator_id = $1
		 ORDER BY last_activity DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		var lastActivity time.Time
		if err := rows.Scan(&room.ID, &room.Type, &room.Name, &room.CreatedAt, &lastActivity); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// CreateMessage persists a message record.
func (r *Repository) CreateMessage(ctx context.Context, m *models.Message) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, room_id, sender_id, content, timestamp, created_at, is_read)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.RoomID, m.SenderID, m.Content, m.Timestamp, m.CreatedAt, m.IsRead)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// GetMessage retrieves a message by ID.
func (r *Repository) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, room_id, sender_id, content, timestamp, created_at, is_read
		 FROM messages WHERE id = $1`, id)

	var m models.Message
	err := row.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.Timestamp, &m.CreatedAt, &m.IsRead)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFoundf("message %s", id)
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return &m, nil
}

// MarkRead sets a message's read flag.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE messages SET is_read = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}

// ListMessages retrieves a page of room history, newest first.
func (r *Repository) ListMessages(ctx context.Context, req ListMessagesRequest) ([]models.Message, error) {
	query := `SELECT id, room_id, sender_id, content, timestamp, created_at, is_read
	          FROM messages WHERE room_id = $1`
	args := []any{req.RoomID}
	if req.Before != nil {
		query += ` AND created_at < $2`
		args = append(args, *req.Before)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, req.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.Timestamp, &m.CreatedAt, &m.IsRead); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
