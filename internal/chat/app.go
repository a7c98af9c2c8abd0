package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// ChatRepository defines what the app layer needs from the repository.
type ChatRepository interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom, participantIDs []uuid.UUID) error
	GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error)
	FindDirectRoom(ctx context.Context, a, b uuid.UUID) (*models.ChatRoom, error)
	AddParticipant(ctx context.Context, roomID, userID uuid.UUID) error
	IsParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	ListMessages(ctx context.Context, req ListMessagesRequest) ([]models.Message, error)
}

// UserGetter validates that referenced users exist.
type UserGetter interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// App handles chat room membership and the message delivery pipeline's
// persistence half. Live fanout lives in the gateway package.
type App struct {
	repo            ChatRepository
	users           UserGetter
	clock           clockwork.Clock
	defaultPageSize int
}

// NewApp creates a new chat App.
func NewApp(repo ChatRepository, users UserGetter, clock clockwork.Clock, defaultPageSize int) *App {
	return &App{
		repo:            repo,
		users:           users,
		clock:           clock,
		defaultPageSize: defaultPageSize,
	}
}

// CreateDirectRoom returns the direct room for the given pair, creating it
// when absent. At most one direct room exists per unordered pair.
func (a *App) CreateDirectRoom(ctx context.Context, currentUserID, otherUserID uuid.UUID) (*models.ChatRoom, bool, error) {
	if currentUserID == otherUserID {
		return nil, false, apperr.Validationf("cannot open a direct chat with yourself")
	}
	if _, err := a.users.GetUser(ctx, otherUserID); err != nil {
		return nil, false, err
	}

	existing, err := a.repo.FindDirectRoom(ctx, currentUserID, otherUserID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, false, err
	}

	room := &models.ChatRoom{
		ID:        uuid.New(),
		Type:      models.ChatRoomTypeDirect,
		CreatedAt: a.clock.Now(),
	}
	if err := a.repo.CreateRoom(ctx, room, []uuid.UUID{currentUserID, otherUserID}); err != nil {
		return nil, false, err
	}
	return room, true, nil
}

// CreateGroupRoom creates a teammate or event room with initial members.
func (a *App) CreateGroupRoom(ctx context.Context, roomType models.ChatRoomType, name string, participantIDs []uuid.UUID) (*models.ChatRoom, error) {
	room := &models.ChatRoom{
		ID:        uuid.New(),
		Type:      roomType,
		Name:      name,
		CreatedAt: a.clock.Now(),
	}
	if err := a.repo.CreateRoom(ctx, room, participantIDs); err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoom retrieves a room with its participants.
func (a *App) GetRoom(ctx context.Context, id uuid.UUID) (*models.ChatRoom, error) {
	return a.repo.GetRoom(ctx, id)
}

// ListRooms retrieves a user's rooms ordered by most recent activity.
func (a *App) ListRooms(ctx context.Context, userID uuid.UUID) ([]models.ChatRoom, error) {
	return a.repo.ListRoomsForUser(ctx, userID)
}

// AddParticipant adds a user to a room. Conflict when already a member.
func (a *App) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) (*models.ChatRoom, error) {
	if _, err := a.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if _, err := a.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	already, err := a.repo.IsParticipant(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, apperr.Conflictf("user is already a participant")
	}
	if err := a.repo.AddParticipant(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return a.repo.GetRoom(ctx, roomID)
}

// EnsureParticipant adds a user to a room if absent; idempotent. Used by
// the teammate-approval and event-join flows.
func (a *App) EnsureParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	return a.repo.AddParticipant(ctx, roomID, userID)
}

// RemoveParticipant removes a user from a room; removing the last member
// deletes the room and its messages.
func (a *App) RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) (roomDeleted bool, err error) {
	if _, err := a.repo.GetRoom(ctx, roomID); err != nil {
		return false, err
	}
	deleted, err := a.repo.RemoveParticipant(ctx, roomID, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Info().Str("room_id", roomID.String()).Msg("chat room deleted with last participant")
	}
	return deleted, nil
}

// ListMessages retrieves a page of history in chronological order. The
// query walks newest-first from the `before` cursor, then the page is
// reversed so clients render oldest-to-newest.
func (a *App) ListMessages(ctx context.Context, roomID uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	if _, err := a.repo.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = a.defaultPageSize
	}

	messages, err := a.repo.ListMessages(ctx, ListMessagesRequest{
		RoomID: roomID,
		Before: before,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// SendMessage validates and persists a submitted message: the room must
// exist and the sender must be one of its participants. The persisted
// record carries a server-assigned id and createdAt; the client timestamp
// is preserved as-is.
func (a *App) SendMessage(ctx context.Context, req SendMessageRequest) (*models.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperr.Validationf("message content is empty")
	}
	if _, err := a.repo.GetRoom(ctx, req.RoomID); err != nil {
		return nil, err
	}
	member, err := a.repo.IsParticipant(ctx, req.RoomID, req.SenderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, apperr.Forbiddenf("sender is not a participant of this room")
	}

	msg := &models.Message{
		ID:        uuid.New(),
		RoomID:    req.RoomID,
		SenderID:  req.SenderID,
		Content:   req.Content,
		Timestamp: req.Timestamp,
		CreatedAt: a.clock.Now(),
		IsRead:    false,
	}
	if err := a.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	log.Debug().
		Str("message_id", msg.ID.String()).
		Str("room_id", msg.RoomID.String()).
		Str("sender_id", msg.SenderID.String()).
		Msg("message persisted")
	return msg, nil
}

// MarkMessageRead flags a message as read by a recipient. A sender marking
// their own message is a no-op: no state change and no broadcast.
func (a *App) MarkMessageRead(ctx context.Context, messageID, userID uuid.UUID) (*models.Message, bool, error) {
	msg, err := a.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, false, err
	}
	if msg.SenderID == userID {
		return msg, false, nil
	}
	if err := a.repo.MarkRead(ctx, messageID); err != nil {
		return nil, false, fmt.Errorf("failed to mark message read: %w", err)
	}
	msg.IsRead = true
	return msg, true, nil
}
