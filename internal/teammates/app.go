package teammates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/models"
)

// TeammatesRepository defines what the app layer needs from the repository.
type TeammatesRepository interface {
	CreateRequest(ctx context.Context, req *models.TeammateRequest) error
	GetRequest(ctx context.Context, id uuid.UUID) (*models.TeammateRequest, error)
	ListActiveRequests(ctx context.Context, filter ListRequestsFilter) ([]models.TeammateRequest, error)
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	CreateParticipant(ctx context.Context, p *models.TeammateParticipant) error
	GetParticipant(ctx context.Context, requestID, participantID uuid.UUID) (*models.TeammateParticipant, error)
	FindParticipantByUser(ctx context.Context, requestID, userID uuid.UUID) (*models.TeammateParticipant, error)
	UpdateParticipantStatus(ctx context.Context, participantID uuid.UUID, status models.ParticipantStatus) error
	DeleteParticipant(ctx context.Context, participantID uuid.UUID) error
	CountApproved(ctx context.Context, requestID uuid.UUID) (int, error)
}

// ChatRooms is the slice of the chat application the coordination flows use.
type ChatRooms interface {
	CreateGroupRoom(ctx context.Context, roomType models.ChatRoomType, name string, participantIDs []uuid.UUID) (*models.ChatRoom, error)
	EnsureParticipant(ctx context.Context, roomID, userID uuid.UUID) error
}

// App handles teammate request business logic: the two-phase join flow
// where the creator approves or rejects each applicant.
type App struct {
	repo  TeammatesRepository
	chat  ChatRooms
	clock clockwork.Clock
}

// NewApp creates a new teammates App.
func NewApp(repo TeammatesRepository, chat ChatRooms, clock clockwork.Clock) *App {
	return &App{repo: repo, chat: chat, clock: clock}
}

// Create opens a teammate request and its chat room, with the creator as
// the room's first participant.
func (a *App) Create(ctx context.Context, creatorID uuid.UUID, req CreateRequestRequest) (*models.TeammateRequest, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	roomName := fmt.Sprintf("%s - %s %s", req.Sport, req.Date, req.Time)
	room, err := a.chat.CreateGroupRoom(ctx, models.ChatRoomTypeTeammate, roomName, []uuid.UUID{creatorID})
	if err != nil {
		return nil, fmt.Errorf("failed to create teammate chat room: %w", err)
	}

	now := a.clock.Now()
	request := &models.TeammateRequest{
		ID:                   uuid.New(),
		CreatorID:            creatorID,
		Sport:                req.Sport,
		Location:             req.Location,
		Date:                 req.Date,
		Time:                 req.Time,
		Description:          req.Description,
		RequiredParticipants: req.RequiredParticipants,
		IsActive:             true,
		ChatRoomID:           room.ID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := a.repo.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", request.ID.String()).
		Str("creator_id", creatorID.String()).
		Str("sport", request.Sport).
		Msg("teammate request created")
	return request, nil
}

// List retrieves active requests, optionally filtered by sport and date.
func (a *App) List(ctx context.Context, filter ListRequestsFilter) ([]models.TeammateRequest, error) {
	return a.repo.ListActiveRequests(ctx, filter)
}

// Get retrieves a request with its participants.
func (a *App) Get(ctx context.Context, id uuid.UUID) (*models.TeammateRequest, error) {
	return a.repo.GetRequest(ctx, id)
}

// Delete removes a request; only the creator may do so.
func (a *App) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	request, err := a.repo.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	if request.CreatorID != actorID {
		return apperr.Forbiddenf("only the creator can delete this request")
	}
	return a.repo.DeleteRequest(ctx, id)
}

// Join records a pending join request. The creator cannot join their own
// request, and a user cannot apply twice.
func (a *App) Join(ctx context.Context, requestID, userID uuid.UUID, message string) (*models.TeammateParticipant, error) {
	request, err := a.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsActive {
		return nil, apperr.InvalidStatef("teammate request is no longer active")
	}
	if request.CreatorID == userID {
		return nil, apperr.InvalidStatef("creator cannot join their own request")
	}
	for _, p := range request.Participants {
		if p.UserID == userID {
			return nil, apperr.Conflictf("user has already requested to join")
		}
	}

	participant := &models.TeammateParticipant{
		ID:        uuid.New(),
		UserID:    userID,
		RequestID: requestID,
		Status:    models.ParticipantStatusPending,
		Message:   message,
		CreatedAt: a.clock.Now(),
	}
	if err := a.repo.CreateParticipant(ctx, participant); err != nil {
		return nil, err
	}

	log.Info().
		Str("request_id", requestID.String()).
		Str("user_id", userID.String()).
		Msg("teammate join request created")
	return participant, nil
}

// UpdateParticipantStatus applies the creator's decision on one applicant.
// Approval is capped at the request's required participant count, and an
// approved user is added to the request's chat room. Re-applying the same
// status is a no-op so retried decisions stay safe.
func (a *App) UpdateParticipantStatus(ctx context.Context, requestID, participantID, actorID uuid.UUID, status models.ParticipantStatus) (*models.TeammateParticipant, error) {
	if status != models.ParticipantStatusApproved && status != models.ParticipantStatusRejected {
		return nil, apperr.Validationf("status must be approved or rejected")
	}

	request, err := a.repo.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.CreatorID != actorID {
		return nil, apperr.Forbiddenf("only the creator can update participant status")
	}

	participant, err := a.repo.GetParticipant(ctx, requestID, participantID)
	if err != nil {
		return nil, err
	}
	if participant.Status == status {
		return participant, nil
	}

	if status == models.ParticipantStatusApproved {
		approved, err := a.repo.CountApproved(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if approved >= request.RequiredParticipants {
			return nil, apperr.Conflictf("request already has %d approved participants", approved)
		}
	}

	if err := a.repo.UpdateParticipantStatus(ctx, participantID, status); err != nil {
		return nil, err
	}
	participant.Status = status

	if status == models.ParticipantStatusApproved {
		if err := a.chat.EnsureParticipant(ctx, request.ChatRoomID, participant.UserID); err != nil {
			return nil, fmt.Errorf("failed to add approved participant to chat room: %w", err)
		}
	}

	log.Info().
		Str("request_id", requestID.String()).
		Str("participant_id", participantID.String()).
		Str("status", string(status)).
		Msg("teammate participant status updated")
	return participant, nil
}

// Leave withdraws a user's join request.
func (a *App) Leave(ctx context.Context, requestID, userID uuid.UUID) error {
	participant, err := a.repo.FindParticipantByUser(ctx, requestID, userID)
	if err != nil {
		return err
	}
	return a.repo.DeleteParticipant(ctx, participant.ID)
}

func validateCreate(req CreateRequestRequest) error {
	if strings.TrimSpace(req.Sport) == "" {
		return apperr.Validationf("sport is required")
	}
	if strings.TrimSpace(req.Location) == "" {
		return apperr.Validationf("location is required")
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return apperr.Validationf("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", req.Time); err != nil {
		return apperr.Validationf("time must be HH:MM")
	}
	if req.RequiredParticipants < 1 {
		return apperr.Validationf("required_participants must be at least 1")
	}
	return nil
}
