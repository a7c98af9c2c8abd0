package events

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

const defaultPageLimit = 20

// EventsRepository defines what the app layer needs from the repository.
type EventsRepository interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEvents(ctx context.Context, req ListEventsRequest) ([]EventSummary, int, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	CreateParticipant(ctx context.Context, p *models.EventParticipant) error
	FindParticipantByUser(ctx context.Context, eventID, userID uuid.UUID) (*models.EventParticipant, error)
	DeleteParticipant(ctx context.Context, participantID uuid.UUID) error
	CountAttending(ctx context.Context, eventID uuid.UUID) (int, error)
}

// ChatRooms is the slice of the chat application the event flows use.
type ChatRooms interface {
	CreateGroupRoom(ctx context.Context, roomType models.ChatRoomType, name string, participantIDs []uuid.UUID) (*models.ChatRoom, error)
	EnsureParticipant(ctx context.Context, roomID, userID uuid.UUID) error
}

// App handles event business logic: single-phase joining with the organizer
// implicitly attending.
type App struct {
	repo  EventsRepository
	chat  ChatRooms
	clock clockwork.Clock
}

// NewApp creates a new events App.
func NewApp(repo EventsRepository, chat ChatRooms, clock clockwork.Clock) *App {
	return &App{repo: repo, chat: chat, clock: clock}
}

// Create organizes an event and its chat room, with the organizer as the
// room's first participant.
func (a *App) Create(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*models.Event, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	room, err := a.chat.CreateGroupRoom(ctx, models.ChatRoomTypeEvent, req.Name, []uuid.UUID{organizerID})
	if err != nil {
		return nil, fmt.Errorf("failed to create event chat room: %w", err)
	}

	now := a.clock.Now()
	event := &models.Event{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		Sport:           req.Sport,
		Location:        req.Location,
		Date:            req.Date,
		Time:            req.Time,
		MaxParticipants: req.MaxParticipants,
		OrganizerID:     organizerID,
		FieldID:         req.FieldID,
		ChatRoomID:      room.ID,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := a.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", event.ID.String()).
		Str("organizer_id", organizerID.String()).
		Str("sport", event.Sport).
		Msg("event created")
	return event, nil
}

// List retrieves one page of active events.
func (a *App) List(ctx context.Context, req ListEventsRequest) (*ListEventsResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = defaultPageLimit
	}

	events, total, err := a.repo.ListEvents(ctx, req)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []EventSummary{}
	}
	return &ListEventsResponse{
		Events: events,
		Total:  total,
		Page:   req.Page,
		Limit:  req.Limit,
	}, nil
}

// Get retrieves an event with its participants.
func (a *App) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return a.repo.GetEvent(ctx, id)
}

// Delete removes an event; only the organizer may do so.
func (a *App) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if event.OrganizerID != actorID {
		return apperr.Forbiddenf("only the organizer can delete this event")
	}
	return a.repo.DeleteEvent(ctx, id)
}

// Join attends an event. The organizer is always attending and cannot join;
// joining twice is a conflict; a full event rejects further joins. The
// joined user is added to the event's chat room idempotently.
func (a *App) Join(ctx context.Context, eventID, userID uuid.UUID, notes string) (*models.EventParticipant, error) {
	event, err := a.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, apperr.InvalidStatef("event is no longer active")
	}
	if event.OrganizerID == userID {
		return nil, apperr.InvalidStatef("organizer is already attending")
	}
	for _, p := range event.Participants {
		if p.UserID == userID {
			return nil, apperr.Conflictf("user has already joined this event")
		}
	}

	if event.MaxParticipants > 0 {
		attending, err := a.repo.CountAttending(ctx, eventID)
		if err != nil {
			return nil, err
		}
		// The organizer occupies one slot.
		if attending+1 >= event.MaxParticipants {
			return nil, apperr.Conflictf("event is full")
		}
	}

	participant := &models.EventParticipant{
		ID:          uuid.New(),
		UserID:      userID,
		EventID:     eventID,
		IsAttending: true,
		Notes:       notes,
		CreatedAt:   a.clock.Now(),
	}
	if err := a.repo.CreateParticipant(ctx, participant); err != nil {
		return nil, err
	}
	if err := a.chat.EnsureParticipant(ctx, event.ChatRoomID, userID); err != nil {
		return nil, fmt.Errorf("failed to add participant to event chat room: %w", err)
	}

	log.Info().
		Str("event_id", eventID.String()).
		Str("user_id", userID.String()).
		Msg("user joined event")
	return participant, nil
}

// Leave withdraws a user's attendance. Chat room membership is kept so the
// user can still read the conversation.
func (a *App) Leave(ctx context.Context, eventID, userID uuid.UUID) error {
	event, err := a.repo.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.OrganizerID == userID {
		return apperr.InvalidStatef("organizer cannot leave their own event")
	}

	participant, err := a.repo.FindParticipantByUser(ctx, eventID, userID)
	if err != nil {
		return err
	}
	return a.repo.DeleteParticipant(ctx, participant.ID)
}

func validateCreate(req CreateEventRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validationf("name is required")
	}
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
	if req.MaxParticipants < 0 {
		return apperr.Validationf("max_participants cannot be negative")
	}
	return nil
}
