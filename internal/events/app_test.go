package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizkyyjun/sportmate/internal/apperr"
	"github.com/rizkyyjun/sportmate/internal/models"
)

type fakeEventsRepo struct {
	events       map[uuid.UUID]*models.Event
	participants map[uuid.UUID]*models.EventParticipant
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{
		events:       make(map[uuid.UUID]*models.Event),
		participants: make(map[uuid.UUID]*models.EventParticipant),
	}
}

func (f *fakeEventsRepo) CreateEvent(ctx context.Context, e *models.Event) error {
	copied := *e
	f.events[e.ID] = &copied
	return nil
}

func (f *fakeEventsRepo) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, apperr.NotFoundf("event %s", id)
	}
	copied := *e
	copied.Participants = nil
	for _, p := range f.participants {
		if p.EventID == id {
			copied.Participants = append(copied.Participants, *p)
		}
	}
	return &copied, nil
}

func (f *fakeEventsRepo) ListEvents(ctx context.Context, req ListEventsRequest) ([]EventSummary, int, error) {
	var out []EventSummary
	for id, e := range f.events {
		if !e.IsActive {
			continue
		}
		if req.Sport != "" && e.Sport != req.Sport {
			continue
		}
		if req.Date != "" && e.Date != req.Date {
			continue
		}
		count, _ := f.CountAttending(ctx, id)
		out = append(out, EventSummary{
			ID: e.ID, Name: e.Name, Sport: e.Sport, Location: e.Location,
			Date: e.Date, Time: e.Time, MaxParticipants: e.MaxParticipants,
			ParticipantCount: count, OrganizerID: e.OrganizerID,
		})
	}
	return out, len(out), nil
}

func (f *fakeEventsRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.events[id]; !ok {
		return apperr.NotFoundf("event %s", id)
	}
	for pid, p := range f.participants {
		if p.EventID == id {
			delete(f.participants, pid)
		}
	}
	delete(f.events, id)
	return nil
}

func (f *fakeEventsRepo) CreateParticipant(ctx context.Context, p *models.EventParticipant) error {
	copied := *p
	f.participants[p.ID] = &copied
	return nil
}

func (f *fakeEventsRepo) FindParticipantByUser(ctx context.Context, eventID, userID uuid.UUID) (*models.EventParticipant, error) {
	for _, p := range f.participants {
		if p.EventID == eventID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, apperr.NotFoundf("user %s is not attending event %s", userID, eventID)
}

func (f *fakeEventsRepo) DeleteParticipant(ctx context.Context, participantID uuid.UUID) error {
	if _, ok := f.participants[participantID]; !ok {
		return apperr.NotFoundf("participant %s", participantID)
	}
	delete(f.participants, participantID)
	return nil
}

func (f *fakeEventsRepo) CountAttending(ctx context.Context, eventID uuid.UUID) (int, error) {
	count := 0
	for _, p := range f.participants {
		if p.EventID == eventID && p.IsAttending {
			count++
		}
	}
	return count, nil
}

type fakeChatRooms struct {
	rooms map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeChatRooms() *fakeChatRooms {
	return &fakeChatRooms{rooms: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (f *fakeChatRooms) CreateGroupRoom(ctx context.Context, roomType models.ChatRoomType, name string, participantIDs []uuid.UUID) (*models.ChatRoom, error) {
	room := &models.ChatRoom{ID: uuid.New(), Type: roomType, Name: name}
	f.rooms[room.ID] = make(map[uuid.UUID]bool)
	for _, id := range participantIDs {
		f.rooms[room.ID][id] = true
	}
	return room, nil
}

func (f *fakeChatRooms) EnsureParticipant(ctx context.Context, roomID, userID uuid.UUID) error {
	f.rooms[roomID][userID] = true
	return nil
}

func newTestEventsApp(t *testing.T) (*App, *fakeChatRooms) {
	t.Helper()
	chat := newFakeChatRooms()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	return NewApp(newFakeEventsRepo(), chat, clock), chat
}

func validEvent() CreateEventRequest {
	return CreateEventRequest{
		Name:            "Sunday Basketball",
		Sport:           "basketball",
		Location:        "GOR Sumantri",
		Date:            "2026-03-22",
		Time:            "08:00",
		MaxParticipants: 3,
	}
}

func TestCreateEvent_OpensChatRoom(t *testing.T) {
	app, chat := newTestEventsApp(t)
	organizer := uuid.New()

	event, err := app.Create(context.Background(), organizer, validEvent())
	require.NoError(t, err)

	assert.True(t, event.IsActive)
	assert.True(t, chat.rooms[event.ChatRoomID][organizer], "organizer joins the room")
}

func TestJoinEvent_OrganizerAndDuplicateRules(t *testing.T) {
	app, chat := newTestEventsApp(t)
	ctx := context.Background()
	organizer := uuid.New()

	event, err := app.Create(ctx, organizer, validEvent())
	require.NoError(t, err)

	_, err = app.Join(ctx, event.ID, organizer, "")
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	player := uuid.New()
	participant, err := app.Join(ctx, event.ID, player, "bringing a ball")
	require.NoError(t, err)
	assert.True(t, participant.IsAttending)
	assert.True(t, chat.rooms[event.ChatRoomID][player], "joined player enters the room")

	_, err = app.Join(ctx, event.ID, player, "")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestJoinEvent_CapacityIncludesOrganizer(t *testing.T) {
	app, _ := newTestEventsApp(t)
	ctx := context.Background()
	organizer := uuid.New()

	event, err := app.Create(ctx, organizer, validEvent())
	require.NoError(t, err)

	// Capacity 3: organizer plus two joiners fill the event.
	_, err = app.Join(ctx, event.ID, uuid.New(), "")
	require.NoError(t, err)
	_, err = app.Join(ctx, event.ID, uuid.New(), "")
	require.NoError(t, err)

	_, err = app.Join(ctx, event.ID, uuid.New(), "")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestLeaveEvent_KeepsChatMembership(t *testing.T) {
	app, chat := newTestEventsApp(t)
	ctx := context.Background()
	organizer := uuid.New()
	player := uuid.New()

	event, err := app.Create(ctx, organizer, validEvent())
	require.NoError(t, err)
	_, err = app.Join(ctx, event.ID, player, "")
	require.NoError(t, err)

	require.NoError(t, app.Leave(ctx, event.ID, player))
	assert.True(t, chat.rooms[event.ChatRoomID][player], "chat membership survives leaving")

	// The slot opens up again.
	_, err = app.Join(ctx, event.ID, player, "")
	assert.NoError(t, err)

	assert.ErrorIs(t, app.Leave(ctx, event.ID, organizer), apperr.ErrInvalidState)
}

func TestDeleteEvent_OrganizerOnly(t *testing.T) {
	app, _ := newTestEventsApp(t)
	ctx := context.Background()
	organizer := uuid.New()

	event, err := app.Create(ctx, organizer, validEvent())
	require.NoError(t, err)

	assert.ErrorIs(t, app.Delete(ctx, event.ID, uuid.New()), apperr.ErrForbidden)
	require.NoError(t, app.Delete(ctx, event.ID, organizer))
}

func TestDeleteEvent_RemovesParticipantRows(t *testing.T) {
	repo := newFakeEventsRepo()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	app := NewApp(repo, newFakeChatRooms(), clock)
	ctx := context.Background()
	organizer := uuid.New()

	event, err := app.Create(ctx, organizer, validEvent())
	require.NoError(t, err)
	_, err = app.Join(ctx, event.ID, uuid.New(), "")
	require.NoError(t, err)

	require.NoError(t, app.Delete(ctx, event.ID, organizer))
	assert.Empty(t, repo.participants, "deleting an event removes its participant rows")
}
