package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rizkyyjun/sportmate/internal/auth"
)

// Registry maps room ids to the set of currently-connected sessions. It is
// pure in-process state, rebuilt from zero on restart; clients rejoin their
// rooms after every reconnect. Registry membership governs live delivery
// only — send authorization is checked against persisted room membership by
// the message pipeline.
type Registry struct {
	rooms map[uuid.UUID]map[*Session]bool
	mu    sync.RWMutex

	upgrader websocket.Upgrader
	config   SessionConfig

	broadcastCh chan broadcastMessage
}

// Session represents one live WebSocket connection. Send is never closed;
// teardown closes done instead, so a reply racing with removal lands in a
// select case rather than a panic on a closed channel.
type Session struct {
	ID       string
	Identity *auth.Identity
	Conn     *websocket.Conn
	Send     chan []byte
	registry *Registry

	// joined tracks the rooms this session is registered in, so a
	// disconnect can remove it from all of them.
	joined map[uuid.UUID]bool

	done      chan struct{}
	closeOnce sync.Once

	ConnectedAt time.Time

	onMessage func(s *Session, raw []byte)
}

// SessionConfig holds per-connection transport settings.
type SessionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

type broadcastMessage struct {
	roomID uuid.UUID
	event  ServerEvent
}

// DefaultSessionConfig returns the default WebSocket configuration. The
// 60s ping is an advisory keep-alive; the transport's pong handler resets
// the read deadline and governs actual disconnection.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     120 * time.Second,
		PingInterval:    60 * time.Second,
		MaxMessageSize:  8192,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// NewRegistry creates a new room registry.
func NewRegistry(config SessionConfig) *Registry {
	return &Registry{
		rooms: make(map[uuid.UUID]map[*Session]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcastMessage, 1000),
	}
}

// Start processes broadcast messages until ctx is cancelled. Broadcasts
// flow through a single goroutine, so two persisted messages for the same
// room reach every member in the same order.
func (r *Registry) Start(ctx context.Context) {
	log.Info().Msg("room registry started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("room registry shutting down")
			return
		case message := <-r.broadcastCh:
			r.handleBroadcast(message)
		}
	}
}

// Upgrade promotes an authenticated HTTP request to a live session and
// starts its read/write pumps. onMessage is invoked for every client frame.
func (r *Registry) Upgrade(w http.ResponseWriter, req *http.Request, identity *auth.Identity, onMessage func(s *Session, raw []byte)) (*Session, error) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:          uuid.New().String(),
		Identity:    identity,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		registry:    r,
		joined:      make(map[uuid.UUID]bool),
		done:        make(chan struct{}),
		ConnectedAt: time.Now(),
		onMessage:   onMessage,
	}

	go session.writePump()
	go session.readPump()

	log.Info().
		Str("session_id", session.ID).
		Str("user_id", identity.UserID.String()).
		Msg("live session established")
	return session, nil
}

// Join adds a session to a room's fanout set; idempotent.
func (r *Registry) Join(roomID uuid.UUID, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[*Session]bool)
	}
	r.rooms[roomID][s] = true
	s.joined[roomID] = true

	log.Debug().
		Str("session_id", s.ID).
		Str("room_id", roomID.String()).
		Int("room_sessions", len(r.rooms[roomID])).
		Msg("session joined room")
}

// Leave removes a session from a room's fanout set; safe if absent.
func (r *Registry) Leave(roomID uuid.UUID, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(roomID, s)
}

func (r *Registry) leaveLocked(roomID uuid.UUID, s *Session) {
	if sessions, ok := r.rooms[roomID]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(r.rooms, roomID)
		}
	}
	delete(s.joined, roomID)
}

// removeSession drops a session from every room it joined and signals its
// pumps to exit. Safe to call from any goroutine, any number of times.
func (r *Registry) removeSession(s *Session) {
	r.mu.Lock()
	if s.joined != nil {
		for roomID := range s.joined {
			r.leaveLocked(roomID, s)
		}
		s.joined = nil

		log.Info().
			Str("session_id", s.ID).
			Str("user_id", s.Identity.UserID.String()).
			Msg("session unregistered")
	}
	r.mu.Unlock()

	s.closeOnce.Do(func() {
		close(s.done)
		if s.Conn != nil {
			s.Conn.Close()
		}
	})
}

// BroadcastToRoom queues an event for every live session in a room.
func (r *Registry) BroadcastToRoom(roomID uuid.UUID, event ServerEvent) {
	select {
	case r.broadcastCh <- broadcastMessage{roomID: roomID, event: event}:
	default:
		log.Warn().Str("room_id", roomID.String()).Msg("broadcast channel full, dropping message")
	}
}

func (r *Registry) handleBroadcast(message broadcastMessage) {
	r.mu.RLock()
	sessions, exists := r.rooms[message.roomID]
	if !exists {
		r.mu.RUnlock()
		return
	}
	targets := make([]*Session, 0, len(sessions))
	for s := range sessions {
		targets = append(targets, s)
	}
	r.mu.RUnlock()

	data, err := json.Marshal(message.event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event for broadcast")
		return
	}

	for _, s := range targets {
		select {
		case <-s.done:
		case s.Send <- data:
		default:
			// Slow or dead consumer; drop the session.
			log.Warn().
				Str("session_id", s.ID).
				Str("user_id", s.Identity.UserID.String()).
				Msg("session send buffer full, closing connection")
			r.removeSession(s)
		}
	}

	log.Debug().
		Str("event_type", string(message.event.Type)).
		Str("room_id", message.roomID.String()).
		Int("sessions", len(targets)).
		Msg("event broadcasted")
}

// Stats returns counters about live rooms and sessions.
func (r *Registry) Stats() (totalSessions, activeRooms int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[*Session]bool)
	for _, sessions := range r.rooms {
		for s := range sessions {
			seen[s] = true
		}
	}
	return len(seen), len(r.rooms)
}

// SendEvent delivers an event to this session only. Error events always
// travel this path so they never reach other room members. A removed
// session drops the event instead of panicking on a dead channel.
func (s *Session) SendEvent(event ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal session event")
		return
	}
	select {
	case <-s.done:
	case s.Send <- data:
	default:
		log.Warn().Str("session_id", s.ID).Msg("session send buffer full, dropping event")
	}
}

// writePump drains the send queue and emits the keep-alive pings.
func (s *Session) writePump() {
	ticker := time.NewTicker(s.registry.config.PingInterval)
	defer func() {
		ticker.Stop()
		s.registry.removeSession(s)
	}()

	for {
		select {
		case <-s.done:
			s.Conn.SetWriteDeadline(time.Now().Add(s.registry.config.WriteTimeout))
			s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-s.Send:
			s.Conn.SetWriteDeadline(time.Now().Add(s.registry.config.WriteTimeout))
			if err := s.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error().Err(err).Str("session_id", s.ID).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(s.registry.config.WriteTimeout))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Error().Err(err).Str("session_id", s.ID).Msg("failed to send ping")
				return
			}
		}
	}
}

// readPump feeds client frames to the dispatcher until the connection drops.
func (s *Session) readPump() {
	defer s.registry.removeSession(s)

	s.Conn.SetReadLimit(s.registry.config.MaxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(s.registry.config.ReadTimeout))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(s.registry.config.ReadTimeout))
		return nil
	})

	for {
		_, message, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("session_id", s.ID).Msg("unexpected close error")
			}
			break
		}
		if s.onMessage != nil {
			s.onMessage(s, message)
		}
		s.Conn.SetReadDeadline(time.Now().Add(s.registry.config.ReadTimeout))
	}
}
