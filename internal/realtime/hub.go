package realtime

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/charlesng35/chattu/internal/monitoring"
)

// Options configures a Hub.
type Options struct {
	State          *State
	Conn           ConnOptions
	AllowedOrigins []string
	Sinks          []NamedSink
	PersistTimeout time.Duration
	Clock          func() time.Time
	NewID          func() string
	Logger         *zap.Logger
}

// Hub owns the registry and presence state and drives every session through
// connect, dispatch and disconnect.
type Hub struct {
	state    *State
	router   *Router
	ingest   *Ingestor
	handlers map[string]eventHandler
	upgrader websocket.Upgrader
	connOpts ConnOptions
	log      *zap.Logger

	sessionsMu sync.Mutex
	sessions   map[*Session]struct{}

	active  atomic.Int64
	closing atomic.Bool
}

// NewHub constructs a hub. A nil Options.State gets a fresh one.
func NewHub(opts Options) *Hub {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	state := opts.State
	if state == nil {
		state = NewState()
	}
	router := NewRouter(state, log)
	origins := newOriginPolicy(opts.AllowedOrigins)

	hub := &Hub{
		state:  state,
		router: router,
		ingest: NewIngestor(router, IngestOptions{
			Sinks:   opts.Sinks,
			Timeout: opts.PersistTimeout,
			Now:     opts.Clock,
			NewID:   opts.NewID,
			Logger:  log,
		}),
		handlers: defaultHandlers(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     origins.check,
		},
		connOpts: opts.Conn.withDefaults(),
		log:      log,
		sessions: make(map[*Session]struct{}),
	}
	return hub
}

func (h *Hub) State() *State            { return h.state }
func (h *Hub) Router() *Router          { return h.router }
func (h *Hub) Ingestor() *Ingestor      { return h.ingest }
func (h *Hub) ActiveConnections() int64 { return h.active.Load() }

// OnlineUsers returns the current online snapshot.
func (h *Hub) OnlineUsers() []string {
	return h.state.OnlineUsers()
}

// Serve upgrades an authenticated request and runs the session until the
// socket closes. Authentication must already have succeeded.
func (h *Hub) Serve(identity Identity, w http.ResponseWriter, r *http.Request) {
	if h.closing.Load() {
		http.Error(w, ErrHubClosed.Error(), http.StatusServiceUnavailable)
		return
	}
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("user_id", identity.ID), zap.Error(err))
		return
	}

	conn := NewConn(socket, identity.ID, h.connOpts, h.log)
	session, err := h.Connect(identity, conn)
	if err != nil {
		h.log.Warn("session rejected", zap.String("user_id", identity.ID), zap.Error(err))
		conn.Close()
		_ = socket.Close()
		return
	}
	defer session.Close()

	ctx := r.Context()
	conn.Run(func(frame []byte) {
		session.HandleFrame(ctx, frame)
	})
}

// Connect registers handle for identity and returns the active session.
// The user's previous handle, if any, stops receiving events.
func (h *Hub) Connect(identity Identity, handle Handle) (*Session, error) {
	if h.closing.Load() {
		return nil, ErrHubClosed
	}
	if strings.TrimSpace(identity.ID) == "" || handle == nil {
		return nil, ErrAuthFailure
	}

	session := newSession(h, identity, handle)
	if !h.track(session) {
		return nil, ErrHubClosed
	}
	if previous := h.state.register(identity.ID, handle); previous != nil {
		h.log.Debug("connection superseded",
			zap.String("user_id", identity.ID),
			zap.String("previous_handle", previous.ID()),
			zap.String("handle_id", handle.ID()),
		)
	}
	session.activate()

	h.active.Add(1)
	monitoring.RecordRealtimeConnection(1)
	h.log.Debug("session connected", zap.String("user_id", identity.ID), zap.String("handle_id", handle.ID()))
	return session, nil
}

// Emit pushes a server event to the listed users. Only refetch-chats,
// new-request and alert may be emitted.
func (h *Hub) Emit(event string, userIDs []string, data any) (DeliveryReport, error) {
	if !Emittable(event) {
		return DeliveryReport{}, ErrEventNotAllowed
	}
	return h.router.Deliver(userIDs, event, data), nil
}

// track adds session to the live set unless shutdown has started.
func (h *Hub) track(session *Session) bool {
	h.sessionsMu.Lock()
	defer h.sessionsMu.Unlock()
	if h.closing.Load() {
		return false
	}
	h.sessions[session] = struct{}{}
	return true
}

func (h *Hub) untrack(session *Session) {
	h.sessionsMu.Lock()
	delete(h.sessions, session)
	h.sessionsMu.Unlock()
}

// ReconcilePresence drops online ids without a registry entry.
func (h *Hub) ReconcilePresence() []string {
	dropped := h.state.Reconcile()
	if len(dropped) > 0 {
		monitoring.SetOnlineUsers(len(h.state.OnlineUsers()))
	}
	return dropped
}

// Shutdown stops accepting sessions, closes the handle of every live
// session, superseded ones included, and waits for pending writes until ctx
// expires.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.sessionsMu.Lock()
	h.closing.Store(true)
	live := make([]*Session, 0, len(h.sessions))
	for session := range h.sessions {
		live = append(live, session)
	}
	h.sessionsMu.Unlock()

	for _, session := range live {
		session.handle.Close()
	}

	done := make(chan struct{})
	go func() {
		h.ingest.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
