package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/charlesng35/chattu/internal/monitoring"
)

// SessionState is the lifecycle position of a session.
type SessionState int32

const (
	SessionHandshaking SessionState = iota
	SessionActive
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionHandshaking:
		return "handshaking"
	case SessionActive:
		return "active"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one authenticated connection between Connect and Close.
type Session struct {
	hub      *Hub
	identity Identity
	handle   Handle
	state    atomic.Int32
	once     sync.Once
}

func newSession(hub *Hub, identity Identity, handle Handle) *Session {
	return &Session{hub: hub, identity: identity, handle: handle}
}

func (s *Session) activate() {
	s.state.CompareAndSwap(int32(SessionHandshaking), int32(SessionActive))
}

func (s *Session) Identity() Identity  { return s.identity }
func (s *Session) Handle() Handle      { return s.handle }
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

// HandleFrame decodes one wire frame and dispatches it. Malformed frames and
// events are dropped without a reply.
func (s *Session) HandleFrame(ctx context.Context, frame []byte) {
	var in inboundEnvelope
	if err := json.Unmarshal(frame, &in); err != nil {
		s.drop("", malformed("invalid envelope: %v", err))
		return
	}
	if err := s.Dispatch(ctx, in.Event, in.Data); err != nil {
		s.drop(in.Event, err)
	}
}

// Dispatch runs the handler registered for event. Unknown events are ignored.
func (s *Session) Dispatch(ctx context.Context, event string, data json.RawMessage) error {
	if s.State() != SessionActive {
		return ErrSessionInactive
	}
	handler, ok := s.hub.handlers[event]
	if !ok {
		s.hub.log.Debug("ignoring unknown event", zap.String("event", event), zap.String("user_id", s.identity.ID))
		monitoring.RecordRealtimeDropped(event, "unknown")
		return nil
	}
	return handler(ctx, s, data)
}

// Close unregisters the session once. When this session still held the
// user's registry entry the user goes offline and every remaining
// connection receives the new online snapshot.
func (s *Session) Close() {
	s.once.Do(func() {
		s.state.Store(int32(SessionClosed))
		s.handle.Close()

		hub := s.hub
		hub.untrack(s)
		released, snapshot := hub.state.release(s.identity.ID, s.handle)
		hub.active.Add(-1)
		monitoring.RecordRealtimeConnection(-1)

		if !released {
			hub.log.Debug("superseded session closed", zap.String("user_id", s.identity.ID), zap.String("handle_id", s.handle.ID()))
			return
		}
		monitoring.SetOnlineUsers(len(snapshot))
		hub.router.BroadcastExcept(s.handle, EventOnlineUsers, snapshot)
		hub.log.Debug("session disconnected", zap.String("user_id", s.identity.ID), zap.Int("online", len(snapshot)))
	})
}

func (s *Session) drop(event string, err error) {
	reason := "error"
	switch {
	case errors.Is(err, ErrMalformedEvent):
		reason = "malformed"
	case errors.Is(err, ErrSessionInactive):
		reason = "inactive"
	}
	s.hub.log.Debug("dropping event",
		zap.String("event", event),
		zap.String("user_id", s.identity.ID),
		zap.String("reason", reason),
		zap.Error(err),
	)
	monitoring.RecordRealtimeDropped(event, reason)
}
