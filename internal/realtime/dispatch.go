package realtime

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/charlesng35/chattu/internal/monitoring"
	"github.com/charlesng35/chattu/pkg/validator"
)

type eventHandler func(ctx context.Context, s *Session, data json.RawMessage) error

func defaultHandlers() map[string]eventHandler {
	return map[string]eventHandler{
		EventNewMessage:  handleNewMessage,
		EventTypingStart: handleTyping(EventTypingStart),
		EventTypingStop:  handleTyping(EventTypingStop),
		EventChatJoined:  handleChatJoined,
		EventChatLeft:    handleChatLeft,
		EventPing:        handlePing,
	}
}

func handleNewMessage(ctx context.Context, s *Session, data json.RawMessage) error {
	var event newMessageEvent
	if err := decodePayload(data, &event); err != nil {
		return err
	}
	_, err := s.hub.ingest.Ingest(ctx, IngestParams{
		ChatID:  event.ChatID,
		Members: event.Members,
		Content: event.text(),
		Sender:  s.identity,
	})
	return err
}

func handleTyping(name string) eventHandler {
	return func(_ context.Context, s *Session, data json.RawMessage) error {
		var event typingEvent
		if err := decodePayload(data, &event); err != nil {
			return err
		}
		s.hub.router.DeliverExcept(s.handle, event.Members, name, ChatPayload{ChatID: event.ChatID})
		return nil
	}
}

func handleChatJoined(_ context.Context, s *Session, data json.RawMessage) error {
	event, err := decodePresence(s, data)
	if err != nil {
		return err
	}
	snapshot, _ := s.hub.state.markPresent(s.identity.ID)
	monitoring.SetOnlineUsers(len(snapshot))
	s.hub.router.Deliver(event.Members, EventOnlineUsers, snapshot)
	return nil
}

func handleChatLeft(_ context.Context, s *Session, data json.RawMessage) error {
	event, err := decodePresence(s, data)
	if err != nil {
		return err
	}
	snapshot := s.hub.state.markAbsent(s.identity.ID)
	monitoring.SetOnlineUsers(len(snapshot))
	s.hub.router.Deliver(event.Members, EventOnlineUsers, snapshot)
	return nil
}

func handlePing(_ context.Context, s *Session, _ json.RawMessage) error {
	s.hub.router.Reply(s.handle, EventPong, nil)
	return nil
}

// decodePresence rejects payloads naming a user other than the session's.
func decodePresence(s *Session, data json.RawMessage) (presenceEvent, error) {
	var event presenceEvent
	if err := decodePayload(data, &event); err != nil {
		return event, err
	}
	if event.UserID != "" && event.UserID != s.identity.ID {
		return event, malformed("userId %q does not match the connected user", event.UserID)
	}
	return event, nil
}

func decodePayload(data json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return malformed("missing data")
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return malformed("invalid data: %v", err)
	}
	if err := validator.ValidateStruct(dst); err != nil {
		return malformed("%v", err)
	}
	return nil
}
