package realtime

import (
	"encoding/json"
	"strings"
)

// Event names carried in the "event" field of the wire envelope.
const (
	EventNewMessage      = "new-message"
	EventNewMessageAlert = "new-message-alert"
	EventTypingStart     = "typing-start"
	EventTypingStop      = "typing-stop"
	EventChatJoined      = "chat-joined"
	EventChatLeft        = "chat-left"
	EventOnlineUsers     = "online-users"
	EventPing            = "ping"
	EventPong            = "pong"

	// Server emitted, triggered by the REST layer.
	EventRefetchChats = "refetch-chats"
	EventNewRequest   = "new-request"
	EventAlert        = "alert"
)

var emittable = map[string]struct{}{
	EventRefetchChats: {},
	EventNewRequest:   {},
	EventAlert:        {},
}

// Emittable reports whether event may be pushed through Hub.Emit.
func Emittable(event string) bool {
	_, ok := emittable[event]
	return ok
}

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type inboundEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Identity is the verified user attached to a connection by the handshake.
type Identity struct {
	ID   string
	Name string
}

// Sender is the author block embedded in outbound messages.
type Sender struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Message is the transient message shape fanned out to chat members.
type Message struct {
	ID        string `json:"_id"`
	Content   string `json:"content"`
	Sender    Sender `json:"sender"`
	Chat      string `json:"chat"`
	CreatedAt string `json:"createdAt"`
}

// NewMessagePayload is the data of an outbound new-message event.
type NewMessagePayload struct {
	ChatID  string  `json:"chatId"`
	Message Message `json:"message"`
}

// ChatPayload is the data of new-message-alert and typing events.
type ChatPayload struct {
	ChatID string `json:"chatId"`
}

type newMessageEvent struct {
	ChatID  string   `json:"chatId" validate:"notblank"`
	Members []string `json:"members" validate:"required,min=1,dive,notblank"`
	Message string   `json:"message"`
	Content string   `json:"content"`
}

func (e newMessageEvent) text() string {
	if message := strings.TrimSpace(e.Message); message != "" {
		return message
	}
	return e.Content
}

type typingEvent struct {
	ChatID  string   `json:"chatId" validate:"notblank"`
	Members []string `json:"members" validate:"required,min=1,dive,notblank"`
}

type presenceEvent struct {
	UserID  string   `json:"userId"`
	Members []string `json:"members" validate:"required,dive,notblank"`
}
