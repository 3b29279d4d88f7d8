package realtime

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/charlesng35/chattu/internal/monitoring"
)

const (
	// MaxMessageLength bounds message content in runes.
	MaxMessageLength = 4000

	defaultPersistTimeout = 5 * time.Second
)

// MessageRecord is the durable form of a fanned-out message.
type MessageRecord struct {
	ID         string
	ChatID     string
	SenderID   string
	SenderName string
	Content    string
	CreatedAt  time.Time
}

// MessageSink persists message records. Implementations must be safe for
// concurrent use.
type MessageSink interface {
	PersistMessage(ctx context.Context, record MessageRecord) error
}

// NamedSink labels a sink for logs and metrics.
type NamedSink struct {
	Name string
	Sink MessageSink
}

// IngestOptions configures an Ingestor.
type IngestOptions struct {
	Sinks   []NamedSink
	Timeout time.Duration
	Now     func() time.Time
	NewID   func() string
	Logger  *zap.Logger
}

// IngestParams describes one inbound message.
type IngestParams struct {
	ChatID  string
	Members []string
	Content string
	Sender  Identity
}

// Ingestor shapes inbound messages, fans them out to chat members and hands
// them to the configured sinks without waiting for the write.
type Ingestor struct {
	router  *Router
	sinks   []NamedSink
	timeout time.Duration
	now     func() time.Time
	newID   func() string
	log     *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewIngestor builds an ingestor delivering through router.
func NewIngestor(router *Router, opts IngestOptions) *Ingestor {
	ing := &Ingestor{
		router:  router,
		timeout: opts.Timeout,
		now:     opts.Now,
		newID:   opts.NewID,
		log:     opts.Logger,
	}
	for _, sink := range opts.Sinks {
		if sink.Sink == nil {
			continue
		}
		if sink.Name == "" {
			sink.Name = fmt.Sprintf("sink_%d", len(ing.sinks))
		}
		ing.sinks = append(ing.sinks, sink)
	}
	if ing.timeout <= 0 {
		ing.timeout = defaultPersistTimeout
	}
	if ing.now == nil {
		ing.now = time.Now
	}
	if ing.newID == nil {
		ing.newID = uuid.NewString
	}
	if ing.log == nil {
		ing.log = zap.NewNop()
	}
	return ing
}

// Ingest validates params, delivers new-message and new-message-alert to the
// members and schedules persistence. Delivery is never retracted when a
// write later fails.
func (i *Ingestor) Ingest(ctx context.Context, params IngestParams) (Message, error) {
	chatID := strings.TrimSpace(params.ChatID)
	if chatID == "" {
		return Message{}, malformed("chatId is required")
	}
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return Message{}, malformed("message content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return Message{}, malformed("message exceeds %d characters", MaxMessageLength)
	}
	if strings.TrimSpace(params.Sender.ID) == "" {
		return Message{}, fmt.Errorf("%w: sender is required", ErrAuthFailure)
	}

	createdAt := i.now().UTC()
	message := Message{
		ID:        i.newID(),
		Content:   content,
		Sender:    Sender{ID: params.Sender.ID, Name: params.Sender.Name},
		Chat:      chatID,
		CreatedAt: createdAt.Format(time.RFC3339),
	}

	i.router.Deliver(params.Members, EventNewMessage, NewMessagePayload{ChatID: chatID, Message: message})
	i.router.Deliver(params.Members, EventNewMessageAlert, ChatPayload{ChatID: chatID})

	i.persist(ctx, MessageRecord{
		ID:         message.ID,
		ChatID:     chatID,
		SenderID:   params.Sender.ID,
		SenderName: params.Sender.Name,
		Content:    content,
		CreatedAt:  createdAt,
	})
	return message, nil
}

// Wait blocks until every scheduled write has finished.
func (i *Ingestor) Wait() {
	i.wg.Wait()
}

// Close stops scheduling writes and waits for the ones already running.
// Messages ingested afterwards are still delivered but not persisted.
func (i *Ingestor) Close() {
	i.mu.Lock()
	i.closed = true
	i.mu.Unlock()
	i.wg.Wait()
}

func (i *Ingestor) persist(ctx context.Context, record MessageRecord) {
	if len(i.sinks) == 0 {
		return
	}
	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		i.log.Warn("dropping message write after shutdown",
			zap.String("message_id", record.ID),
			zap.String("chat_id", record.ChatID),
		)
		return
	}
	i.wg.Add(1)
	i.mu.Unlock()

	go func() {
		defer i.wg.Done()

		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), i.timeout)
		defer cancel()

		for _, sink := range i.sinks {
			start := time.Now()
			err := sink.Sink.PersistMessage(writeCtx, record)
			elapsed := time.Since(start)
			if err != nil {
				err = fmt.Errorf("%w: %s: %v", ErrPersistenceFailure, sink.Name, err)
				i.log.Error("message persistence failed",
					zap.String("sink", sink.Name),
					zap.String("message_id", record.ID),
					zap.String("chat_id", record.ChatID),
					zap.Duration("elapsed", elapsed),
					zap.Error(err),
				)
				monitoring.RecordPersistence(sink.Name, "failure", elapsed)
				continue
			}
			monitoring.RecordPersistence(sink.Name, "success", elapsed)
		}
	}()
}
