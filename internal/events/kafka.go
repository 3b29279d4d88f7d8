// Package events publishes message lifecycle events to Kafka for downstream
// consumers such as notification and search services.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/charlesng35/chattu/internal/realtime"
)

// TypeMessageCreated labels payloads emitted after a message is fanned out.
const TypeMessageCreated = "message.created"

// KafkaConfig addresses the topic receiving message events.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// MessageEvent is the JSON value written to the topic.
type MessageEvent struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	ChatID     string    `json:"chat_id"`
	SenderID   string    `json:"sender_id"`
	SenderName string    `json:"sender_name,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// KafkaPublisher implements realtime.MessageSink by producing one record per
// message keyed by chat id, so a chat's messages stay ordered in a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a synchronous writer acknowledged by all replicas.
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	if len(brokers) == 0 {
		return nil, errors.New("kafka publisher: at least one broker is required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka publisher: topic is required")
	}

	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	if cfg.WriteTimeout > 0 {
		writer.WriteTimeout = cfg.WriteTimeout
	}
	return newKafkaPublisher(writer), nil
}

func newKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// PersistMessage publishes record as a message.created event.
func (p *KafkaPublisher) PersistMessage(ctx context.Context, record realtime.MessageRecord) error {
	value, err := json.Marshal(MessageEvent{
		Type:       TypeMessageCreated,
		ID:         record.ID,
		ChatID:     record.ChatID,
		SenderID:   record.SenderID,
		SenderName: record.SenderName,
		Content:    record.Content,
		CreatedAt:  record.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("kafka publisher: encode: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(record.ChatID),
		Value: value,
		Time:  record.CreatedAt,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(TypeMessageCreated)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publisher: write: %w", err)
	}
	return nil
}

// Close flushes and releases the writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
