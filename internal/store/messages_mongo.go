package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/charlesng35/chattu/internal/realtime"
)

const defaultMongoTimeout = 10 * time.Second

// MongoConfig addresses the message collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// ConnectMongo dials the cluster and verifies it with a ping.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*mongo.Client, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongo: uri is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultMongoTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, nil
}

type messageCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

type messageDocument struct {
	ID         string    `bson:"_id"`
	ChatID     string    `bson:"chat_id"`
	SenderID   string    `bson:"sender_id"`
	SenderName string    `bson:"sender_name,omitempty"`
	Content    string    `bson:"content"`
	CreatedAt  time.Time `bson:"created_at"`
}

func newMessageDocument(record realtime.MessageRecord) messageDocument {
	return messageDocument{
		ID:         record.ID,
		ChatID:     record.ChatID,
		SenderID:   record.SenderID,
		SenderName: record.SenderName,
		Content:    record.Content,
		CreatedAt:  record.CreatedAt.UTC(),
	}
}

// MongoMessageStore persists messages in a MongoDB collection.
type MongoMessageStore struct {
	coll messageCollection
}

// NewMongoMessageStore wraps coll and ensures the chat/created index exists.
func NewMongoMessageStore(ctx context.Context, coll *mongo.Collection) (*MongoMessageStore, error) {
	if coll == nil {
		return nil, errors.New("mongo message store: collection is required")
	}
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "chat_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("chat_created_idx"),
	}
	if _, err := coll.Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("mongo message store: create index: %w", err)
	}
	return &MongoMessageStore{coll: coll}, nil
}

// PersistMessage upserts by id so a retried write never duplicates.
func (s *MongoMessageStore) PersistMessage(ctx context.Context, record realtime.MessageRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return errors.New("mongo message store: message id is required")
	}
	doc := newMessageDocument(record)
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": doc.ID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	return err
}

// DeleteOlderThan removes messages created before cutoff.
func (s *MongoMessageStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff.UTC()}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
