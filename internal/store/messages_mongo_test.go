package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/charlesng35/chattu/internal/realtime"
)

type fakeCollection struct {
	filter  interface{}
	update  interface{}
	upsert  bool
	deleted interface{}
	err     error
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.filter = filter
	f.update = update
	for _, opt := range opts {
		if opt.Upsert != nil {
			f.upsert = *opt.Upsert
		}
	}
	return &mongo.UpdateResult{UpsertedCount: 1}, f.err
}

func (f *fakeCollection) DeleteMany(_ context.Context, filter interface{}, _ ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	f.deleted = filter
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.DeleteResult{DeletedCount: 3}, nil
}

func TestMongoMessageStoreUpsertsByID(t *testing.T) {
	coll := &fakeCollection{}
	store := &MongoMessageStore{coll: coll}

	createdAt := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	err := store.PersistMessage(context.Background(), realtime.MessageRecord{
		ID:        "m1",
		ChatID:    "c1",
		SenderID:  "u1",
		Content:   "hi",
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	require.True(t, coll.upsert)
	require.Equal(t, bson.M{"_id": "m1"}, coll.filter)

	update, ok := coll.update.(bson.M)
	require.True(t, ok)
	doc, ok := update["$setOnInsert"].(messageDocument)
	require.True(t, ok)
	require.Equal(t, "c1", doc.ChatID)
	require.Equal(t, createdAt, doc.CreatedAt)
}

func TestMongoMessageStorePropagatesErrors(t *testing.T) {
	store := &MongoMessageStore{coll: &fakeCollection{err: errors.New("down")}}

	err := store.PersistMessage(context.Background(), realtime.MessageRecord{ID: "m1"})
	require.EqualError(t, err, "down")

	_, err = store.DeleteOlderThan(context.Background(), time.Now())
	require.Error(t, err)
}

func TestMongoMessageStoreDeleteOlderThan(t *testing.T) {
	coll := &fakeCollection{}
	store := &MongoMessageStore{coll: coll}

	cutoff := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	removed, err := store.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 3, removed)
	require.Equal(t, bson.M{"created_at": bson.M{"$lt": cutoff}}, coll.deleted)
}

func TestMongoMessageStoreRequiresID(t *testing.T) {
	store := &MongoMessageStore{coll: &fakeCollection{}}
	require.Error(t, store.PersistMessage(context.Background(), realtime.MessageRecord{}))
}

func TestConnectMongoRequiresURI(t *testing.T) {
	_, err := ConnectMongo(context.Background(), MongoConfig{})
	require.Error(t, err)
}
