package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/chattu/internal/database/testutil"
	"github.com/charlesng35/chattu/internal/realtime"
)

func TestSQLMessageStorePersistIsIdempotent(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := NewSQLMessageStore(db)
	require.NoError(t, err)

	createdAt := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	record := realtime.MessageRecord{
		ID:         "msg-1",
		ChatID:     "chat-1",
		SenderID:   "u1",
		SenderName: "Ann",
		Content:    "hello",
		CreatedAt:  createdAt,
	}

	ctx := context.Background()
	require.NoError(t, store.PersistMessage(ctx, record))
	require.NoError(t, store.PersistMessage(ctx, record))

	count, err := store.CountByChat(ctx, "chat-1")
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	stored, err := store.Get(ctx, "msg-1")
	require.NoError(t, err)
	require.Equal(t, "hello", stored.Content)
	require.Equal(t, "Ann", stored.SenderName)
	require.True(t, stored.CreatedAt.Equal(createdAt))
}

func TestSQLMessageStoreRejectsMissingID(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := NewSQLMessageStore(db)
	require.NoError(t, err)

	err = store.PersistMessage(context.Background(), realtime.MessageRecord{ChatID: "chat-1", Content: "x"})
	require.Error(t, err)
}

func TestSQLMessageStoreGetMissing(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := NewSQLMessageStore(db)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLMessageStoreDeleteOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store, err := NewSQLMessageStore(db)
	require.NoError(t, err)

	ctx := context.Background()
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	for i, age := range []time.Duration{48 * time.Hour, 72 * time.Hour, time.Hour} {
		require.NoError(t, store.PersistMessage(ctx, realtime.MessageRecord{
			ID:        []string{"old-1", "old-2", "fresh"}[i],
			ChatID:    "chat-1",
			SenderID:  "u1",
			Content:   "body",
			CreatedAt: now.Add(-age),
		}))
	}

	removed, err := store.DeleteOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	_, err = store.Get(ctx, "fresh")
	require.NoError(t, err)
	_, err = store.Get(ctx, "old-1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewSQLMessageStoreRequiresDB(t *testing.T) {
	_, err := NewSQLMessageStore(nil)
	require.Error(t, err)
}
