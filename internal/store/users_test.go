package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/chattu/internal/database/testutil"
	"github.com/charlesng35/chattu/internal/models"
)

func TestUserDirectoryFindUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	require.NoError(t, db.Create(&models.User{
		BaseModel: models.BaseModel{ID: "u1"},
		Name:      "Ann",
		Username:  "ann",
	}).Error)

	dir, err := NewUserDirectory(db)
	require.NoError(t, err)

	user, err := dir.FindUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Ann", user.Name)

	_, err = dir.FindUser(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = dir.FindUser(context.Background(), "  ")
	require.ErrorIs(t, err, ErrNotFound)
}
