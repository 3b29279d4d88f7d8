package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseModelBeforeCreateAssignsID(t *testing.T) {
	var user User
	require.NoError(t, user.BeforeCreate(nil))
	require.NotEmpty(t, user.ID)
}

func TestBaseModelBeforeCreateKeepsProvidedID(t *testing.T) {
	message := Message{BaseModel: BaseModel{ID: "65f1c0ffee"}}
	require.NoError(t, message.BeforeCreate(nil))
	require.Equal(t, "65f1c0ffee", message.ID)
}
