package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type typingPayload struct {
	ChatID  string   `json:"chatId" validate:"notblank"`
	Members []string `json:"members" validate:"required,min=1,dive,notblank"`
}

func TestValidateStructSuccess(t *testing.T) {
	require.NoError(t, ValidateStruct(typingPayload{ChatID: "c1", Members: []string{"u1"}}))
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := ValidateStruct(typingPayload{ChatID: "   ", Members: nil})
	require.Error(t, err)

	var failures ValidationErrors
	require.True(t, errors.As(err, &failures))
	require.Len(t, failures, 2)
	require.Equal(t, "chatId", failures[0].Field)
	require.Equal(t, "notblank", failures[0].Tag)
	require.Equal(t, "members", failures[1].Field)
	require.Contains(t, err.Error(), "chatId failed on notblank")
}

func TestValidateStructRejectsBlankMember(t *testing.T) {
	err := ValidateStruct(typingPayload{ChatID: "c1", Members: []string{"u1", ""}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "notblank")
}

func TestRegisterValidation(t *testing.T) {
	require.NoError(t, RegisterValidation("always_fail", func(validator.FieldLevel) bool { return false }))

	type payload struct {
		Name string `json:"name" validate:"always_fail"`
	}
	err := ValidateStruct(payload{Name: "x"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "name failed on always_fail")
}

func TestValidationErrorsEmptyMessage(t *testing.T) {
	require.Equal(t, "validation failed", ValidationErrors{}.Error())
}
