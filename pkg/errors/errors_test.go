package errors

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorIncludesInternal(t *testing.T) {
	err := ErrServiceUnavailable.WithMessage("failed").WithInternal(stdErrors.New("boom"))
	require.Equal(t, "failed: boom", err.Error())
}

func TestWithInternalCopies(t *testing.T) {
	with := ErrForbidden.WithInternal(stdErrors.New("oops"))

	require.NotSame(t, ErrForbidden, with)
	require.Nil(t, ErrForbidden.Internal)
	require.NotNil(t, with.Internal)
	require.Equal(t, ErrForbidden.StatusCode, with.StatusCode)
}

func TestFromError(t *testing.T) {
	require.Same(t, ErrNotFound, FromError(ErrNotFound))
	require.Nil(t, FromError(nil))

	out := FromError(stdErrors.New("raw"))
	require.Equal(t, ErrInternalServer.Code, out.Code)
	require.Error(t, out.Internal)
}

func TestFromErrorFindsWrappedAppError(t *testing.T) {
	wrapped := stdErrors.Join(stdErrors.New("context"), ErrUnauthorized)
	require.Equal(t, ErrUnauthorized.Code, FromError(wrapped).Code)
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")
	require.Equal(t, ErrBadRequest.Code, err.Code)
	require.Equal(t, "invalid payload", err.Message)
	require.Equal(t, ErrBadRequest.StatusCode, err.StatusCode)
	require.Equal(t, "Invalid request", ErrBadRequest.Message)
}
