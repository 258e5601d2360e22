package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseErrorCarriesCodeAndCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := DatabaseError("failed to connect to database", cause)

	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to connect to database")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapPreservesExistingCode(t *testing.T) {
	inner := EmptyInput("no rows")
	wrapped := Wrap(inner, "loading dataset")

	require.True(t, IsAppError(wrapped))
	assert.Equal(t, CodeEmptyInput, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, inner)
}

func TestWrapDefaultsToInternalCode(t *testing.T) {
	wrapped := Wrap(errors.New("boom"), "doing work")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
}

func TestWrapfNil(t *testing.T) {
	assert.NoError(t, Wrapf(nil, "ignored %d", 1))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(errors.New("plain")))
}
