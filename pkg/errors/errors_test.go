package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
	}{
		{NotFound("doctor", nil), http.StatusNotFound},
		{BadRequest("invalid datetime format", nil), http.StatusBadRequest},
		{Unauthorized("unauthenticated", nil), http.StatusUnauthorized},
		{Forbidden("access denied", nil), http.StatusForbidden},
		{Conflict("this time slot is already booked", nil), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode(), tc.err.Message)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
}

func TestIs(t *testing.T) {
	err := Conflict("slot taken", nil)
	assert.True(t, Is(err, ErrConflict))
	assert.False(t, Is(err, ErrNotFound))

	// Wrapped errors still match on code.
	wrapped := fmt.Errorf("booking: %w", err)
	assert.True(t, Is(wrapped, ErrConflict))

	assert.False(t, Is(errors.New("plain"), ErrConflict))
	assert.False(t, Is(nil, ErrConflict))
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("appointment", nil)
	assert.Equal(t, "appointment not found", err.Message)
}
