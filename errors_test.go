package modalkit

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := NewPermanentError("model not found", 404, nil)
	assert.Equal(t, "model not found", err.Error())

	cause := errors.New("no such model: gpt-99")
	err = NewPermanentError("model not found", 404, cause)
	assert.Equal(t, "model not found: no such model: gpt-99", err.Error())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransientError("request failed", 0, cause)
	assert.ErrorIs(t, err, cause)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError("rate limited", 429, nil)))
	assert.False(t, IsTransient(NewPermanentError("bad key", 401, nil)))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(nil))
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(NewPermanentError("bad key", 401, nil)))
	assert.False(t, IsPermanent(NewTransientError("rate limited", 429, nil)))
	assert.False(t, IsPermanent(NewUserInputError("empty prompt", 400, nil)))
	assert.False(t, IsPermanent(errors.New("plain")))
}

func TestCategorizedErrorThroughWrapping(t *testing.T) {
	inner := NewTransientErrorWithRetry("rate limited", 429, 2*time.Second, nil)
	wrapped := fmt.Errorf("calling provider: %w", inner)

	assert.True(t, IsTransient(wrapped))
	assert.Equal(t, 429, StatusCodeOf(wrapped))
	assert.Equal(t, 2*time.Second, RetryAfterOf(wrapped))
}

func TestStatusCodeOfPlainError(t *testing.T) {
	assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))
	assert.Equal(t, time.Duration(0), RetryAfterOf(errors.New("plain")))
}

func TestUserInputCategory(t *testing.T) {
	err := NewUserInputError("prompt rejected", 400, nil)
	assert.Equal(t, ErrorUserInput, err.Category())
	assert.Equal(t, 400, err.StatusCode())
}
