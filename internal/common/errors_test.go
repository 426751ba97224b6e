package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "rate limit", err: ErrRateLimit, want: true},
		{name: "wrapped rate limit", err: fmt.Errorf("API status 429: %w", ErrRateLimit), want: true},
		{name: "plaid rate limit", err: ErrPlaidRateLimit, want: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "marked retryable", err: &RetryableError{Err: errors.New("connection reset"), Retryable: true}, want: true},
		{name: "marked permanent", err: &RetryableError{Err: errors.New("invalid API key"), Retryable: false}, want: false},
		{name: "plain error", err: errors.New("parse failed"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestUserMessage(t *testing.T) {
	inner := errors.New("connection refused")

	tests := []struct {
		err  error
		name string
		want string
	}{
		{name: "plain error passes through", err: errors.New("boom"), want: "boom"},
		{name: "user error", err: NewUserError("check your API key", inner), want: "check your API key"},
		{name: "wrapped user error", err: fmt.Errorf("startup failed: %w", NewUserError("check your API key", inner)), want: "check your API key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestUserErrorChain(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewUserError("could not reach the bank feed", inner)

	assert.Equal(t, "could not reach the bank feed: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewUserError("database path is not writable", nil)
	assert.Equal(t, "database path is not writable", bare.Error())
}

func TestRetryableErrorUnwrap(t *testing.T) {
	err := &RetryableError{Err: fmt.Errorf("call failed: %w", ErrRateLimit), Retryable: true}

	assert.ErrorIs(t, err, ErrRateLimit)
	assert.Equal(t, "call failed: rate limit exceeded", err.Error())
}
