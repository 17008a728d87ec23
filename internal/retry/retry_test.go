package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestWithRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}, func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_SingleAttemptReturnsRawError(t *testing.T) {
	err := WithRetry(context.Background(), RetryConfig{}, func() error { return errBoom })
	assert.Same(t, errBoom, err)
}

func TestWithRetry_WrapsAfterExhaustion(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}, func() error {
		calls++
		return errBoom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls)
}

func TestWithRetry_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	cfg := RetryConfig{
		MaxAttempts: 5,
		Delay:       time.Millisecond,
		Retryable:   func(error) bool { return false },
	}
	err := WithRetry(context.Background(), cfg, func() error {
		calls++
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, RetryConfig{MaxAttempts: 3, Delay: time.Hour}, func() error { return errBoom })
	assert.ErrorIs(t, err, errBoom)
}
