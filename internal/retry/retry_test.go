package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRetry(t *testing.T) {
	errBoom := errors.New("boom")

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		var retried []int
		err := WithRetry(context.Background(), RetryConfig{
			MaxAttempts: 3,
			Delay:       time.Millisecond,
			Backoff:     true,
			OnRetry:     func(attempt int, _ error) { retried = append(retried, attempt) },
		}, func() error {
			calls++
			if calls < 3 {
				return errBoom
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}, func() error {
			calls++
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "failed after 2 attempts")
		assert.Equal(t, 2, calls)
	})

	t.Run("permanent stops immediately", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), RetryConfig{MaxAttempts: 5, Delay: time.Millisecond}, func() error {
			calls++
			return Permanent(errBoom)
		})
		assert.Equal(t, errBoom, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero attempts runs once", func(t *testing.T) {
		calls := 0
		_ = WithRetry(context.Background(), RetryConfig{}, func() error {
			calls++
			return errBoom
		})
		assert.Equal(t, 1, calls)
	})

	t.Run("context cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, RetryConfig{MaxAttempts: 3, Delay: time.Hour}, func() error {
			return errBoom
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("permanent nil", func(t *testing.T) {
		assert.NoError(t, Permanent(nil))
	})
}
