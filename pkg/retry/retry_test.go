package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	var logged []int

	err := DoWithLog(context.Background(), fastConfig(5), "feed", func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logged = append(logged, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, logged)
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	cause := errors.New("down")

	err := DoWithLog(context.Background(), fastConfig(3), "feed", func() error {
		calls++
		return cause
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "feed: max retry attempts (3) exceeded")
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanent(t *testing.T) {
	calls := 0
	cause := errors.New("bad request")

	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		return Permanent(cause)
	})

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, calls)
	assert.Nil(t, Permanent(nil))
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(5), func() error {
		calls++
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}
