package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return nil
	}, 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RecoversAfterFailures(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	failure := errors.New("still broken")
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return failure
	}, 3, time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 3, calls, "should attempt exactly maxAttempts times")
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	calls := 0
	operation := func() error {
		calls++
		return nil
	}

	assert.ErrorIs(t, RetryWithBackoff(context.Background(), operation, 0, time.Millisecond), ErrInvalidMaxAttempts)
	assert.ErrorIs(t, RetryWithBackoff(context.Background(), operation, -2, time.Millisecond), ErrInvalidMaxAttempts)
	assert.Equal(t, 0, calls, "operation should never run")
}

func TestRetryWithBackoff_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("fail")
	}, 10, time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls, "should not attempt again after cancellation")
}

func TestRetryWithBackoff_HonorsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := RetryWithBackoff(ctx, func() error {
		return errors.New("fail")
	}, 100, 20*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryWithBackoff_DelaysGrow(t *testing.T) {
	var stamps []time.Time
	err := RetryWithBackoff(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 4 {
			return errors.New("fail")
		}
		return nil
	}, 5, 10*time.Millisecond)

	require.NoError(t, err)
	require.Len(t, stamps, 4)

	first := stamps[1].Sub(stamps[0])
	second := stamps[2].Sub(stamps[1])
	third := stamps[3].Sub(stamps[2])
	assert.Greater(t, second, first, "second delay should exceed the first")
	assert.Greater(t, third, second, "third delay should exceed the second")
}
