package retrier

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDialFailed = errors.New("dial failed")

func TestDoStopsOnFirstSuccess(t *testing.T) {
	r := New()

	attempts := 0
	err := r.Do(context.Background(), func(_ context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoRecoversWithinBudget(t *testing.T) {
	r := New(WithMaxRetries(3), WithInitialInterval(time.Millisecond))

	attempts := 0
	err := r.Do(context.Background(), func(_ context.Context) error {
		attempts++
		if attempts < 3 {
			return errDialFailed
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoExhaustionReturnsLastError(t *testing.T) {
	r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond))

	attempts := 0
	err := r.Do(context.Background(), func(_ context.Context) error {
		attempts++
		return errors.Wrapf(errDialFailed, "attempt %d", attempts)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errDialFailed)
	assert.Contains(t, err.Error(), "attempt 3")
	// initial attempt plus the retry budget
	assert.Equal(t, 3, attempts)
}

func TestDoHonorsContextCancellationBetweenAttempts(t *testing.T) {
	r := New(WithMaxRetries(5), WithInitialInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, func(_ context.Context) error {
			attempts++
			return errDialFailed
		})
	}()

	// first attempt runs, then Do sleeps for an hour; cancel cuts it short
	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoWithData(t *testing.T) {
	t.Run("returns the value on success", func(t *testing.T) {
		r := New()
		got, err := DoWithData(r, context.Background(), func(_ context.Context) (string, error) {
			return "connected", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "connected", got)
	})

	t.Run("returns last value on exhaustion", func(t *testing.T) {
		r := New(WithMaxRetries(1), WithInitialInterval(time.Millisecond))
		got, err := DoWithData(r, context.Background(), func(_ context.Context) (int, error) {
			return 42, errDialFailed
		})
		require.ErrorIs(t, err, errDialFailed)
		assert.Equal(t, 42, got)
	})
}

func TestJitteredStaysNearInterval(t *testing.T) {
	interval := 100 * time.Millisecond
	lo := time.Duration(float64(interval) * (1 - jitterFactor))
	hi := time.Duration(float64(interval) * (1 + jitterFactor))

	for i := 0; i < 100; i++ {
		d := jittered(interval)
		assert.GreaterOrEqual(t, d, lo)
		assert.LessOrEqual(t, d, hi)
	}
}

func TestJitteredNeverNegative(t *testing.T) {
	assert.Equal(t, time.Duration(0), jittered(0))
	for i := 0; i < 100; i++ {
		assert.GreaterOrEqual(t, jittered(time.Nanosecond), time.Duration(0))
	}
}
