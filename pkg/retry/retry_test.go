package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cfg() Config {
	return Config{
		Attempts:   3,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), cfg(), func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	var retried []int
	c := cfg()
	c.OnRetry = func(attempt int, err error) { retried = append(retried, attempt) }

	got, err := Do(context.Background(), c, func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDoReturnsLastErrorOnExhaustion(t *testing.T) {
	lastErr := errors.New("still broken")
	calls := 0

	_, err := Do(context.Background(), cfg(), func() (int, error) {
		calls++
		return 0, lastErr
	})

	assert.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, calls)
}

func TestDoBackoffGrows(t *testing.T) {
	var times []time.Time
	_, _ = Do(context.Background(), cfg(), func() (int, error) {
		times = append(times, time.Now())
		return 0, errors.New("transient")
	})

	require.Len(t, times, 3)
	first := times[1].Sub(times[0])
	second := times[2].Sub(times[1])
	assert.GreaterOrEqual(t, first, 10*time.Millisecond)
	assert.GreaterOrEqual(t, second, 20*time.Millisecond)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, cfg(), func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
