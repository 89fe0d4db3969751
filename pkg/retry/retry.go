package retry

import (
	"context"
	"time"
)

// Config describes a bounded exponential backoff: Attempts tries in total,
// waiting BaseDelay, BaseDelay*Multiplier, ... (capped at MaxDelay) between
// them.
type Config struct {
	Attempts   int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64

	// OnRetry, if set, is called before each wait with the attempt that
	// just failed (1-based) and its error.
	OnRetry func(attempt int, err error)
}

// Default matches the processing pipeline contract: three attempts with
// delays of 1s then 2s.
func Default() Config {
	return Config{
		Attempts:   3,
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2,
	}
}

// Do runs fn until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The last error is returned on exhaustion.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := cfg.BaseDelay
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if attempt == cfg.Attempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return zero, lastErr
}
