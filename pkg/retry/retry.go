// Package retry runs an operation with exponential backoff. It is used for
// compare-and-swap writes to the KV store and for waiting on the store at
// startup.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// NonRetryableError wraps errors that should not be retried
type NonRetryableError struct {
	Err error
}

func (e *NonRetryableError) Error() string {
	return fmt.Sprintf("non-retryable: %v", e.Err)
}

func (e *NonRetryableError) Unwrap() error {
	return e.Err
}

// NonRetryable marks err so that Do returns it without further attempts.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// IsNonRetryable checks if an error is marked as non-retryable
func IsNonRetryable(err error) bool {
	var nre *NonRetryableError
	return errors.As(err, &nre)
}

// Config provides retry configuration
type Config struct {
	MaxAttempts  int           // at least one attempt is always made
	InitialDelay time.Duration // delay before the second attempt
	MaxDelay     time.Duration // cap on any single delay
	Multiplier   float64       // growth factor between delays
	AddJitter    bool          // add up to 25% random delay
}

// DefaultConfig suits conflicting writes that usually resolve immediately.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 20 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		AddJitter:    true,
	}
}

// Startup suits waiting for a dependency that may still be booting.
func Startup() Config {
	return Config{
		MaxAttempts:  10,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   1.5,
		AddJitter:    true,
	}
}

func (c Config) normalized() (Config, error) {
	if c.InitialDelay < 0 || c.MaxDelay < 0 || c.Multiplier < 0 {
		return c, errors.New("retry: delays and multiplier must not be negative")
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay == 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay == 0 {
		c.MaxDelay = 5 * time.Second
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	if c.Multiplier > 1000 {
		c.Multiplier = 1000
	}
	if c.MaxDelay < c.InitialDelay {
		return c, errors.New("retry: MaxDelay must be >= InitialDelay")
	}
	return c, nil
}

// delay returns the wait before attempt n+1, n starting at 1.
func (c Config) delay(n int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < n && d < float64(c.MaxDelay); i++ {
		d *= c.Multiplier
	}
	wait := time.Duration(min(d, float64(c.MaxDelay)))
	if c.AddJitter && wait >= 4 {
		wait += rand.N(wait / 4)
	}
	return wait
}

// Do calls fn until it succeeds, returns a NonRetryable error, the context is
// done, or MaxAttempts is reached. The last error is wrapped in the result.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	cfg, err := cfg.normalized()
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if IsNonRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt+1, ctx.Err())
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(cfg.delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}

// DoWithResult executes fn with retry and returns both result and error
func DoWithResult[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, cfg, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}
