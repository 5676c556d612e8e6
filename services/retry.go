package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-analyzer/observability"
)

// RetryConfig bounds how often and how slowly a provider call is repeated
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries:     3,
	InitialBackoff: 100 * time.Millisecond,
	MaxBackoff:     5 * time.Second,
}

// permanentError marks a failure that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so WithRetry returns it without further attempts
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry calls fn until it succeeds, returns a Permanent error, or
// MaxRetries extra attempts are spent. The wait doubles after each failure
// up to MaxBackoff, and a provider's Retry-After hint stretches it.
func WithRetry(ctx context.Context, config RetryConfig, fn func() error) error {
	log := observability.WithContext(ctx)
	wait := config.InitialBackoff

	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if attempt == config.MaxRetries {
			break
		}

		delay := retryDelay(err, wait, config.MaxBackoff)
		log.Warn("retry attempt failed",
			"attempt", attempt+1,
			"max_retries", config.MaxRetries,
			"delay", delay,
			"error", err)

		if err := sleepCtx(ctx, delay); err != nil {
			return fmt.Errorf("context cancelled during retry: %w", err)
		}
		wait = min(wait*2, config.MaxBackoff)
	}

	return fmt.Errorf("failed after %d retries: %w", config.MaxRetries, err)
}

// retryDelay honours a Retry-After hint longer than the current backoff,
// never waiting past maxWait
func retryDelay(err error, backoff, maxWait time.Duration) time.Duration {
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > backoff {
		backoff = se.RetryAfter
	}
	return min(backoff, maxWait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
