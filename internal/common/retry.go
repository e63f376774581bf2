package common

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryOptions controls the backoff schedule for WithRetry.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryOptions is the schedule used for provider calls: three
// attempts, 1s initial delay, doubling, capped at 30s.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// WithRetry executes an operation with configurable retry behavior.
// Operations that return a non-retryable RetryableError fail immediately.
func WithRetry(ctx context.Context, operation func() error, opts RetryOptions) error {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = 100 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = 2.0
	}

	delay := opts.InitialDelay

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		// Check if error is retryable
		var retryableErr *RetryableError
		if errors.As(err, &retryableErr) && !retryableErr.Retryable {
			return err
		}

		// Special handling for rate limits
		if errors.Is(err, ErrRateLimit) {
			delay = opts.MaxDelay
		}

		if attempt == opts.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %v", ErrMaxRetries, opts.MaxAttempts, err)
		}

		slog.Warn("Operation failed, retrying",
			"attempt", attempt,
			"max_attempts", opts.MaxAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * opts.Multiplier)
			if delay > opts.MaxDelay {
				delay = opts.MaxDelay
			}
		}
	}

	return ErrMaxRetries
}
