// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
)

// Common application errors.
var (
	// Provider errors.
	ErrUnknownProvider = errors.New("unknown provider")
	ErrProvider        = errors.New("provider extraction failed")
	ErrEmptyExtraction = errors.New("no transactions recovered from provider response")
	ErrRateLimit       = errors.New("rate limit exceeded")
	ErrMaxRetries      = errors.New("max retries exceeded")

	// Input errors.
	ErrTextExtraction = errors.New("no usable text could be extracted")
	ErrInvalidPDF     = errors.New("invalid PDF file")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// RetryableError wraps an error with retry-specific metadata.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
