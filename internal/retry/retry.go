// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry runs an operation up to a fixed number of attempts with
// exponential backoff between them.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const defaultMaxAttempts = 3

// Policy controls how many times an operation runs and when it gives up.
type Policy struct {
	// MaxAttempts is the attempt ceiling, including the first (default 3).
	MaxAttempts int

	// Delay is the wait before the second attempt; it doubles for each
	// attempt after that. Zero retries immediately.
	Delay time.Duration

	// Retryable decides whether an error earns another attempt. When nil,
	// every error except context cancellation is retryable.
	Retryable func(error) bool
}

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// IsContextError reports whether err came from a cancelled or expired context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func defaultRetryable(err error) bool { return !IsContextError(err) }

// Do calls op until it succeeds, returns a non-retryable error, or the
// attempt ceiling is reached. attempt is 1-based. A non-retryable error is
// returned as is; exhaustion returns *ExhaustedError wrapping the last error.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T

	limit := p.MaxAttempts
	if limit <= 0 {
		limit = defaultMaxAttempts
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = defaultRetryable
	}

	var lastErr error
	for attempt := 1; attempt <= limit; attempt++ {
		if attempt > 1 && p.Delay > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-2))) * p.Delay
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		v, err := op(ctx, attempt)
		if err == nil {
			return v, nil
		}
		if !retryable(err) {
			return zero, err
		}
		lastErr = err
	}
	return zero, &ExhaustedError{Attempts: limit, Last: lastErr}
}
