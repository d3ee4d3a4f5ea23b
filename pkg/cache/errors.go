package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a key with no live entry.
	ErrNotFound = errors.New("not found")

	// ErrBackend reports a backend failure (timeout, lost connection).
	ErrBackend = errors.New("backend error")
)

// retryAttempts and retryBaseDelay shape RetryWithBackoff: the delay
// doubles after each failed attempt.
const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// RetryableError marks an error as transient so RetryWithBackoff tries again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is marked transient anywhere in its chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff runs fn until it succeeds, returns a non-transient error,
// or the attempt budget runs out. Context cancellation interrupts the wait
// between attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt, delay := 0, retryBaseDelay; ; attempt, delay = attempt+1, delay*2 {
		err = fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == retryAttempts-1 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
