package resilience

import "errors"

// Attempt failure causes reported in Outcome.Err.
var (
	// ErrRejected marks an attempt whose result failed the acceptance predicate.
	ErrRejected = errors.New("resilience: result rejected")

	// ErrPanic wraps a panic recovered from an attempt.
	ErrPanic = errors.New("resilience: operation panicked")

	// ErrTimeout is returned when an attempt exceeds RetryConfig.AttemptTimeout.
	ErrTimeout = errors.New("resilience: attempt timed out")
)

// ErrInvalidDelay is returned by ParseSchedule for negative or malformed delays.
var ErrInvalidDelay = errors.New("resilience: invalid delay")
