package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/toolkit/observe"
)

// RetryConfig configures a Retry executor.
type RetryConfig[T any] struct {
	// Schedule lists the waits between attempts. Empty means a single attempt.
	Schedule Schedule

	// Accept decides whether a successful result is good enough.
	// Default: every result is accepted.
	Accept func(T) bool

	// RetryIf decides whether an attempt error is worth retrying. Returning
	// false ends the loop immediately. Rejected results always retry.
	// Default: every error is retried.
	RetryIf func(err error) bool

	// AttemptTimeout bounds each attempt. Zero means no per-attempt bound.
	AttemptTimeout time.Duration

	// OnRetry is called before each wait with the 1-based number of the
	// attempt that failed.
	OnRetry func(attempt int, err error, delay time.Duration)

	// Name identifies the operation in logs and spans.
	// Default: "call"
	Name string

	// Logger receives attempt failures. Default: no-op.
	Logger observe.Logger

	// Instrumenter, when set, wraps every attempt in a span.
	Instrumenter *observe.Instrumenter
}

// Retry runs operations with schedule-driven retries.
//
// A Retry is safe for concurrent use; it holds no per-call state.
type Retry[T any] struct {
	config RetryConfig[T]
	op     observe.Op
	logger observe.Logger
}

// NewRetry creates a retry executor.
func NewRetry[T any](config RetryConfig[T]) *Retry[T] {
	if config.Accept == nil {
		config.Accept = func(T) bool { return true }
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	if config.Name == "" {
		config.Name = "call"
	}

	op := observe.Op{Component: "retry", Name: config.Name}
	return &Retry[T]{
		config: config,
		op:     op,
		logger: observe.OrNop(config.Logger).WithOp(op),
	}
}

// RunWithRetry calls op until it returns an acceptable result or the
// schedule is exhausted, sleeping schedule[i] after failed attempt i.
// A nil isAcceptable accepts every result. It performs at most
// len(schedule)+1 attempts and never returns an error.
func RunWithRetry[T any](op func() (T, error), schedule Schedule, isAcceptable func(T) bool) Outcome[T] {
	r := NewRetry(RetryConfig[T]{Schedule: schedule, Accept: isAcceptable})
	return r.Do(context.Background(), func(context.Context) (T, error) {
		return op()
	})
}

// Do calls op until it returns an acceptable result or the schedule is
// exhausted. Waits end early when ctx is done; the outcome then carries
// ctx.Err().
func (r *Retry[T]) Do(ctx context.Context, op func(context.Context) (T, error)) Outcome[T] {
	var (
		last    T
		lastErr error
	)

	for attempt := 1; ; attempt++ {
		value, err := r.attempt(ctx, op)
		if err == nil {
			return Outcome[T]{Value: value, Attempts: attempt, status: StatusOK}
		}
		last, lastErr = value, err

		if !errors.Is(err, ErrRejected) && !r.config.RetryIf(err) {
			r.logger.Error(ctx, "permanent failure; not retrying",
				observe.F("attempt", attempt),
				observe.F("error", err),
			)
			return r.exhausted(last, lastErr, attempt)
		}

		if attempt > len(r.config.Schedule) {
			r.logger.Error(ctx, "retries exhausted",
				observe.F("attempts", attempt),
				observe.F("error", err),
			)
			return r.exhausted(last, lastErr, attempt)
		}

		delay := r.config.Schedule[attempt-1]
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}
		r.logger.Warn(ctx, "attempt failed; backing off",
			observe.F("attempt", attempt),
			observe.F("sleep", delay.String()),
			observe.F("error", err),
		)

		if err := sleep(ctx, delay); err != nil {
			r.logger.Info(ctx, "retry canceled", observe.F("reason", err))
			return r.exhausted(last, err, attempt)
		}
	}
}

// attempt runs op once. A result rejected by Accept is returned together
// with ErrRejected.
func (r *Retry[T]) attempt(ctx context.Context, op func(context.Context) (T, error)) (T, error) {
	var value T
	err := r.config.Instrumenter.Run(ctx, r.op, func(ctx context.Context) error {
		v, err := callWithTimeout(ctx, r.config.AttemptTimeout, op)
		if err != nil {
			return err
		}
		value = v
		if !r.config.Accept(v) {
			return ErrRejected
		}
		return nil
	})
	return value, err
}

func (r *Retry[T]) exhausted(last T, err error, attempts int) Outcome[T] {
	return Outcome[T]{Value: last, Err: err, Attempts: attempts, status: StatusExhausted}
}

// Config returns the retry configuration with defaults applied.
func (r *Retry[T]) Config() RetryConfig[T] {
	return r.config
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
