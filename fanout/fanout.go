// Package fanout applies a worker function to every item of a slice with a
// bounded number of concurrent calls.
//
// All items are queued up front and a fixed set of goroutines drains the
// queue. RunBounded returns only after every started call has finished, so
// no worker outlives the run. Failures never cancel sibling calls unless
// WithStopOnError is set, in which case the first failure cancels the
// context of calls still running. Every failed or unprocessed item is
// reported in the returned *Error.
package fanout

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jonwraymond/toolkit/observe"
	"github.com/jonwraymond/toolkit/queue"
)

type entry[T any] struct {
	index int
	item  T
}

// run holds the shared state of one RunBounded call.
type run[T any] struct {
	op      observe.Op
	opts    options
	logger  observe.Logger
	worker  func(context.Context, T) error
	queue   *queue.FIFO[entry[T]]
	limiter *rate.Limiter

	stopped   atomic.Bool
	active    atomic.Int32
	maxActive atomic.Int32
	processed atomic.Int32

	mu       sync.Mutex
	failures []ItemError
	failed   int
	skipped  int
}

// RunBounded calls worker once for every item with at most limit calls in
// flight. It returns ErrInvalidConcurrency when limit is not positive, nil
// when every call succeeded, and an *Error describing each failed or
// unprocessed item otherwise.
//
// Once ctx is done no further items are dispatched; they are reported with
// ctx.Err(). A panicking worker is recovered and reported with ErrPanic.
func RunBounded[T any](ctx context.Context, items []T, limit int, worker func(context.Context, T) error, opts ...Option) error {
	if limit <= 0 {
		return ErrInvalidConcurrency
	}
	o := newOptions(opts)
	if len(items) == 0 {
		if o.stats != nil {
			*o.stats = Stats{}
		}
		return nil
	}

	entries := make([]entry[T], len(items))
	for i, item := range items {
		entries[i] = entry[T]{index: i, item: item}
	}

	op := observe.Op{Component: "fanout", Name: o.name}
	r := &run[T]{
		op:      op,
		opts:    o,
		logger:  observe.OrNop(o.logger).WithOp(op).With(observe.F("run_id", uuid.NewString())),
		worker:  worker,
		queue:   queue.From(entries),
		limiter: o.limiter(),
	}

	workers := min(limit, len(items))
	r.logger.Debug(ctx, "fan-out started",
		observe.F("items", len(items)),
		observe.F("workers", workers),
	)
	start := time.Now()

	// A drain returns an error only under WithStopOnError, which cancels
	// gctx for the calls still in flight.
	g, gctx := errgroup.WithContext(ctx)
	for range workers {
		g.Go(func() error {
			return r.drain(ctx, gctx)
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Debug(ctx, "fan-out stopped", observe.F("error", err))
	}
	for {
		e, ok := r.queue.TryPop()
		if !ok {
			break
		}
		r.skip(e, ErrSkipped)
	}

	return r.finish(ctx, time.Since(start))
}

// drain pops entries until the queue is empty or an item fails under
// WithStopOnError. Skipped items report ErrSkipped after a stop and the
// caller's ctx.Err() after cancellation; calls run under gctx.
func (r *run[T]) drain(ctx, gctx context.Context) error {
	for {
		e, ok := r.queue.TryPop()
		if !ok {
			return nil
		}

		if r.stopped.Load() {
			r.skip(e, ErrSkipped)
			continue
		}
		if err := ctx.Err(); err != nil {
			r.skip(e, err)
			continue
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(gctx); err != nil {
				switch {
				case r.stopped.Load():
					err = ErrSkipped
				case ctx.Err() != nil:
					err = ctx.Err()
				}
				r.skip(e, err)
				continue
			}
		}

		if err := r.call(gctx, e); err != nil && r.opts.stopOnError {
			return err
		}
	}
}

func (r *run[T]) call(ctx context.Context, e entry[T]) error {
	n := r.active.Add(1)
	for {
		peak := r.maxActive.Load()
		if n <= peak || r.maxActive.CompareAndSwap(peak, n) {
			break
		}
	}

	err := r.opts.inst.Run(ctx, r.op, func(ctx context.Context) error {
		return safeCall(ctx, r.worker, e.item)
	})
	r.active.Add(-1)

	if err == nil {
		r.processed.Add(1)
		return nil
	}

	if r.opts.stopOnError {
		r.stopped.Store(true)
	}
	r.logger.Warn(ctx, "item failed",
		observe.F("index", e.index),
		observe.F("error", err),
	)

	r.mu.Lock()
	r.failures = append(r.failures, ItemError{Index: e.index, Item: e.item, Err: err})
	r.failed++
	r.mu.Unlock()
	return err
}

func (r *run[T]) skip(e entry[T], err error) {
	r.mu.Lock()
	r.failures = append(r.failures, ItemError{Index: e.index, Item: e.item, Err: err})
	r.skipped++
	r.mu.Unlock()
}

func (r *run[T]) finish(ctx context.Context, elapsed time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := Stats{
		Processed: int(r.processed.Load()),
		Failed:    r.failed,
		Skipped:   r.skipped,
		MaxActive: int(r.maxActive.Load()),
	}
	if r.opts.stats != nil {
		*r.opts.stats = stats
	}

	fields := []observe.Field{
		observe.F("processed", stats.Processed),
		observe.F("failed", stats.Failed),
		observe.F("skipped", stats.Skipped),
		observe.F("max_active", stats.MaxActive),
		observe.F("duration_ms", float64(elapsed.Microseconds())/1000),
	}
	if len(r.failures) == 0 {
		r.logger.Info(ctx, "fan-out finished", fields...)
		return nil
	}
	r.logger.Error(ctx, "fan-out finished with failures", fields...)

	failures := slices.Clone(r.failures)
	slices.SortFunc(failures, func(a, b ItemError) int { return a.Index - b.Index })
	return &Error{Failures: failures}
}

// safeCall runs worker and converts a panic into an ErrPanic error.
func safeCall[T any](ctx context.Context, worker func(context.Context, T) error, item T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return worker(ctx, item)
}
