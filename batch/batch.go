// Package batch splits a slice into fixed-size, order-preserving batches and
// hands them to a handler one at a time.
//
// Batches are never processed concurrently. The first handler error stops
// the run; batches that already completed stay completed.
package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolkit/observe"
)

// ErrInvalidSize is returned when the batch size is not positive.
var ErrInvalidSize = errors.New("batch: size must be positive")

// Error reports the batch whose handler failed.
type Error struct {
	Index  int // zero-based batch number
	Offset int // index of the batch's first item in the input
	Size   int // number of items in the batch
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("batch: batch %d (items %d..%d): %v", e.Index, e.Offset, e.Offset+e.Size-1, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Chunk partitions items into consecutive slices of length size; the last
// one may be shorter. The slices share items' backing array but are capacity
// clipped, so appending to one never overwrites the next.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}
	out := make([][]T, 0, len(items)/size+min(len(items)%size, 1))
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out, nil
}

// ForEach calls handler on each batch of items in order.
func ForEach[T any](items []T, size int, handler func([]T) error) error {
	return ForEachContext(context.Background(), items, size, func(_ context.Context, b []T) error {
		return handler(b)
	})
}

// Option configures ForEachContext.
type Option func(*options)

type options struct {
	logger observe.Logger
	inst   *observe.Instrumenter
	name   string
}

// WithLogger sets the logger used to report failed batches.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInstrumenter wraps every handler call in a span.
func WithInstrumenter(inst *observe.Instrumenter) Option {
	return func(o *options) { o.inst = inst }
}

// WithName sets the op name used in logs and spans. Default: "foreach".
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// ForEachContext calls handler on each batch of items in order, waiting for
// each call to return before starting the next. It checks ctx before every
// batch and returns ctx.Err() once it is done.
func ForEachContext[T any](ctx context.Context, items []T, size int, handler func(context.Context, []T) error, opts ...Option) error {
	if size <= 0 {
		return ErrInvalidSize
	}

	o := options{name: "foreach"}
	for _, opt := range opts {
		opt(&o)
	}
	op := observe.Op{Component: "batch", Name: o.name}
	logger := observe.OrNop(o.logger).WithOp(op)

	for index, start := 0, 0; start < len(items); index, start = index+1, start+size {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(start+size, len(items))
		chunk := items[start:end:end]

		err := o.inst.Run(ctx, op, func(ctx context.Context) error {
			return handler(ctx, chunk)
		})
		if err != nil {
			logger.Error(ctx, "batch failed",
				observe.F("index", index),
				observe.F("offset", start),
				observe.F("size", len(chunk)),
				observe.F("error", err),
			)
			return &Error{Index: index, Offset: start, Size: len(chunk), Err: err}
		}
	}
	return nil
}
