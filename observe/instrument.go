package observe

import (
	"context"
	"time"
)

// Instrumenter wraps op execution with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Run is safe for concurrent use.
//   - Context: the span context is propagated into fn.
//   - Errors: errors from fn are recorded and returned unchanged.
//
// A nil *Instrumenter is valid and runs fn without telemetry.
type Instrumenter struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstrumenter builds an Instrumenter. Nil components are replaced by
// no-op implementations.
func NewInstrumenter(tracer Tracer, metrics Metrics, logger Logger) *Instrumenter {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Instrumenter{
		tracer:  tracer,
		metrics: metrics,
		logger:  OrNop(logger),
	}
}

// InstrumenterFromObserver wires an Instrumenter to an Observer's providers.
func InstrumenterFromObserver(obs Observer) (*Instrumenter, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewInstrumenter(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Run executes fn inside a span for op and records its outcome.
func (i *Instrumenter) Run(ctx context.Context, op Op, fn func(context.Context) error) error {
	if i == nil {
		return fn(ctx)
	}

	ctx, span := i.tracer.StartSpan(ctx, op)
	i.metrics.AddActive(ctx, op, 1)
	start := time.Now()

	err := fn(ctx)

	duration := time.Since(start)
	i.metrics.AddActive(ctx, op, -1)
	i.tracer.EndSpan(span, err)
	i.metrics.RecordOp(ctx, op, duration, err)

	fields := []Field{F("duration_ms", float64(duration.Microseconds())/1000)}
	logger := i.logger.WithOp(op)
	if err != nil {
		logger.Error(ctx, "op failed", append(fields, F("error", err))...)
	} else {
		logger.Debug(ctx, "op completed", fields...)
	}

	return err
}

// Logger returns the instrumenter's logger, or the no-op logger when i is nil.
func (i *Instrumenter) Logger() Logger {
	if i == nil {
		return NopLogger()
	}
	return i.logger
}
