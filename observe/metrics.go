package observe

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	MetricOpTotal    = "toolkit.op.total"
	MetricOpErrors   = "toolkit.op.errors"
	MetricOpDuration = "toolkit.op.duration_ms"
	MetricOpActive   = "toolkit.op.active"
)

// Metrics records per-op execution metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records one execution of op with its duration and outcome.
	RecordOp(ctx context.Context, op Op, duration time.Duration, err error)

	// AddActive moves the in-flight gauge for op by delta.
	AddActive(ctx context.Context, op Op, delta int64)
}

type metricsImpl struct {
	total    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

// NewMetrics registers the op instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	var (
		m    metricsImpl
		errs []error
		err  error
	)

	m.total, err = meter.Int64Counter(MetricOpTotal,
		metric.WithDescription("Instrumented op executions"),
		metric.WithUnit("{call}"))
	errs = append(errs, err)

	m.errors, err = meter.Int64Counter(MetricOpErrors,
		metric.WithDescription("Failed op executions"),
		metric.WithUnit("{error}"))
	errs = append(errs, err)

	m.duration, err = meter.Float64Histogram(MetricOpDuration,
		metric.WithDescription("Op execution duration"),
		metric.WithUnit("ms"))
	errs = append(errs, err)

	m.active, err = meter.Int64UpDownCounter(MetricOpActive,
		metric.WithDescription("Op executions currently running"),
		metric.WithUnit("{call}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *metricsImpl) RecordOp(ctx context.Context, op Op, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := op.attributes()

	m.total.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("op.outcome", outcome))...))
	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	m.duration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))
}

func (m *metricsImpl) AddActive(ctx context.Context, op Op, delta int64) {
	m.active.Add(ctx, delta, metric.WithAttributes(op.attributes()...))
}

type noopMetrics struct{}

func (noopMetrics) RecordOp(context.Context, Op, time.Duration, error) {}
func (noopMetrics) AddActive(context.Context, Op, int64)               {}
