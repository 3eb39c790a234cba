package observe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonwraymond/toolkit/observe/exporters"
)

// Config holds all configuration for the Observer.
type Config struct {
	ServiceName string        `json:"service_name"`
	Version     string        `json:"version,omitempty"`
	Tracing     TracingConfig `json:"tracing"`
	Metrics     MetricsConfig `json:"metrics"`
	Logging     LoggingConfig `json:"logging"`
}

// TracingConfig configures the tracing subsystem.
type TracingConfig struct {
	Enabled   bool    `json:"enabled"`
	Exporter  string  `json:"exporter,omitempty"`   // otlp|jaeger|stdout|none
	SamplePct float64 `json:"sample_pct,omitempty"` // 0.0-1.0
}

// MetricsConfig configures the metrics subsystem.
type MetricsConfig struct {
	Enabled  bool   `json:"enabled"`
	Exporter string `json:"exporter,omitempty"` // otlp|prometheus|stdout|none
}

// LoggingConfig configures the logging subsystem.
type LoggingConfig struct {
	Enabled bool   `json:"enabled"`
	Level   string `json:"level,omitempty"`   // debug|info|warn|error
	Backend string `json:"backend,omitempty"` // json|zerolog|zap, default json
}

// Validate validates the configuration. Disabled sections are not checked.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}

	if t := c.Tracing; t.Enabled {
		if !slices.Contains(ValidTracingExporters, t.Exporter) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, t.Exporter)
		}
		if t.SamplePct < MinSamplePct || t.SamplePct > MaxSamplePct {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, t.SamplePct)
		}
	}

	if m := c.Metrics; m.Enabled && !slices.Contains(ValidMetricsExporters, m.Exporter) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, m.Exporter)
	}

	if l := c.Logging; l.Enabled {
		if !slices.Contains(ValidLogLevels, l.Level) {
			return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
		}
		if !slices.Contains(ValidLogBackends, l.Backend) {
			return fmt.Errorf("%w: %q", ErrInvalidLogBackend, l.Backend)
		}
	}

	return nil
}

// Observer provides access to telemetry primitives.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Shutdown must honor cancellation/deadlines.
// - Errors: Shutdown should be idempotent and return every error encountered.
type Observer interface {
	// Tracer returns the configured tracer.
	Tracer() trace.Tracer

	// Meter returns the configured meter.
	Meter() metric.Meter

	// Logger returns the configured logger.
	Logger() Logger

	// Shutdown flushes and stops all telemetry providers.
	Shutdown(ctx context.Context) error
}

type observer struct {
	tracer         trace.Tracer
	meter          metric.Meter
	logger         Logger
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	zap            *zap.Logger
}

// ObserverOption customizes NewObserver.
type ObserverOption func(*observerOptions)

type observerOptions struct {
	logWriter io.Writer
	global    bool
}

// WithLogWriter sends log output to w instead of stderr.
func WithLogWriter(w io.Writer) ObserverOption {
	return func(o *observerOptions) { o.logWriter = w }
}

// WithGlobalProviders registers the tracer and meter providers as the
// OpenTelemetry globals.
func WithGlobalProviders() ObserverOption {
	return func(o *observerOptions) { o.global = true }
}

// NewObserver builds telemetry providers for cfg. Disabled sections get
// no-op implementations.
func NewObserver(ctx context.Context, cfg Config, opts ...ObserverOption) (Observer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := observerOptions{logWriter: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("observe: resource: %w", err)
	}

	obs := &observer{
		tracer: tracenoop.NewTracerProvider().Tracer("noop"),
		meter:  noop.NewMeterProvider().Meter("noop"),
		logger: NopLogger(),
	}

	if cfg.Tracing.Enabled {
		exp, err := exporters.NewTracingExporter(ctx, cfg.Tracing.Exporter, exporters.WithWriter(o.logWriter))
		if err != nil {
			return nil, fmt.Errorf("observe: tracing: %w", err)
		}
		obs.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.Tracing.SamplePct))),
			sdktrace.WithBatcher(exp),
		)
		obs.tracer = obs.tracerProvider.Tracer(cfg.ServiceName)
		if o.global {
			otel.SetTracerProvider(obs.tracerProvider)
		}
	}

	if cfg.Metrics.Enabled {
		reader, err := exporters.NewMetricsReader(ctx, cfg.Metrics.Exporter, exporters.WithWriter(o.logWriter))
		if err != nil {
			_ = obs.Shutdown(ctx)
			return nil, fmt.Errorf("observe: metrics: %w", err)
		}
		obs.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		obs.meter = obs.meterProvider.Meter(cfg.ServiceName)
		if o.global {
			otel.SetMeterProvider(obs.meterProvider)
		}
	}

	if cfg.Logging.Enabled {
		obs.logger = obs.newLogger(cfg, o.logWriter)
	}

	return obs, nil
}

// sampler maps a sample fraction to a head sampler.
func sampler(pct float64) sdktrace.Sampler {
	switch {
	case pct >= MaxSamplePct:
		return sdktrace.AlwaysSample()
	case pct <= MinSamplePct:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(pct)
	}
}

func (o *observer) newLogger(cfg Config, w io.Writer) Logger {
	level := ParseLogLevel(cfg.Logging.Level)

	switch cfg.Logging.Backend {
	case "zerolog":
		zl := zerolog.New(w).Level(zerologLevel(level)).With().
			Timestamp().
			Str("service", cfg.ServiceName).
			Logger()
		return NewZerologLogger(zl)

	case "zap":
		enc := zap.NewProductionEncoderConfig()
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zapLevel(level))
		o.zap = zap.New(core).With(zap.String("service", cfg.ServiceName))
		return NewZapLogger(o.zap)

	default:
		return NewLoggerWithWriter(level.String(), w).With(F("service", cfg.ServiceName))
	}
}

func (o *observer) Tracer() trace.Tracer { return o.tracer }
func (o *observer) Meter() metric.Meter  { return o.meter }
func (o *observer) Logger() Logger       { return o.logger }

func (o *observer) Shutdown(ctx context.Context) error {
	var errs []error

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	if o.zap != nil {
		_ = o.zap.Sync() // best effort
	}

	return errors.Join(errs...)
}
