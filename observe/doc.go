// Package observe provides tracing, metrics and structured logging for the
// toolkit primitives.
//
// It is a pure instrumentation library. The retry, fan-out and batch
// executors accept a Logger and an optional Instrumenter; when none is given
// they fall back to no-op implementations so instrumentation costs nothing
// unless asked for.
//
// # Identity
//
// Every instrumented call is identified by an Op:
//
//	op := observe.Op{Component: "fanout", Name: "sync_users"}
//	op.SpanName() // "toolkit.fanout.sync_users"
//
// # Wiring
//
//	obs, err := observe.NewObserver(ctx, observe.Config{
//	    ServiceName: "billing",
//	    Tracing:     observe.TracingConfig{Enabled: true, Exporter: "otlp", SamplePct: 0.1},
//	    Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
//	    Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer obs.Shutdown(ctx)
//
//	inst, err := observe.InstrumenterFromObserver(obs)
//
// LoggingConfig.Backend picks the logger NewObserver builds: the built-in
// JSON line logger, zerolog or zap. Applications that already carry a
// zerolog or zap logger can adapt it with NewZerologLogger or NewZapLogger.
package observe
