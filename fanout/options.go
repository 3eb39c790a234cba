package fanout

import (
	"golang.org/x/time/rate"

	"github.com/jonwraymond/toolkit/observe"
)

// Option configures RunBounded.
type Option func(*options)

type options struct {
	logger      observe.Logger
	inst        *observe.Instrumenter
	name        string
	limit       rate.Limit
	burst       int
	stopOnError bool
	stats       *Stats
}

func newOptions(opts []Option) options {
	o := options{name: "run"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// limiter returns the dispatch limiter, or nil when dispatch is unthrottled.
func (o options) limiter() *rate.Limiter {
	if o.limit <= 0 || o.limit == rate.Inf {
		return nil
	}
	return rate.NewLimiter(o.limit, max(o.burst, 1))
}

// WithLogger sets the logger used for run and failure entries.
func WithLogger(l observe.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInstrumenter wraps every worker call in a span and records op metrics.
func WithInstrumenter(inst *observe.Instrumenter) Option {
	return func(o *options) { o.inst = inst }
}

// WithName sets the op name used in logs and spans. Default: "run".
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithRateLimit caps how fast items are handed to workers across the whole
// run: r items per second with bursts of up to burst items. A burst below 1
// is treated as 1. A non-positive r disables throttling.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(o *options) {
		o.limit = r
		o.burst = burst
	}
}

// WithStopOnError stops dispatching after the first worker failure. Items
// still queued are reported with ErrSkipped, and calls already running see
// their context cancelled.
func WithStopOnError() Option {
	return func(o *options) { o.stopOnError = true }
}

// WithStats fills s with counters once the run returns.
func WithStats(s *Stats) Option {
	return func(o *options) { o.stats = s }
}

// Stats summarizes a finished run.
type Stats struct {
	Processed int // worker calls that returned nil
	Failed    int // worker calls that returned an error or panicked
	Skipped   int // items never handed to a worker
	MaxActive int // peak number of concurrently running worker calls
}
