package fanout

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"golang.org/x/time/rate"

	"github.com/jonwraymond/toolkit/observe"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestRunBounded_EveryItemOnce(t *testing.T) {
	const n = 200
	counts := make([]atomic.Int32, n)

	err := RunBounded(context.Background(), seq(n), 7, func(_ context.Context, i int) error {
		counts[i].Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("RunBounded() error = %v", err)
	}
	for i := range counts {
		if c := counts[i].Load(); c != 1 {
			t.Fatalf("item %d processed %d times", i, c)
		}
	}
}

func TestRunBounded_ConcurrencyBound(t *testing.T) {
	tests := []struct {
		name  string
		items int
		limit int
	}{
		{"limit below items", 30, 3},
		{"limit above items", 2, 10},
		{"limit one", 5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var active, peak atomic.Int32
			var stats Stats

			err := RunBounded(context.Background(), seq(tt.items), tt.limit, func(context.Context, int) error {
				n := active.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				active.Add(-1)
				return nil
			}, WithStats(&stats))
			if err != nil {
				t.Fatalf("RunBounded() error = %v", err)
			}

			bound := int32(min(tt.limit, tt.items))
			if p := peak.Load(); p > bound || p < 1 {
				t.Errorf("peak concurrency = %d, want in [1, %d]", p, bound)
			}
			if stats.MaxActive > int(bound) {
				t.Errorf("Stats.MaxActive = %d, want <= %d", stats.MaxActive, bound)
			}
			if stats.Processed != tt.items {
				t.Errorf("Stats.Processed = %d, want %d", stats.Processed, tt.items)
			}
		})
	}
}

func TestRunBounded_EmptyInput(t *testing.T) {
	called := false
	stats := Stats{Processed: 99}
	err := RunBounded(context.Background(), nil, 4, func(context.Context, int) error {
		called = true
		return nil
	}, WithStats(&stats))
	if err != nil || called {
		t.Fatalf("err = %v, called = %v; want nil, false", err, called)
	}
	if stats != (Stats{}) {
		t.Errorf("stats = %+v, want zero", stats)
	}
}

func TestRunBounded_InvalidConcurrency(t *testing.T) {
	for _, limit := range []int{0, -1} {
		called := false
		err := RunBounded(context.Background(), seq(3), limit, func(context.Context, int) error {
			called = true
			return nil
		})
		if !errors.Is(err, ErrInvalidConcurrency) {
			t.Errorf("limit %d: err = %v, want ErrInvalidConcurrency", limit, err)
		}
		if called {
			t.Errorf("limit %d: worker called", limit)
		}
	}
}

func TestRunBounded_AggregatesFailures(t *testing.T) {
	errOdd := errors.New("odd item")
	var processed atomic.Int32
	var stats Stats

	err := RunBounded(context.Background(), seq(10), 4, func(_ context.Context, i int) error {
		processed.Add(1)
		if i%2 == 1 {
			return errOdd
		}
		return nil
	}, WithStats(&stats))

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if got := fe.Indexes(); !slices.Equal(got, []int{1, 3, 5, 7, 9}) {
		t.Errorf("failed indexes = %v", got)
	}
	if fe.Failures[0].Item != 1 {
		t.Errorf("Failures[0].Item = %v, want 1", fe.Failures[0].Item)
	}
	if !errors.Is(err, errOdd) {
		t.Error("errors.Is should reach the worker error")
	}
	if processed.Load() != 10 {
		t.Errorf("processed = %d; failures must not cancel siblings", processed.Load())
	}
	if stats.Processed != 5 || stats.Failed != 5 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunBounded_RecoversPanics(t *testing.T) {
	var processed atomic.Int32
	err := RunBounded(context.Background(), seq(5), 2, func(_ context.Context, i int) error {
		if i == 3 {
			panic("bad item")
		}
		processed.Add(1)
		return nil
	})

	if !errors.Is(err, ErrPanic) {
		t.Fatalf("err = %v, want ErrPanic", err)
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if len(fe.Failures) != 1 || fe.Failures[0].Index != 3 {
		t.Errorf("failures = %+v", fe.Failures)
	}
	if processed.Load() != 4 {
		t.Errorf("processed = %d, want 4", processed.Load())
	}
}

func TestRunBounded_StopOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls []int
	var stats Stats

	err := RunBounded(context.Background(), seq(5), 1, func(_ context.Context, i int) error {
		calls = append(calls, i)
		if i == 1 {
			return boom
		}
		return nil
	}, WithStopOnError(), WithStats(&stats))

	if !slices.Equal(calls, []int{0, 1}) {
		t.Errorf("calls = %v, want [0 1]", calls)
	}
	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if got := fe.Indexes(); !slices.Equal(got, []int{1, 2, 3, 4}) {
		t.Errorf("reported indexes = %v", got)
	}
	if !errors.Is(fe.Failures[0].Err, boom) {
		t.Errorf("Failures[0].Err = %v", fe.Failures[0].Err)
	}
	for _, f := range fe.Failures[1:] {
		if !errors.Is(f.Err, ErrSkipped) {
			t.Errorf("item %d: err = %v, want ErrSkipped", f.Index, f.Err)
		}
	}
	if stats.Processed != 1 || stats.Failed != 1 || stats.Skipped != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunBounded_StopOnErrorCancelsInFlight(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	boom := errors.New("boom")
	started := make(chan struct{})
	var stats Stats

	err := RunBounded(ctx, seq(4), 2, func(ctx context.Context, i int) error {
		switch i {
		case 0:
			<-started
			return boom
		case 1:
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}, WithStopOnError(), WithStats(&stats))

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if got := fe.Indexes(); !slices.Equal(got, []int{0, 1, 2, 3}) {
		t.Fatalf("reported indexes = %v", got)
	}
	if !errors.Is(fe.Failures[0].Err, boom) {
		t.Errorf("item 0: err = %v, want boom", fe.Failures[0].Err)
	}
	if cause := fe.Failures[1].Err; !errors.Is(cause, context.Canceled) {
		t.Errorf("item 1: err = %v, want context.Canceled from the stop", cause)
	}
	for _, f := range fe.Failures[2:] {
		if !errors.Is(f.Err, ErrSkipped) {
			t.Errorf("item %d: err = %v, want ErrSkipped", f.Index, f.Err)
		}
	}
	if stats.Failed != 2 || stats.Skipped != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRunBounded_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := RunBounded(ctx, seq(4), 2, func(context.Context, int) error {
		called = true
		return nil
	})

	if called {
		t.Error("worker called after cancellation")
	}
	var fe *Error
	if !errors.As(err, &fe) || len(fe.Failures) != 4 {
		t.Fatalf("err = %v, want 4 unprocessed items", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunBounded_CanceledMidRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := RunBounded(ctx, seq(6), 1, func(_ context.Context, i int) error {
		if i == 2 {
			cancel()
		}
		return nil
	})

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if got := fe.Indexes(); !slices.Equal(got, []int{3, 4, 5}) {
		t.Errorf("unprocessed = %v, want [3 4 5]", got)
	}
}

func TestRunBounded_RateLimit(t *testing.T) {
	start := time.Now()
	err := RunBounded(context.Background(), seq(6), 6, func(context.Context, int) error {
		return nil
	}, WithRateLimit(rate.Limit(50), 1))
	if err != nil {
		t.Fatalf("RunBounded() error = %v", err)
	}
	// One token up front, then one every 20ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("elapsed %v, want >= 80ms under rate limit", elapsed)
	}
}

func TestRunBounded_Instrumented(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(spans))
	inst := observe.NewInstrumenter(observe.NewTracer(tp.Tracer("test")), nil, nil)

	err := RunBounded(context.Background(), seq(8), 3, func(context.Context, int) error { return nil },
		WithInstrumenter(inst), WithName("sync"))
	if err != nil {
		t.Fatalf("RunBounded() error = %v", err)
	}

	ended := spans.Ended()
	if len(ended) != 8 {
		t.Fatalf("spans = %d, want 8", len(ended))
	}
	for _, s := range ended {
		if s.Name() != "toolkit.fanout.sync" {
			t.Errorf("span name = %q", s.Name())
		}
	}
}

func TestRunBounded_Logging(t *testing.T) {
	var buf bytes.Buffer
	_ = RunBounded(context.Background(), seq(3), 2, func(_ context.Context, i int) error {
		if i == 0 {
			return errors.New("fail")
		}
		return nil
	}, WithLogger(observe.NewLoggerWithWriter("info", &buf)))

	out := buf.String()
	if !strings.Contains(out, `"run_id":`) {
		t.Errorf("missing run_id\n%s", out)
	}
	if !strings.Contains(out, "item failed") || !strings.Contains(out, "fan-out finished with failures") {
		t.Errorf("missing failure entries\n%s", out)
	}
}

func TestError_Message(t *testing.T) {
	one := &Error{Failures: []ItemError{{Index: 2, Err: errors.New("x")}}}
	if got := one.Error(); got != "fanout: item 2: x" {
		t.Errorf("Error() = %q", got)
	}

	many := &Error{}
	for i := range 5 {
		many.Failures = append(many.Failures, ItemError{Index: i, Err: errors.New("e")})
	}
	want := "fanout: 5 items failed: item 0: e; item 1: e; item 2: e; and 2 more"
	if got := many.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestError_UnwrapsItemErrors(t *testing.T) {
	cause := errors.New("refused")
	err := RunBounded(context.Background(), seq(3), 2, func(_ context.Context, i int) error {
		if i == 2 {
			return cause
		}
		return nil
	})

	var ie ItemError
	if !errors.As(err, &ie) {
		t.Fatalf("errors.As(%v, *ItemError) = false", err)
	}
	if ie.Index != 2 || ie.Item != 2 {
		t.Errorf("ItemError = %+v, want index 2", ie)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(err, cause) = false")
	}
}
