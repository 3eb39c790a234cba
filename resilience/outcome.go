package resilience

// Status tells how a retried call ended.
type Status int

const (
	// StatusOK means an attempt produced an accepted result.
	StatusOK Status = iota + 1
	// StatusExhausted means the schedule ran out, a permanent error stopped
	// the loop, or the context was cancelled.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Outcome is the result of a retried call.
//
// On success Value is the accepted result. On exhaustion Value is whatever
// the final attempt produced: the rejected result, or the zero value when
// that attempt failed outright. Err is the cause of the last failure.
type Outcome[T any] struct {
	Value    T
	Err      error
	Attempts int
	status   Status
}

// Status reports whether the call succeeded or gave up.
func (o Outcome[T]) Status() Status { return o.status }

// OK reports whether an attempt produced an accepted result.
func (o Outcome[T]) OK() bool { return o.status == StatusOK }

// Exhausted reports whether the call gave up.
func (o Outcome[T]) Exhausted() bool { return o.status == StatusExhausted }

// Get returns the accepted value and true, or the best available value and
// false after exhaustion.
func (o Outcome[T]) Get() (T, bool) { return o.Value, o.OK() }
