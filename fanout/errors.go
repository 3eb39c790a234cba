package fanout

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConcurrency is returned when the concurrency limit is not positive.
	ErrInvalidConcurrency = errors.New("fanout: concurrency limit must be positive")

	// ErrSkipped marks items left unprocessed after an earlier failure when
	// stop-on-error is enabled.
	ErrSkipped = errors.New("fanout: item skipped after earlier failure")

	// ErrPanic wraps a value recovered from a panicking worker.
	ErrPanic = errors.New("fanout: worker panicked")
)

// ItemError reports the failure of a single item.
type ItemError struct {
	Index int // position of the item in the input slice
	Item  any
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Error aggregates every item that failed or was left unprocessed during a
// run. Failures are sorted by input index.
type Error struct {
	Failures []ItemError
}

func (e *Error) Error() string {
	switch len(e.Failures) {
	case 0:
		return "fanout: no failures"
	case 1:
		return "fanout: " + e.Failures[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "fanout: %d items failed: ", len(e.Failures))
	const shown = 3
	for i, f := range e.Failures {
		if i == shown {
			fmt.Fprintf(&b, "; and %d more", len(e.Failures)-shown)
			break
		}
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f.Error())
	}
	return b.String()
}

// Unwrap exposes every ItemError, and through them each cause, to
// errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Indexes returns the input positions of the failed items in ascending order.
func (e *Error) Indexes() []int {
	out := make([]int, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Index
	}
	return out
}
