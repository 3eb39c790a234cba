package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/toolkit/resilience"
)

func ExampleRunWithRetry() {
	calls := 0
	out := resilience.RunWithRetry(func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("temporarily unavailable")
		}
		return "connected", nil
	}, resilience.ConstantSchedule(time.Millisecond, 5), nil)

	fmt.Println(out.Value, out.Attempts, out.Status())
	// Output: connected 3 ok
}

func ExampleRunWithRetry_predicate() {
	readings := []int{3, 7, 12}
	i := 0
	out := resilience.RunWithRetry(func() (int, error) {
		v := readings[i]
		i++
		return v, nil
	}, resilience.Schedule{0, 0}, func(v int) bool { return v > 10 })

	fmt.Println(out.Value, out.OK())
	// Output: 12 true
}

func ExampleNewRetry() {
	r := resilience.NewRetry(resilience.RetryConfig[int]{
		Name:     "lookup",
		Schedule: resilience.ConstantSchedule(0, 2),
		OnRetry: func(attempt int, err error, _ time.Duration) {
			fmt.Printf("attempt %d: %v\n", attempt, err)
		},
	})

	out := r.Do(context.Background(), func(context.Context) (int, error) {
		return 0, errors.New("not found")
	})
	fmt.Println(out.Exhausted(), out.Attempts)
	// Output:
	// attempt 1: not found
	// attempt 2: not found
	// true 3
}

func ExampleExponentialSchedule() {
	fmt.Println(resilience.ExponentialSchedule(100*time.Millisecond, time.Second, 5))
	// Output: [100ms,200ms,400ms,800ms,1s]
}
