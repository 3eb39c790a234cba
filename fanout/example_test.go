package fanout_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/jonwraymond/toolkit/fanout"
)

func ExampleRunBounded() {
	var total atomic.Int64
	err := fanout.RunBounded(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, n int) error {
		total.Add(int64(n))
		return nil
	})
	fmt.Println(total.Load(), err)
	// Output: 15 <nil>
}

func ExampleRunBounded_failures() {
	hosts := []string{"a", "b", "c"}
	err := fanout.RunBounded(context.Background(), hosts, 3, func(_ context.Context, h string) error {
		if h == "b" {
			return errors.New("unreachable")
		}
		return nil
	})

	var fe *fanout.Error
	if errors.As(err, &fe) {
		for _, f := range fe.Failures {
			fmt.Println(f.Item, f.Err)
		}
	}
	// Output: b unreachable
}
