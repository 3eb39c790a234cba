package observe_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/toolkit/observe"
)

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "billing",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "zipkin"},
	}

	err := cfg.Validate()
	fmt.Println(errors.Is(err, observe.ErrInvalidTracingExporter))
	// Output: true
}

func ExampleOp_SpanName() {
	op := observe.Op{Component: "fanout", Name: "sync_users"}
	fmt.Println(op.SpanName())
	fmt.Println(op.ID())
	// Output:
	// toolkit.fanout.sync_users
	// fanout.sync_users
}

func ExampleInstrumenter_Run() {
	obs, err := observe.NewObserver(context.Background(), observe.Config{ServiceName: "example"})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer obs.Shutdown(context.Background())

	inst, err := observe.InstrumenterFromObserver(obs)
	if err != nil {
		fmt.Println(err)
		return
	}

	err = inst.Run(context.Background(), observe.Op{Name: "greet"}, func(ctx context.Context) error {
		fmt.Println("hello")
		return nil
	})
	fmt.Println(err)
	// Output:
	// hello
	// <nil>
}
