package observe

import "go.opentelemetry.io/otel/attribute"

// Op identifies an instrumented operation.
type Op struct {
	Component string // Primitive that runs the operation: retry, fanout, batch (optional)
	Name      string // Caller-chosen operation name (required)
	Tags      []string
}

// SpanName returns the deterministic span name for this op.
// Format: toolkit.<component>.<name> or toolkit.<name>
func (o Op) SpanName() string {
	if o.Component != "" {
		return "toolkit." + o.Component + "." + o.Name
	}
	return "toolkit." + o.Name
}

// ID returns the qualified op identifier, component.name or just name.
func (o Op) ID() string {
	if o.Component != "" {
		return o.Component + "." + o.Name
	}
	return o.Name
}

// Validate reports whether the op carries a name.
func (o Op) Validate() error {
	if o.Name == "" {
		return ErrMissingOpName
	}
	return nil
}

func (o Op) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("op.id", o.ID()),
		attribute.String("op.name", o.Name),
	}
	if o.Component != "" {
		attrs = append(attrs, attribute.String("op.component", o.Component))
	}
	return attrs
}
