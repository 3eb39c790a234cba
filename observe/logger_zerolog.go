package observe

import (
	"context"

	"github.com/rs/zerolog"
)

type zerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger adapts a zerolog.Logger to Logger. Level filtering is
// left to the zerolog logger.
func NewZerologLogger(l zerolog.Logger) Logger {
	return &zerologLogger{log: l}
}

func (z *zerologLogger) Info(_ context.Context, msg string, fields ...Field) {
	emitZerolog(z.log.Info(), msg, fields)
}

func (z *zerologLogger) Warn(_ context.Context, msg string, fields ...Field) {
	emitZerolog(z.log.Warn(), msg, fields)
}

func (z *zerologLogger) Error(_ context.Context, msg string, fields ...Field) {
	emitZerolog(z.log.Error(), msg, fields)
}

func (z *zerologLogger) Debug(_ context.Context, msg string, fields ...Field) {
	emitZerolog(z.log.Debug(), msg, fields)
}

func (z *zerologLogger) WithOp(op Op) Logger {
	c := z.log.With().Str("op.id", op.ID()).Str("op.name", op.Name)
	if op.Component != "" {
		c = c.Str("op.component", op.Component)
	}
	return &zerologLogger{log: c.Logger()}
}

func (z *zerologLogger) With(fields ...Field) Logger {
	c := z.log.With()
	for _, f := range fields {
		c = c.Interface(f.Key, redact(f))
	}
	return &zerologLogger{log: c.Logger()}
}

func zerologLevel(l LogLevel) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// emitZerolog is safe on a nil event; zerolog returns nil for disabled levels.
func emitZerolog(e *zerolog.Event, msg string, fields []Field) {
	if e == nil {
		return
	}
	for _, f := range fields {
		e = e.Interface(f.Key, redact(f))
	}
	e.Msg(msg)
}
