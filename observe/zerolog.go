package observe

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// zerologLogger implements Logger using zerolog. Verbose maps to
// zerolog's trace level.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps an existing zerolog.Logger in the Logger
// contract.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return &zerologLogger{logger: logger}
}

func (z *zerologLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.logger.Error(), msg, fields)
}

func (z *zerologLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.logger.Warn(), msg, fields)
}

func (z *zerologLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.logger.Info(), msg, fields)
}

func (z *zerologLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.logger.Debug(), msg, fields)
}

func (z *zerologLogger) Verbose(ctx context.Context, msg string, fields ...Field) {
	z.emit(z.logger.Trace(), msg, fields)
}

func (z *zerologLogger) emit(event *zerolog.Event, msg string, fields []Field) {
	for _, f := range fields {
		event = addZerologField(event, f)
	}
	event.Msg(msg)
}

func addZerologField(event *zerolog.Event, f Field) *zerolog.Event {
	switch v := f.Value.(type) {
	case string:
		return event.Str(f.Key, v)
	case int:
		return event.Int(f.Key, v)
	case int64:
		return event.Int64(f.Key, v)
	case float64:
		return event.Float64(f.Key, v)
	case bool:
		return event.Bool(f.Key, v)
	case time.Duration:
		return event.Dur(f.Key, v)
	case error:
		return event.Err(v)
	default:
		return event.Interface(f.Key, v)
	}
}
