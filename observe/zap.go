package observe

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// zapLogger implements Logger using zap. Verbose maps to zap's debug
// level, which is the lowest zap offers.
type zapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps an existing *zap.Logger in the Logger contract.
func NewZapLogger(logger *zap.Logger) Logger {
	return &zapLogger{logger: logger}
}

func (z *zapLogger) Error(ctx context.Context, msg string, fields ...Field) {
	z.logger.Error(msg, zapFields(fields)...)
}

func (z *zapLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	z.logger.Warn(msg, zapFields(fields)...)
}

func (z *zapLogger) Info(ctx context.Context, msg string, fields ...Field) {
	z.logger.Info(msg, zapFields(fields)...)
}

func (z *zapLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

func (z *zapLogger) Verbose(ctx context.Context, msg string, fields ...Field) {
	z.logger.Debug(msg, zapFields(fields)...)
}

func zapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case float64:
			out = append(out, zap.Float64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.Error(v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}
