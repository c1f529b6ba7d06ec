package observe

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/lifeguard-go/lifeguard/resilience"
)

// Middleware wraps policy executions with observability (tracing,
// metrics, logging).
//
// Contract:
//   - Concurrency: Policy() returns a thread-safe resilience.Policy.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from the wrapped policy are recorded and propagated
//     unchanged.
type Middleware struct {
	tracer  trace.Tracer
	metrics *Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. A nil tracer disables tracing, a
// nil metrics disables metrics and a nil logger disables logging.
func NewMiddleware(tracer trace.Tracer, metrics *Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = tracenoop.NewTracerProvider().Tracer("")
	}
	if logger == nil {
		logger = NewNop()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Policy wraps a resilience policy so every execution is traced, timed
// and logged under the given action name.
func (m *Middleware) Policy(action string, p resilience.Policy) resilience.Policy {
	return resilience.PolicyFunc(func(ctx context.Context, op resilience.Operation) error {
		ctx, span := m.tracer.Start(ctx, "policy.exec."+action,
			trace.WithAttributes(attribute.String("policy.action", action)),
			trace.WithSpanKind(trace.SpanKindInternal),
		)

		start := time.Now()
		err := p.Execute(ctx, op)
		duration := time.Since(start)

		m.endSpan(span, err)

		if m.metrics != nil {
			m.metrics.RecordExecution(ctx, action, duration, err)
			if kind := rejectionKind(err); kind != "" {
				m.metrics.RecordRejection(ctx, action, kind)
			}
		}

		fields := []Field{
			String("action", action),
			Duration("duration", duration),
		}
		if err != nil {
			fields = append(fields, Err(err))
			m.logger.Warn(ctx, "guarded execution failed", fields...)
		} else {
			m.logger.Debug(ctx, "guarded execution completed", fields...)
		}

		return err
	})
}

func (m *Middleware) endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// rejectionKind classifies errors raised by a policy before the
// operation ran. It returns "" for everything else.
func rejectionKind(err error) string {
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, resilience.ErrBulkheadFull):
		return "bulkhead_full"
	case errors.Is(err, resilience.ErrBulkheadTimeout):
		return "bulkhead_timeout"
	case errors.Is(err, resilience.ErrRateLimitExceeded):
		return "rate_limited"
	default:
		return ""
	}
}
