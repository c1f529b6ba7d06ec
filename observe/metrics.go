package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lifeguard-go/lifeguard/resilience"
)

// Metrics records policy and lifetime activity through an OpenTelemetry
// meter supplied by the host application.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: recording must not panic; failures are dropped.
type Metrics struct {
	execTotal    metric.Int64Counter
	execErrors   metric.Int64Counter
	execDuration metric.Float64Histogram
	rejections   metric.Int64Counter
	retries      metric.Int64Counter
	transitions  metric.Int64Counter
}

// NewMetrics creates a Metrics instance registering its instruments on
// the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	execTotal, err := meter.Int64Counter(
		"policy.exec.total",
		metric.WithDescription("Total number of policy-guarded executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	execErrors, err := meter.Int64Counter(
		"policy.exec.errors",
		metric.WithDescription("Total number of failed policy-guarded executions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	execDuration, err := meter.Float64Histogram(
		"policy.exec.duration_ms",
		metric.WithDescription("Policy-guarded execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter(
		"policy.rejections",
		metric.WithDescription("Calls rejected by a policy before reaching the operation"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	retries, err := meter.Int64Counter(
		"policy.retry.attempts",
		metric.WithDescription("Retry attempts performed"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	transitions, err := meter.Int64Counter(
		"policy.circuit.transitions",
		metric.WithDescription("Circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		execTotal:    execTotal,
		execErrors:   execErrors,
		execDuration: execDuration,
		rejections:   rejections,
		retries:      retries,
		transitions:  transitions,
	}, nil
}

// RecordExecution records one policy-guarded execution.
func (m *Metrics) RecordExecution(ctx context.Context, action string, duration time.Duration, err error) {
	opt := metric.WithAttributes(attribute.String("policy.action", action))

	m.execTotal.Add(ctx, 1, opt)
	if err != nil {
		m.execErrors.Add(ctx, 1, opt)
	}
	m.execDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordRejection records a call a policy rejected before invoking the
// operation (open circuit, full bulkhead, rate limit).
func (m *Metrics) RecordRejection(ctx context.Context, action, kind string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("policy.action", action),
		attribute.String("policy.rejection", kind),
	))
}

// CircuitStateHook returns an OnStateChange hook for a circuit breaker
// that counts transitions under the given action name.
func (m *Metrics) CircuitStateHook(action string) func(from, to resilience.State) {
	return func(from, to resilience.State) {
		m.transitions.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("policy.action", action),
			attribute.String("circuit.from", from.String()),
			attribute.String("circuit.to", to.String()),
		))
	}
}

// RetryHook returns an OnFail hook for a retry policy that counts
// attempts under the given action name. It never overrides the delay.
func (m *Metrics) RetryHook(action string) func(err error, attempt int, delay time.Duration) time.Duration {
	return func(err error, attempt int, delay time.Duration) time.Duration {
		m.retries.Add(context.Background(), 1, metric.WithAttributes(
			attribute.String("policy.action", action),
		))
		return 0
	}
}
