// Package observe provides the observability surface for the toolkit:
// a minimal structured logging contract, implementations and adapters,
// and OpenTelemetry instrumentation for policies and lifetimes.
//
// Observability here is strictly non-control-flow: swapping any logger
// for the no-op returned by NewNop changes no behavior, and metrics and
// tracing are attached from the outside via hooks and middleware.
//
// # Logging
//
// Logger is the sink contract consumed across the toolkit:
//
//	logger := observe.NewLogger("debug")
//	logger.Warn(ctx, "drain wait timed out",
//	    observe.String("lifetime", "redis"),
//	    observe.Duration("timeout", 30*time.Second))
//
// Backend adapters are provided for zerolog (NewZerologLogger) and zap
// (NewZapLogger); any other backend can satisfy the interface directly.
//
// # Instrumentation
//
// Metrics records policy executions, rejections, retries and circuit
// transitions through an OpenTelemetry meter supplied by the host
// application. Middleware wraps any resilience.Policy with a span,
// metrics and logging:
//
//	metrics, _ := observe.NewMetrics(meter)
//	mw := observe.NewMiddleware(tracer, metrics, logger)
//	policy := mw.Policy("redis-get", resilience.Chain(timeout, breaker))
package observe
