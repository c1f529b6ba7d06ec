// Package resilience provides composable resilience policies for
// asynchronous operations.
//
// Every policy shares the same invocation shape — Execute an Operation
// under the policy's protection — so policies can be used independently or
// chained into a single invoker.
//
// # Policies
//
//   - Timeout: races the operation against a timer and stops waiting when
//     the timer wins. The losing operation is abandoned, not cancelled.
//
//   - Retry: re-invokes a failing operation with exponentially doubling
//     delays until the attempt budget is exhausted.
//
//   - Circuit Breaker: stops calling a failing dependency after a failure
//     threshold, admitting a single probe once a grace period has elapsed.
//
//   - Bulkhead: caps concurrent executions, queueing or rejecting callers
//     at capacity.
//
//   - Rate Limiter: bounds the rate of operations with a token bucket.
//
// # Chaining
//
// Chain combines an ordered list of policies into one invoker, applied
// innermost-first: the first policy wraps the operation directly and the
// last is outermost. Ordering is semantics the caller owns — a Timeout
// placed innermost makes a timed-out call count as a failure against an
// outer Circuit Breaker, without attributing an outer Bulkhead's queueing
// time to the operation:
//
//	timeout := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: 5 * time.Second})
//	retry := resilience.NewRetry(resilience.RetryConfig{Retries: 3})
//	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})
//
//	policy := resilience.Chain(timeout, retry, breaker)
//
//	err := policy.Execute(ctx, func(ctx context.Context) error {
//	    return callExternalService(ctx)
//	})
//
// # Failures
//
// Each policy fails with a typed error carrying the action name and the
// thresholds involved (*TimeoutError, *RetryError, *CircuitOpenError,
// *BulkheadFullError, *BulkheadTimeoutError, *RateLimitError), so a caller
// can decide whether to retry at a higher level or surface the failure.
// All typed errors also match their package sentinel via errors.Is.
package resilience
