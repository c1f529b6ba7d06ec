// Package health reports the readiness of lifetime-managed resources and
// resilience policies.
//
// Checkers wrap a lifetime.Manager or a resilience.CircuitBreaker and
// translate their state into a health Result. The Aggregator runs any
// number of checkers in parallel, deduplicates concurrent probes, and
// folds the results into an overall status suitable for a readiness
// endpoint.
package health
