package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lifeguard-go/lifeguard/resilience"
)

func ExampleChain() {
	// Timeout innermost, circuit breaker outermost: a timed-out call
	// still counts as a failure against the circuit.
	policy := resilience.Chain(
		resilience.NewTimeout(resilience.TimeoutConfig{Timeout: 5 * time.Second}),
		resilience.NewRetry(resilience.RetryConfig{Retries: 3, InitialDelay: time.Millisecond}),
		resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 10}),
	)

	err := policy.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	fmt.Println(err)
	// Output: <nil>
}

func ExampleCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Action:           "billing-api",
		FailureThreshold: 2,
		GracePeriod:      time.Minute,
	})

	boom := errors.New("connection refused")
	for i := 0; i < 2; i++ {
		_ = cb.Execute(context.Background(), func(ctx context.Context) error {
			return boom
		})
	}

	// The circuit is now open: calls fail fast without reaching the API.
	err := cb.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	fmt.Println(errors.Is(err, resilience.ErrCircuitOpen))
	// Output: true
}

func ExampleBulkhead() {
	b := resilience.NewBulkhead(resilience.BulkheadConfig{
		Action:        "thumbnail-render",
		MaxConcurrent: 4,
		FailFast:      true,
	})

	err := b.Execute(context.Background(), func(ctx context.Context) error {
		return nil
	})
	fmt.Println(err)
	// Output: <nil>
}

func ExampleRetry() {
	r := resilience.NewRetry(resilience.RetryConfig{
		Action:       "fetch-profile",
		Retries:      3,
		InitialDelay: time.Millisecond,
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	fmt.Println(err, attempts)
	// Output: <nil> 3
}
