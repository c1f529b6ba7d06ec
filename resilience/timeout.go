package resilience

import (
	"context"
	"time"
)

// TimeoutConfig configures the timeout policy.
type TimeoutConfig struct {
	// Action names the protected operation in errors.
	Action string

	// Timeout is the maximum time to wait for the operation.
	// Default: 30 seconds
	Timeout time.Duration
}

// Timeout races an operation against a timer.
//
// When the timer wins, Execute fails with a *TimeoutError and the
// operation is abandoned — its goroutine runs to completion unobserved.
// Timeout means "stop waiting", not "stop working": callers that want the
// operation cancelled wire cancellation into the operation body
// themselves.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a new timeout policy.
func NewTimeout(config TimeoutConfig) *Timeout {
	// Apply defaults
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	config.Action = actionOrDefault(config.Action)

	return &Timeout{config: config}
}

// Execute runs the operation, failing with *TimeoutError if it does not
// settle within the configured budget.
func (t *Timeout) Execute(ctx context.Context, op Operation) error {
	timer := time.NewTimer(t.config.Timeout)
	defer timer.Stop()

	// Buffered so the abandoned operation can settle without a receiver.
	done := make(chan error, 1)

	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return &TimeoutError{Action: t.config.Action, Timeout: t.config.Timeout}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Config returns the timeout configuration.
func (t *Timeout) Config() TimeoutConfig {
	return t.config
}

// ExecuteWithTimeout is a convenience function to run an operation with a
// one-off timeout.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op Operation) error {
	t := NewTimeout(TimeoutConfig{Timeout: timeout})
	return t.Execute(ctx, op)
}
