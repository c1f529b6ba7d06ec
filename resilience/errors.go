package resilience

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for resilience operations. The typed errors below match
// these via errors.Is, so callers can branch on the failure kind without
// unpacking fields.
var (
	// ErrTimeout is matched by *TimeoutError.
	ErrTimeout = errors.New("resilience: operation timed out")

	// ErrMaxRetriesExceeded is matched by *RetryError.
	ErrMaxRetriesExceeded = errors.New("resilience: max retries exceeded")

	// ErrCircuitOpen is matched by *CircuitOpenError.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrBulkheadFull is matched by *BulkheadFullError.
	ErrBulkheadFull = errors.New("resilience: bulkhead at capacity")

	// ErrBulkheadTimeout is matched by *BulkheadTimeoutError.
	ErrBulkheadTimeout = errors.New("resilience: bulkhead wait timed out")

	// ErrRateLimitExceeded is matched by *RateLimitError.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")
)

// TimeoutError is returned when an operation exceeds its time budget.
// The operation itself is abandoned, not cancelled: it may still be
// running when this error is surfaced.
type TimeoutError struct {
	// Action names the protected operation.
	Action string

	// Timeout is the budget that elapsed.
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("resilience: %s timed out after %s", e.Action, e.Timeout)
}

// Is reports whether target is ErrTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// RetryError is returned when all retry attempts are exhausted. It wraps
// the last underlying error.
type RetryError struct {
	// Action names the protected operation.
	Action string

	// Attempts is the number of attempts performed.
	Attempts int

	// Inner is the last underlying error, if any.
	Inner error
}

func (e *RetryError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("resilience: %s failed after %d attempts: %v", e.Action, e.Attempts, e.Inner)
	}
	return fmt.Sprintf("resilience: %s failed after %d attempts", e.Action, e.Attempts)
}

// Unwrap returns the last underlying error.
func (e *RetryError) Unwrap() error {
	return e.Inner
}

// Is reports whether target is ErrMaxRetriesExceeded.
func (e *RetryError) Is(target error) bool {
	return target == ErrMaxRetriesExceeded
}

// CircuitOpenError is returned when a call is rejected because the
// circuit is open and the grace period has not yet elapsed.
type CircuitOpenError struct {
	// Action names the protected operation.
	Action string

	// FailureThreshold is the failure count that opened the circuit.
	FailureThreshold int

	// GracePeriod is how long the circuit stays open before a probe is
	// allowed.
	GracePeriod time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("resilience: circuit breaker open for %s (threshold %d, grace period %s)",
		e.Action, e.FailureThreshold, e.GracePeriod)
}

// Is reports whether target is ErrCircuitOpen.
func (e *CircuitOpenError) Is(target error) bool {
	return target == ErrCircuitOpen
}

// BulkheadFullError is returned when a fail-fast bulkhead is at capacity.
type BulkheadFullError struct {
	// Action names the protected operation.
	Action string

	// MaxConcurrent is the configured concurrency cap.
	MaxConcurrent int

	// Active is the number of executions in flight at rejection time.
	Active int
}

func (e *BulkheadFullError) Error() string {
	return fmt.Sprintf("resilience: bulkhead at capacity for %s (%d/%d active)",
		e.Action, e.Active, e.MaxConcurrent)
}

// Is reports whether target is ErrBulkheadFull.
func (e *BulkheadFullError) Is(target error) bool {
	return target == ErrBulkheadFull
}

// BulkheadTimeoutError is returned when a blocked caller's wait for a
// bulkhead slot exceeds the configured bound.
type BulkheadTimeoutError struct {
	// Action names the protected operation.
	Action string

	// Timeout is the wait bound that elapsed.
	Timeout time.Duration
}

func (e *BulkheadTimeoutError) Error() string {
	return fmt.Sprintf("resilience: bulkhead wait for %s timed out after %s", e.Action, e.Timeout)
}

// Is reports whether target is ErrBulkheadTimeout.
func (e *BulkheadTimeoutError) Is(target error) bool {
	return target == ErrBulkheadTimeout
}

// RateLimitError is returned when a call is rejected by the rate limiter.
type RateLimitError struct {
	// Action names the protected operation.
	Action string

	// Rate is the configured operations-per-second rate.
	Rate float64

	// Burst is the configured burst size.
	Burst int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("resilience: rate limit exceeded for %s (%.0f/s, burst %d)", e.Action, e.Rate, e.Burst)
}

// Is reports whether target is ErrRateLimitExceeded.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimitExceeded
}

// actionOrDefault names anonymous operations in errors and logs.
func actionOrDefault(action string) string {
	if action == "" {
		return "operation"
	}
	return action
}
