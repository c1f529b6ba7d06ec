package resilience

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means the circuit is operating normally.
	StateClosed State = iota
	// StateOpen means the circuit is rejecting all requests.
	StateOpen
	// StateHalfOpen means the circuit is probing whether the dependency
	// recovered.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	// Action names the protected operation in errors.
	Action string

	// FailureThreshold is the number of qualifying failures before the
	// circuit opens.
	// Default: 10
	FailureThreshold int

	// GracePeriod is how long the circuit stays open before a half-open
	// probe is admitted.
	// Default: 3 seconds
	GracePeriod time.Duration

	// IsFailure determines if an error counts against the threshold.
	// Default: all non-nil errors count.
	IsFailure func(err error) bool

	// Fallback, when set, is invoked instead of rejecting a call while
	// the circuit is open; its result replaces the rejection.
	Fallback Operation

	// OnStateChange is called when the circuit state changes.
	OnStateChange func(from, to State)
}

// CircuitBreaker implements the circuit breaker pattern.
//
// State advances closed → open → half-open → closed. Qualifying failures
// accumulate while the circuit is admitting calls; reaching the threshold
// opens it. While open, calls are rejected (or routed to the fallback)
// until the grace period elapses, at which point exactly one probe call
// is admitted: a successful probe closes the circuit and zeroes the
// failure count, a failed probe re-opens it immediately.
//
// All state mutations are serialized through an internal mutex which is
// never held across the operation itself.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 10
	}
	if config.GracePeriod <= 0 {
		config.GracePeriod = 3 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	config.Action = actionOrDefault(config.Action)

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs the operation through the circuit breaker. While the
// circuit is open the operation is not invoked: the call fails fast with
// a *CircuitOpenError, or the fallback's result is returned instead.
func (cb *CircuitBreaker) Execute(ctx context.Context, op Operation) error {
	if err := cb.beforeRequest(); err != nil {
		if cb.config.Fallback != nil {
			return cb.config.Fallback(ctx)
		}
		return err
	}

	err := op(ctx)
	cb.afterRequest(err)
	return err
}

// State returns the current effective circuit state. An open circuit
// whose grace period has elapsed reports half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && time.Since(cb.openedAt) >= cb.config.GracePeriod {
		return StateHalfOpen
	}
	return cb.state
}

// Reset resets the circuit breaker to closed with a zero failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = StateClosed
	cb.failures = 0
	cb.probing = false
	cb.mu.Unlock()

	cb.notify(from, StateClosed)
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()

	switch cb.state {
	case StateClosed:
		cb.mu.Unlock()
		return nil

	case StateOpen:
		if time.Since(cb.openedAt) < cb.config.GracePeriod {
			cb.mu.Unlock()
			return cb.openError()
		}
		// Grace period elapsed: admit this call as the single probe.
		cb.state = StateHalfOpen
		cb.probing = true
		cb.mu.Unlock()
		cb.notify(StateOpen, StateHalfOpen)
		return nil

	case StateHalfOpen:
		if cb.probing {
			// A probe is already in flight.
			cb.mu.Unlock()
			return cb.openError()
		}
		cb.probing = true
		cb.mu.Unlock()
		return nil
	}

	cb.mu.Unlock()
	return nil
}

func (cb *CircuitBreaker) afterRequest(err error) {
	cb.mu.Lock()
	from := cb.state

	switch {
	case err == nil:
		// Success resets the circuit only while not closed; closed-state
		// successes leave the accumulated count untouched.
		if cb.state != StateClosed {
			cb.state = StateClosed
			cb.failures = 0
			cb.probing = false
		}

	case cb.config.IsFailure(err):
		switch cb.state {
		case StateClosed:
			cb.failures++
			if cb.failures >= cb.config.FailureThreshold {
				cb.state = StateOpen
				cb.openedAt = time.Now()
			}
		case StateHalfOpen:
			// Failed probe: re-open and restart the grace period.
			cb.state = StateOpen
			cb.openedAt = time.Now()
			cb.probing = false
		}

	default:
		// Non-qualifying error: no bookkeeping, but release the probe
		// slot so the next call may probe again.
		if cb.state == StateHalfOpen {
			cb.probing = false
		}
	}

	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

func (cb *CircuitBreaker) openError() *CircuitOpenError {
	return &CircuitOpenError{
		Action:           cb.config.Action,
		FailureThreshold: cb.config.FailureThreshold,
		GracePeriod:      cb.config.GracePeriod,
	}
}

func (cb *CircuitBreaker) notify(from, to State) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

// Metrics returns current circuit breaker statistics.
func (cb *CircuitBreaker) Metrics() CircuitBreakerMetrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return CircuitBreakerMetrics{
		State:    cb.state,
		Failures: cb.failures,
		OpenedAt: cb.openedAt,
	}
}

// CircuitBreakerMetrics contains circuit breaker statistics.
type CircuitBreakerMetrics struct {
	State    State
	Failures int
	OpenedAt time.Time
}
