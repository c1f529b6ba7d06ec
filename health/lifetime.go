package health

import (
	"context"

	"github.com/lifeguard-go/lifeguard/lifetime"
	"github.com/lifeguard-go/lifeguard/resilience"
)

// LifetimeChecker reports the lifecycle state of a managed resource: a
// ready resource is healthy, one mid-transition is degraded, and an
// uninitialized one is unhealthy (it would pay an init on the next call).
type LifetimeChecker struct {
	mgr *lifetime.Manager
}

// NewLifetimeChecker creates a checker over mgr.
func NewLifetimeChecker(mgr *lifetime.Manager) *LifetimeChecker {
	return &LifetimeChecker{mgr: mgr}
}

func (c *LifetimeChecker) Name() string {
	return c.mgr.Name()
}

func (c *LifetimeChecker) Check(ctx context.Context) Result {
	state := c.mgr.State()
	details := map[string]any{
		"state":     state.String(),
		"in_flight": c.mgr.InFlight(),
	}

	switch state {
	case lifetime.StateReady:
		return Healthy("resource ready").WithDetails(details)
	case lifetime.StateInitializing, lifetime.StateTearingDown:
		return Degraded("lifecycle transition in progress").WithDetails(details)
	default:
		return Unhealthy("resource not initialized", nil).WithDetails(details)
	}
}

// CircuitChecker reports the state of a circuit breaker: closed is
// healthy, half-open is degraded (probing), open is unhealthy.
type CircuitChecker struct {
	name string
	cb   *resilience.CircuitBreaker
}

// NewCircuitChecker creates a checker over cb under the given name.
func NewCircuitChecker(name string, cb *resilience.CircuitBreaker) *CircuitChecker {
	return &CircuitChecker{name: name, cb: cb}
}

func (c *CircuitChecker) Name() string {
	return c.name
}

func (c *CircuitChecker) Check(ctx context.Context) Result {
	state := c.cb.State()
	metrics := c.cb.Metrics()
	details := map[string]any{
		"state":    state.String(),
		"failures": metrics.Failures,
	}
	if !metrics.OpenedAt.IsZero() {
		details["opened_at"] = metrics.OpenedAt
	}

	switch state {
	case resilience.StateClosed:
		return Healthy("circuit closed").WithDetails(details)
	case resilience.StateHalfOpen:
		return Degraded("circuit half-open, probing").WithDetails(details)
	default:
		return Unhealthy("circuit open", nil).WithDetails(details)
	}
}
