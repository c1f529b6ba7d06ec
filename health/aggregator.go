package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// AggregatorConfig configures the health aggregator. Zero values mean
// defaults.
type AggregatorConfig struct {
	// Timeout is the maximum time to wait for all checks.
	// Defaults to 10s.
	Timeout time.Duration
}

// Aggregator combines multiple health checkers into a single composite
// check. Concurrent probes of the same checker are deduplicated, so a
// readiness endpoint polled by several load balancers runs each
// underlying check once per burst.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string // registration order

	group singleflight.Group
}

// NewAggregator creates a new health aggregator.
func NewAggregator(config AggregatorConfig) *Aggregator {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Aggregator{
		config:   config,
		checkers: make(map[string]Checker),
	}
}

// Register adds a health checker under its own name. Registering the
// same name again replaces the checker.
func (a *Aggregator) Register(checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()

	name := checker.Name()
	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes a health checker.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.checkers, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// CheckerNames returns the names of all registered checkers in
// registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs a single named health check.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()

	if !ok {
		return Result{}, ErrCheckerNotFound
	}

	return a.runCheck(ctx, name, checker), nil
}

// CheckAll runs all registered health checks in parallel and returns
// the results keyed by checker name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	checkers := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		checkers[name] = checker
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(checkers))
	if len(checkers) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	var wg sync.WaitGroup
	var resMu sync.Mutex

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			result := a.runCheck(ctx, name, checker)
			resMu.Lock()
			results[name] = result
			resMu.Unlock()
		}(name, checker)
	}
	wg.Wait()

	return results
}

// OverallStatus folds a set of results into one status: unhealthy if any
// check is unhealthy, degraded if any is degraded, healthy otherwise.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusHealthy
	for _, result := range results {
		if result.Status > overall {
			overall = result.Status
		}
	}
	return overall
}

// runCheck executes one checker, sharing the result with any concurrent
// probe of the same name and converting a context timeout into an
// unhealthy result.
func (a *Aggregator) runCheck(ctx context.Context, name string, checker Checker) Result {
	start := time.Now()

	ch := a.group.DoChan(name, func() (any, error) {
		result := checker.Check(ctx)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		return result, nil
	})

	select {
	case res := <-ch:
		result := res.Val.(Result)
		result.Duration = time.Since(start)
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusUnhealthy,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker returns the aggregator itself as a single composite Checker.
func (a *Aggregator) Checker() Checker {
	return &aggregatorChecker{agg: a}
}

type aggregatorChecker struct {
	agg *Aggregator
}

func (c *aggregatorChecker) Name() string {
	return "aggregate"
}

func (c *aggregatorChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	details := make(map[string]any, len(results))
	for name, result := range results {
		details[name] = map[string]any{
			"status":  result.Status.String(),
			"message": result.Message,
		}
	}

	var message string
	switch status {
	case StatusHealthy:
		message = "all checks passed"
	case StatusDegraded:
		message = "some checks degraded"
	default:
		message = "some checks failed"
	}

	return Result{
		Status:    status,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}
