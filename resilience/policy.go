package resilience

import "context"

// Operation is a single asynchronous operation protected by a policy.
type Operation func(ctx context.Context) error

// Policy adds a resilience behavior around a single Operation. All
// policies in this package share this shape so they are freely chainable.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: policy failures are typed; operation errors pass through unchanged.
type Policy interface {
	Execute(ctx context.Context, op Operation) error
}

// PolicyFunc adapts an ordinary function to the Policy interface.
type PolicyFunc func(ctx context.Context, op Operation) error

// Execute calls f.
func (f PolicyFunc) Execute(ctx context.Context, op Operation) error {
	return f(ctx, op)
}

// Chain combines an ordered list of policies into a single invoker.
//
// The first policy is innermost and the last outermost: invoking the
// chain is equivalent to pn(... p2(p1(op))). An empty chain invokes the
// operation directly.
func Chain(policies ...Policy) Policy {
	chained := make([]Policy, len(policies))
	copy(chained, policies)
	return &chain{policies: chained}
}

type chain struct {
	policies []Policy
}

// Execute runs the operation through every policy in the chain,
// innermost-first.
func (c *chain) Execute(ctx context.Context, op Operation) error {
	execute := op

	for _, p := range c.policies {
		p, inner := p, execute
		execute = func(ctx context.Context) error {
			return p.Execute(ctx, inner)
		}
	}

	return execute(ctx)
}
