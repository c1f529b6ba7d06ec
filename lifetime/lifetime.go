package lifetime

import "context"

// Lifetime is the shape a resource must expose to be managed. Connection
// clients, HTTP clients, schedulers and queues all conform to it to be
// wrapped.
type Lifetime interface {
	// Init brings the resource into a usable state.
	Init(ctx context.Context) error

	// Teardown releases the resource. It must be safe to call in any
	// state, including before Init.
	Teardown(ctx context.Context) error
}

// Guarded is a Lifetime whose operations run through a guard that
// coordinates them with init and teardown.
type Guarded interface {
	Lifetime

	// Guard runs op once any in-flight init or teardown has settled and
	// the resource is initialized.
	Guard(ctx context.Context, op func(ctx context.Context) error) error
}

// Funcs adapts a pair of functions to the Lifetime interface. A nil
// function is a no-op.
type Funcs struct {
	InitFunc     func(ctx context.Context) error
	TeardownFunc func(ctx context.Context) error
}

func (f Funcs) Init(ctx context.Context) error {
	if f.InitFunc == nil {
		return nil
	}
	return f.InitFunc(ctx)
}

func (f Funcs) Teardown(ctx context.Context) error {
	if f.TeardownFunc == nil {
		return nil
	}
	return f.TeardownFunc(ctx)
}

// State represents the lifecycle state of a managed resource.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateTearingDown
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateTearingDown:
		return "tearing-down"
	default:
		return "unknown"
	}
}
