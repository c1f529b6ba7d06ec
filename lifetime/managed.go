package lifetime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lifeguard-go/lifeguard/observe"
	"github.com/lifeguard-go/lifeguard/syncx"
)

const defaultDrainTimeout = 30 * time.Second

// ManagerConfig configures a Manager. Zero values mean defaults.
type ManagerConfig struct {
	// Name identifies the managed resource in logs and errors.
	// Defaults to "managed".
	Name string

	// DrainTimeout bounds how long init and teardown wait for in-flight
	// guarded calls to finish. A timed-out drain is logged and the
	// transition proceeds anyway. Defaults to 30s.
	DrainTimeout time.Duration

	// Logger receives lifecycle events. Defaults to a no-op logger.
	Logger observe.Logger
}

// pending is the shared handle for an in-flight init or teardown. err is
// written exactly once, before done is closed.
type pending struct {
	done chan struct{}
	err  error
}

// Manager wraps a Lifetime so initialization happens at most once and is
// shared across concurrent callers, teardown drains in-flight guarded
// calls before running, and any guarded call lazily initializes the
// resource.
//
// Contract:
//   - Concurrency: safe for concurrent use; the internal lock is the sole
//     serialization point for lifecycle transitions.
//   - Errors: Init failures propagate to every caller sharing the attempt
//     and leave the manager retryable. Teardown failures are logged and
//     swallowed; Teardown always returns nil.
type Manager struct {
	target       Lifetime
	name         string
	drainTimeout time.Duration
	logger       observe.Logger

	mu       sync.Mutex
	state    State
	initing  *pending
	tearing  *pending
	inflight *syncx.WaitGroup
}

// NewManager wraps target in a Manager.
func NewManager(target Lifetime, config ManagerConfig) *Manager {
	if config.Name == "" {
		config.Name = "managed"
	}
	if config.DrainTimeout == 0 {
		config.DrainTimeout = defaultDrainTimeout
	}
	if config.Logger == nil {
		config.Logger = observe.NewNop()
	}

	return &Manager{
		target:       target,
		name:         config.Name,
		drainTimeout: config.DrainTimeout,
		logger:       config.Logger,
		inflight:     syncx.NewWaitGroup(),
	}
}

// Name returns the configured resource name.
func (m *Manager) Name() string {
	return m.name
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// InFlight returns the number of guarded calls currently executing.
func (m *Manager) InFlight() int {
	return m.inflight.Outstanding()
}

// Init initializes the resource. Concurrent callers share a single
// in-flight attempt and all observe its result. Before the target's Init
// runs, in-flight guarded calls are drained (bounded by DrainTimeout; a
// drain timeout is logged and initialization proceeds). A failed Init
// resets the manager so a later call can retry.
func (m *Manager) Init(ctx context.Context) error {
	return m.init(ctx, true)
}

func (m *Manager) init(ctx context.Context, drain bool) error {
	for {
		m.mu.Lock()

		if m.state == StateReady {
			m.mu.Unlock()
			return nil
		}
		if p := m.initing; p != nil {
			m.mu.Unlock()
			return m.await(ctx, p)
		}
		if p := m.tearing; p != nil {
			m.mu.Unlock()
			if err := m.await(ctx, p); err != nil {
				return err
			}
			continue
		}

		p := &pending{done: make(chan struct{})}
		m.initing = p
		m.state = StateInitializing
		m.mu.Unlock()

		if drain {
			if err := m.drain(ctx, "init"); err != nil {
				return m.finishInit(p, err)
			}
		}

		m.logger.Debug(ctx, "initializing resource", observe.String("name", m.name))
		return m.finishInit(p, m.target.Init(ctx))
	}
}

// finishInit settles the pending init handle and transitions state.
func (m *Manager) finishInit(p *pending, err error) error {
	m.mu.Lock()
	if err != nil {
		m.state = StateUninitialized
	} else {
		m.state = StateReady
	}
	m.initing = nil
	m.mu.Unlock()

	p.err = err
	close(p.done)
	return err
}

// Teardown tears the resource down. Concurrent callers share a single
// in-flight attempt. In-flight guarded calls are drained first with the
// same bounded-wait semantics as Init. Errors from the target's Teardown
// are logged and swallowed so shutdown sequences never block; the manager
// always ends up uninitialized and a later Init starts fresh.
func (m *Manager) Teardown(ctx context.Context) error {
	for {
		m.mu.Lock()

		if p := m.tearing; p != nil {
			m.mu.Unlock()
			return m.await(ctx, p)
		}
		if p := m.initing; p != nil {
			m.mu.Unlock()
			// Let the in-flight init settle either way before tearing down.
			m.await(ctx, p)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}

		p := &pending{done: make(chan struct{})}
		m.tearing = p
		m.state = StateTearingDown
		m.mu.Unlock()

		if err := m.drain(ctx, "teardown"); err != nil {
			// Teardown still runs; a cancelled drain only shortens the wait.
			m.logger.Warn(ctx, "drain interrupted before teardown",
				observe.String("name", m.name), observe.Err(err))
		}

		if err := m.target.Teardown(ctx); err != nil {
			m.logger.Warn(ctx, "teardown failed",
				observe.String("name", m.name), observe.Err(err))
		}

		m.mu.Lock()
		m.state = StateUninitialized
		m.tearing = nil
		m.mu.Unlock()

		close(p.done)
		return nil
	}
}

// Guard runs op under the lifetime guard: it waits out any in-flight init
// or teardown, lazily initializes the resource if needed, registers the
// call with the drain wait-group, runs op, and deregisters regardless of
// outcome. An init failure observed while waiting propagates to the
// caller.
func (m *Manager) Guard(ctx context.Context, op func(ctx context.Context) error) error {
	for {
		m.mu.Lock()

		if p := m.initing; p != nil {
			m.mu.Unlock()
			if err := m.await(ctx, p); err != nil {
				return err
			}
			continue
		}
		if p := m.tearing; p != nil {
			m.mu.Unlock()
			if err := m.await(ctx, p); err != nil {
				return err
			}
			continue
		}

		if m.state == StateReady {
			// Register under the lock so a teardown starting afterwards
			// cannot miss this call when draining.
			m.inflight.Add(1)
			m.mu.Unlock()
			break
		}

		m.mu.Unlock()
		if err := m.init(ctx, false); err != nil {
			return err
		}
	}

	defer m.inflight.Done()
	return op(ctx)
}

// drain waits for in-flight guarded calls, bounded by the configured
// timeout. A timed-out drain is logged and reported as nil so the
// transition proceeds; context cancellation is returned to the caller.
func (m *Manager) drain(ctx context.Context, phase string) error {
	err := m.inflight.WaitTimeout(ctx, m.drainTimeout)
	if err == nil {
		return nil
	}

	var wte *syncx.WaitTimeoutError
	if errors.As(err, &wte) {
		m.logger.Warn(ctx, "drain timed out, proceeding",
			observe.String("name", m.name),
			observe.String("phase", phase),
			observe.Duration("timeout", wte.Timeout),
			observe.Int("outstanding", wte.Outstanding))
		return nil
	}
	return err
}

// await blocks until p settles or ctx is cancelled.
func (m *Manager) await(ctx context.Context, p *pending) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Guarded = (*Manager)(nil)
