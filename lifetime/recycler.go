package lifetime

import (
	"context"
	"sync"
	"time"

	"github.com/lifeguard-go/lifeguard/observe"
)

// RecyclerConfig configures a Recycler. Zero values mean defaults.
type RecyclerConfig struct {
	// Name identifies the session in logs. Defaults to the empty string,
	// which inherits no name.
	Name string

	// MaxRequestsPerSession returns the request budget for one session.
	// It is re-evaluated on every completed call, so runtime
	// reconfiguration takes effect mid-session. A nil func or a return
	// of 0 disables request-count recycling.
	MaxRequestsPerSession func() int

	// SessionIdleTimeout returns how long the session may sit with no
	// in-flight calls before being recycled. Re-evaluated every time the
	// timer is armed. A nil func or a return of 0 disables idle
	// recycling.
	SessionIdleTimeout func() time.Duration

	// Logger receives recycling events. Defaults to a no-op logger.
	Logger observe.Logger
}

// Recycler layers session recycling on a Guarded resource: after a
// configured number of requests, or after sitting idle for a configured
// duration, it tears the resource down so the next guarded call starts a
// fresh session.
//
// Contract:
//   - Concurrency: safe for concurrent use; completion bookkeeping is
//     serialized through an internal lock so concurrent call completions
//     cannot race the timer or the counters.
//   - Control flow: a request-count recycle runs after the triggering
//     call has completed, never during it.
type Recycler struct {
	target      Guarded
	name        string
	maxRequests func() int
	idleTimeout func() time.Duration
	logger      observe.Logger

	mu           sync.Mutex
	requestCount int
	inFlight     int
	recycling    bool
	idleTimer    *time.Timer
}

// NewRecycler wraps target in a Recycler.
func NewRecycler(target Guarded, config RecyclerConfig) *Recycler {
	if config.Name == "" {
		config.Name = "session"
	}
	if config.Logger == nil {
		config.Logger = observe.NewNop()
	}

	return &Recycler{
		target:      target,
		name:        config.Name,
		maxRequests: config.MaxRequestsPerSession,
		idleTimeout: config.SessionIdleTimeout,
		logger:      config.Logger,
	}
}

// RequestCount returns the number of guarded calls started in the
// current session.
func (r *Recycler) RequestCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requestCount
}

// Init resets the session counters, delegates to the underlying Init,
// and arms the idle timer only after success.
func (r *Recycler) Init(ctx context.Context) error {
	r.mu.Lock()
	r.requestCount = 0
	r.recycling = false
	r.stopTimerLocked()
	r.mu.Unlock()

	if err := r.target.Init(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	if r.inFlight == 0 {
		r.armTimerLocked()
	}
	r.mu.Unlock()
	return nil
}

// Teardown always resets the counters and disarms the idle timer, then
// delegates to the underlying Teardown.
func (r *Recycler) Teardown(ctx context.Context) error {
	r.mu.Lock()
	r.requestCount = 0
	r.inFlight = 0
	r.recycling = false
	r.stopTimerLocked()
	r.mu.Unlock()

	return r.target.Teardown(ctx)
}

// Guard runs op through the underlying guard while tracking the session:
// call start cancels any pending idle timer and bumps the counters; call
// end decides whether to recycle.
func (r *Recycler) Guard(ctx context.Context, op func(ctx context.Context) error) error {
	r.callStart()
	defer r.callEnd(ctx)
	return r.target.Guard(ctx, op)
}

func (r *Recycler) callStart() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.inFlight++
	r.requestCount++
	r.stopTimerLocked()
}

// callEnd runs after every guarded call, success or failure. It either
// recycles the session (request budget spent) or re-arms the idle timer
// once the last in-flight call has drained.
func (r *Recycler) callEnd(ctx context.Context) {
	r.mu.Lock()

	if r.inFlight > 0 {
		r.inFlight--
	}

	recycle := false
	if max := r.maxRequestsPerSession(); max > 0 && r.requestCount >= max && !r.recycling {
		// Latch so concurrent completions recycle exactly once.
		r.recycling = true
		recycle = true
	} else if r.inFlight == 0 {
		r.armTimerLocked()
	}

	count := r.requestCount
	r.mu.Unlock()

	if recycle {
		r.logger.Info(ctx, "recycling session after request budget",
			observe.String("name", r.name), observe.Int("requests", count))
		r.Teardown(ctx)
	}
}

// onIdle fires when the idle timer expires. The session is recycled only
// if nothing is in flight by the time it runs.
func (r *Recycler) onIdle() {
	r.mu.Lock()
	if r.inFlight != 0 {
		r.mu.Unlock()
		return
	}
	r.idleTimer = nil
	r.mu.Unlock()

	ctx := context.Background()
	r.logger.Info(ctx, "recycling idle session", observe.String("name", r.name))
	r.Teardown(ctx)
}

func (r *Recycler) armTimerLocked() {
	d := r.sessionIdleTimeout()
	if d <= 0 {
		return
	}
	r.stopTimerLocked()
	r.idleTimer = time.AfterFunc(d, r.onIdle)
}

func (r *Recycler) stopTimerLocked() {
	if r.idleTimer != nil {
		r.idleTimer.Stop()
		r.idleTimer = nil
	}
}

func (r *Recycler) maxRequestsPerSession() int {
	if r.maxRequests == nil {
		return 0
	}
	return r.maxRequests()
}

func (r *Recycler) sessionIdleTimeout() time.Duration {
	if r.idleTimeout == nil {
		return 0
	}
	return r.idleTimeout()
}

var _ Guarded = (*Recycler)(nil)
