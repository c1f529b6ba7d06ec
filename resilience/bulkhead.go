package resilience

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// Action names the protected operation in errors.
	Action string

	// MaxConcurrent is the maximum number of concurrent executions.
	// Default: 50
	MaxConcurrent int

	// FailFast rejects callers immediately with *BulkheadFullError when
	// at capacity instead of queueing them.
	// Default: false (callers block in FIFO order until a slot frees)
	FailFast bool

	// MaxWait bounds how long a blocked caller waits for a slot; the
	// bound elapsing fails the call with *BulkheadTimeoutError.
	// Default: 0 (wait indefinitely)
	MaxWait time.Duration

	// OnBlock is called when a caller is about to queue behind a full
	// bulkhead.
	OnBlock func(action string, active int)
}

// Bulkhead caps concurrent executions.
//
// Blocked callers are woken in FIFO order as slots free, and a slot is
// released on every path — success, failure or abandonment — via
// guaranteed cleanup in Execute.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu        sync.Mutex
	active    int
	maxActive int
	rejected  int64
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	// Apply defaults
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 50
	}
	config.Action = actionOrDefault(config.Action)

	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Acquire claims a slot in the bulkhead. At capacity it either fails fast
// with *BulkheadFullError or blocks FIFO behind earlier waiters,
// optionally bounded by MaxWait. Every successful Acquire must be paired
// with a Release.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	// Fast path: free slot available.
	if b.sem.TryAcquire(1) {
		b.claimed()
		return nil
	}

	if b.config.FailFast {
		b.mu.Lock()
		b.rejected++
		active := b.active
		b.mu.Unlock()

		return &BulkheadFullError{
			Action:        b.config.Action,
			MaxConcurrent: b.config.MaxConcurrent,
			Active:        active,
		}
	}

	if b.config.OnBlock != nil {
		b.mu.Lock()
		active := b.active
		b.mu.Unlock()
		b.config.OnBlock(b.config.Action, active)
	}

	waitCtx := ctx
	if b.config.MaxWait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, b.config.MaxWait)
		defer cancel()
	}

	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		b.mu.Lock()
		b.rejected++
		b.mu.Unlock()

		return &BulkheadTimeoutError{Action: b.config.Action, Timeout: b.config.MaxWait}
	}

	b.claimed()
	return nil
}

// Release frees a slot, waking the oldest blocked caller if any.
func (b *Bulkhead) Release() {
	b.sem.Release(1)

	b.mu.Lock()
	b.active--
	b.mu.Unlock()
}

// Execute runs the operation within the bulkhead, releasing the slot
// regardless of outcome.
func (b *Bulkhead) Execute(ctx context.Context, op Operation) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

func (b *Bulkhead) claimed() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
}

// Metrics returns current bulkhead statistics.
func (b *Bulkhead) Metrics() BulkheadMetrics {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadMetrics{
		Active:        b.active,
		MaxActive:     b.maxActive,
		Available:     b.config.MaxConcurrent - b.active,
		MaxConcurrent: b.config.MaxConcurrent,
		Rejected:      b.rejected,
	}
}

// BulkheadMetrics contains bulkhead statistics.
type BulkheadMetrics struct {
	Active        int
	MaxActive     int
	Available     int
	MaxConcurrent int
	Rejected      int64
}
