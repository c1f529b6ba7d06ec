package syncx

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrWaitTimeout is the sentinel matched by *WaitTimeoutError.
var ErrWaitTimeout = errors.New("syncx: wait group timed out")

// WaitTimeoutError is returned when a WaitTimeout elapses before the
// outstanding count reaches zero. It is a recoverable condition: callers
// are expected to log it and continue, not treat it as fatal.
type WaitTimeoutError struct {
	// Timeout is the wait budget that elapsed.
	Timeout time.Duration

	// Outstanding is the number of units still pending when the timeout
	// fired.
	Outstanding int
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("syncx: wait group timed out after %s with %d outstanding", e.Timeout, e.Outstanding)
}

// Is reports whether target is ErrWaitTimeout.
func (e *WaitTimeoutError) Is(target error) bool {
	return target == ErrWaitTimeout
}

// WaitGroup blocks waiters until every outstanding unit has signalled
// completion.
//
// Unlike sync.WaitGroup: Done with zero outstanding units is a no-op, Add
// may be called while a Wait is in progress (the new units are awaited
// too, since the outstanding set is evaluated lazily), and waits can be
// bounded by a timeout.
type WaitGroup struct {
	mu          sync.Mutex
	outstanding int
	zero        chan struct{} // closed while outstanding == 0
}

// NewWaitGroup creates an empty WaitGroup. Wait on an empty group returns
// immediately.
func NewWaitGroup() *WaitGroup {
	zero := make(chan struct{})
	close(zero)
	return &WaitGroup{zero: zero}
}

// Add registers n additional outstanding units. Non-positive n is ignored.
func (wg *WaitGroup) Add(n int) {
	if n <= 0 {
		return
	}

	wg.mu.Lock()
	defer wg.mu.Unlock()

	if wg.outstanding == 0 {
		wg.zero = make(chan struct{})
	}
	wg.outstanding += n
}

// Done resolves the oldest outstanding unit. Calling Done with no
// outstanding units is a no-op; the count never goes negative.
func (wg *WaitGroup) Done() {
	wg.mu.Lock()
	defer wg.mu.Unlock()

	if wg.outstanding == 0 {
		return
	}

	wg.outstanding--
	if wg.outstanding == 0 {
		close(wg.zero)
	}
}

// Outstanding returns the number of units not yet resolved.
func (wg *WaitGroup) Outstanding() int {
	wg.mu.Lock()
	defer wg.mu.Unlock()
	return wg.outstanding
}

// Wait blocks until the outstanding count reaches zero or ctx is
// cancelled. Units added while waiting are awaited as well.
func (wg *WaitGroup) Wait(ctx context.Context) error {
	for {
		wg.mu.Lock()
		if wg.outstanding == 0 {
			wg.mu.Unlock()
			return nil
		}
		zero := wg.zero
		wg.mu.Unlock()

		select {
		case <-zero:
			// Re-check: units may have been added since the close.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitTimeout behaves like Wait but fails with a *WaitTimeoutError if the
// outstanding count has not reached zero within timeout. A non-positive
// timeout means no bound.
func (wg *WaitGroup) WaitTimeout(ctx context.Context, timeout time.Duration) error {
	if timeout <= 0 {
		return wg.Wait(ctx)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		wg.mu.Lock()
		if wg.outstanding == 0 {
			wg.mu.Unlock()
			return nil
		}
		zero := wg.zero
		outstanding := wg.outstanding
		wg.mu.Unlock()

		select {
		case <-zero:
		case <-timer.C:
			return &WaitTimeoutError{Timeout: timeout, Outstanding: outstanding}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
