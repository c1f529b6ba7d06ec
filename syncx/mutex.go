package syncx

import (
	"context"
	"sync"
)

// Mutex is a mutual exclusion lock for asynchronous critical sections.
//
// Waiters queued behind a held lock are granted ownership in FIFO order.
// Acquisition honors context cancellation; a waiter that gives up is
// removed from the queue without disturbing the others.
//
// Mutex is not re-entrant: locking it again from within a held critical
// section deadlocks. Compose with a timeout policy or a deadline context
// if acquisition must be bounded.
//
// The zero value is an unlocked mutex.
type Mutex struct {
	mu      sync.Mutex
	locked  bool
	waiters []chan struct{}
}

// Lock acquires the mutex, blocking in FIFO order behind earlier waiters.
// It returns ctx.Err() if the context is cancelled before the lock is
// granted.
func (m *Mutex) Lock(ctx context.Context) error {
	m.mu.Lock()
	if !m.locked {
		m.locked = true
		m.mu.Unlock()
		return nil
	}

	grant := make(chan struct{})
	m.waiters = append(m.waiters, grant)
	m.mu.Unlock()

	select {
	case <-grant:
		return nil
	case <-ctx.Done():
		m.mu.Lock()
		for i, w := range m.waiters {
			if w == grant {
				m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
				m.mu.Unlock()
				return ctx.Err()
			}
		}
		m.mu.Unlock()
		// The grant raced the cancellation: ownership already passed to
		// this waiter, so hand it on.
		<-grant
		m.Unlock()
		return ctx.Err()
	}
}

// Unlock releases the mutex, waking the oldest queued waiter if any.
// Unlocking an unheld mutex panics.
func (m *Mutex) Unlock() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.locked {
		panic("syncx: unlock of unlocked Mutex")
	}

	if len(m.waiters) > 0 {
		grant := m.waiters[0]
		m.waiters = m.waiters[1:]
		// Ownership transfers directly; locked stays true.
		close(grant)
		return
	}

	m.locked = false
}

// Do runs op with the mutex held, releasing it when op settles regardless
// of outcome. The op's error is returned unchanged.
func (m *Mutex) Do(ctx context.Context, op func(context.Context) error) error {
	if err := m.Lock(ctx); err != nil {
		return err
	}
	defer m.Unlock()

	return op(ctx)
}

// Locked reports whether the mutex is currently held.
func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

// Waiters returns the number of callers queued behind the current holder.
func (m *Mutex) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}
