// Package syncx provides asynchronous synchronization primitives for
// coordinating concurrent operations.
//
// The package provides two primitives:
//
//   - Mutex: mutual exclusion over asynchronous critical sections with
//     FIFO fairness across queued waiters.
//
//   - WaitGroup: join synchronization that blocks until every outstanding
//     unit has signalled completion, bounded by an optional timeout.
//
// Unlike sync.Mutex, syncx.Mutex acquisition honors context cancellation
// and wakes waiters strictly in arrival order. Unlike sync.WaitGroup,
// syncx.WaitGroup tolerates Done without a matching Add, supports Add
// while a Wait is in progress, and can fail a Wait with a typed timeout
// error instead of blocking forever.
//
// # Usage
//
//	var mu syncx.Mutex
//	err := mu.Do(ctx, func(ctx context.Context) error {
//	    // exclusive access
//	    return nil
//	})
//
//	wg := syncx.NewWaitGroup()
//	wg.Add(2)
//	go func() { defer wg.Done(); work() }()
//	go func() { defer wg.Done(); work() }()
//	if err := wg.WaitTimeout(ctx, 30*time.Second); err != nil {
//	    // *WaitTimeoutError: recoverable, log and continue
//	}
package syncx
