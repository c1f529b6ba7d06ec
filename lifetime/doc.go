// Package lifetime coordinates the lifecycle of lazily-initialized shared
// resources such as connection pools, HTTP clients and schedulers.
//
// A Manager wraps anything implementing Lifetime so that initialization
// happens at most once and is shared across concurrent callers, teardown
// drains in-flight guarded calls first, and any guarded call triggers lazy
// initialization transparently:
//
//	mgr := lifetime.NewManager(client, lifetime.ManagerConfig{Name: "redis"})
//	err := mgr.Guard(ctx, func(ctx context.Context) error {
//		return client.Ping(ctx)
//	})
//
// A Recycler layers session recycling on top: it tears the resource down
// automatically after a configurable number of requests or a period of
// idleness, so the next guarded call starts a fresh session.
//
// Decoration is plain composition. A caller exposes a typed wrapper whose
// guarded methods go through Guard and whose remaining methods forward to
// the wrapped client directly; no reflection is involved.
package lifetime
