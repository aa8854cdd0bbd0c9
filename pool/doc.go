// Package pool implements the persistent worker pool: a fixed set of
// long-lived executor goroutines, each running protocol.Serve over its own
// request and reply channels.
//
// Lifecycle:
//
//	p, _ := pool.New(4, pool.WithLogger(log))
//	defer p.Shutdown(ctx)
//	w, _ := p.Acquire(ctx)   // blocks until a worker is available
//	rep, _ := w.Call(ctx, protocol.NewAdd(0, 1, 2))
//	_ = p.Release(w)
//	p.AgeOut(60 * time.Second) // host loop, retires idle workers
//
// Bookkeeping (available, alive, lastUsed) lives under one mutex. Invariant:
// available implies alive, and a worker is never handed out while
// unavailable. Workers that die (a panic in the executor, a timed-out call,
// age-out) are never dispatched again and never replaced; once every worker
// is dead Acquire fails with ErrNoWorkers.
package pool
