// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"time"

	"github.com/katalvlaran/parmatrix/protocol"
)

// Worker is one long-lived executor. Its state fields are guarded by the
// owning pool's mutex; the channels are owned by the worker goroutine.
type Worker struct {
	ID int

	requests chan protocol.Request
	replies  chan protocol.Reply
	done     chan struct{} // closed when the executor loop has returned

	pool      *Pool
	available bool
	alive     bool
	lastUsed  time.Time
}

func newWorker(id int, p *Pool, now time.Time) *Worker {
	return &Worker{
		ID:        id,
		requests:  make(chan protocol.Request, 1),
		replies:   make(chan protocol.Reply, 1),
		done:      make(chan struct{}),
		pool:      p,
		available: true,
		alive:     true,
		lastUsed:  now,
	}
}

// run is the worker goroutine body.
func (w *Worker) run() {
	defer close(w.done)
	if err := protocol.Serve(w.pool.opts.exec, w.requests, w.replies); err != nil {
		w.pool.markDead(w, err)
	}
}

// Call sends req to the worker and waits for its reply. The caller must hold
// the worker (Acquire) for the duration of the call.
//
// Errors:
//   - ErrWorkerDead if the loop ended before or while handling req.
//   - ErrCallTimeout past the pool's call timeout, or ctx.Err() on
//     cancellation. Either retires the worker, since a late reply would
//     otherwise be read by the next caller.
//   - ErrReplyMismatch if the reply belongs to another index.
func (w *Worker) Call(ctx context.Context, req protocol.Request) (protocol.Reply, error) {
	p := w.pool
	start := p.opts.now()

	var timeout <-chan time.Time
	if p.opts.callTimeout > 0 {
		t := time.NewTimer(p.opts.callTimeout)
		defer t.Stop()
		timeout = t.C
	}

	// Stage 1: hand over the request.
	select {
	case w.requests <- req:
	case <-w.done:
		p.markDead(w, ErrWorkerDead)
		return protocol.Reply{}, workerErrorf(w.ID, ErrWorkerDead)
	case <-ctx.Done():
		return protocol.Reply{}, workerErrorf(w.ID, ctx.Err())
	case <-timeout:
		return protocol.Reply{}, workerErrorf(w.ID, ErrCallTimeout)
	}

	// Stage 2: wait for the reply. Serve closes replies when it returns.
	select {
	case rep, ok := <-w.replies:
		if !ok {
			p.markDead(w, ErrWorkerDead)
			p.opts.metrics.ObserveTask(Backend, req.Op.String(), p.opts.now().Sub(start), true)
			return protocol.Reply{}, workerErrorf(w.ID, ErrWorkerDead)
		}
		failed := rep.Err != nil || rep.Index != req.Index
		p.opts.metrics.ObserveTask(Backend, req.Op.String(), p.opts.now().Sub(start), failed)
		if rep.Index != req.Index {
			return rep, workerErrorf(w.ID, ErrReplyMismatch)
		}
		return rep, nil
	case <-ctx.Done():
		p.retire(w, ctx.Err())
		return protocol.Reply{}, workerErrorf(w.ID, ctx.Err())
	case <-timeout:
		p.retire(w, ErrCallTimeout)
		return protocol.Reply{}, workerErrorf(w.ID, ErrCallTimeout)
	}
}
