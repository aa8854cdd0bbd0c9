// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/protocol"
	"github.com/katalvlaran/parmatrix/status"
)

// Pool is a fixed set of long-lived workers.
type Pool struct {
	mu      sync.Mutex
	workers []*Worker
	wake    chan struct{} // closed and replaced whenever a waiter may make progress
	closed  bool
	stopped chan struct{} // closed once shutdown has reaped every worker

	wg   sync.WaitGroup
	opts Options
	log  logrus.FieldLogger
}

// Stats is a consistent view of the pool's bookkeeping.
// Invariant: Available <= Alive <= Size, Busy = Alive - Available.
type Stats struct {
	Size      int
	Alive     int
	Available int
	Busy      int
}

// New starts size workers, all available and alive.
//
// Errors:
//   - ErrBadPoolSize when size < 1.
func New(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		return nil, ErrBadPoolSize
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	p := &Pool{
		workers: make([]*Worker, size),
		wake:    make(chan struct{}),
		stopped: make(chan struct{}),
		opts:    o,
		log:     o.logger.WithField("backend", Backend),
	}
	now := o.now()
	for i := range p.workers {
		w := newWorker(i, p, now)
		p.workers[i] = w
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run()
		}()
	}

	p.opts.metrics.SetWorkers(Backend, size, 0)
	p.log.WithField("size", size).Info("pool ready")
	p.opts.publisher.Publish(status.New("pool", status.PhaseReady, Backend, size, 0))

	return p, nil
}

// notifyLocked wakes every goroutine blocked in Acquire. Caller holds p.mu.
func (p *Pool) notifyLocked() {
	close(p.wake)
	p.wake = make(chan struct{})
}

func (p *Pool) statsLocked() Stats {
	s := Stats{Size: len(p.workers)}
	for _, w := range p.workers {
		if !w.alive {
			continue
		}
		s.Alive++
		if w.available {
			s.Available++
		}
	}
	s.Busy = s.Alive - s.Available

	return s
}

// Stats returns current counts.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.statsLocked()
}

// WorkerCounts returns (alive, busy) for status snapshots.
func (p *Pool) WorkerCounts() (total, active int) {
	s := p.Stats()

	return s.Alive, s.Busy
}

// Acquire returns an available, alive worker and marks it busy. It blocks
// until one is released, every worker is dead (ErrNoWorkers), the pool is
// shut down (ErrPoolClosed) or ctx ends.
func (p *Pool) Acquire(ctx context.Context) (*Worker, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		for _, w := range p.workers {
			if w.available && w.alive {
				w.available = false
				s := p.statsLocked()
				p.mu.Unlock()
				p.opts.metrics.SetWorkers(Backend, s.Alive, s.Busy)

				return w, nil
			}
		}
		if p.statsLocked().Alive == 0 {
			p.mu.Unlock()
			return nil, ErrNoWorkers
		}
		wake := p.wake
		p.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Release returns w to the pool and refreshes its idle clock.
//
// Errors:
//   - ErrAlreadyReleased if w is already available (no double count).
//   - ErrForeignWorker if w belongs to another pool.
//
// Releasing a dead worker is a no-op.
func (p *Pool) Release(w *Worker) error {
	if w == nil || w.pool != p {
		return ErrForeignWorker
	}
	p.mu.Lock()
	if !w.alive {
		p.mu.Unlock()
		return nil
	}
	if w.available {
		p.mu.Unlock()
		return workerErrorf(w.ID, ErrAlreadyReleased)
	}
	w.available = true
	w.lastUsed = p.opts.now()
	p.notifyLocked()
	s := p.statsLocked()
	p.mu.Unlock()

	p.opts.metrics.SetWorkers(Backend, s.Alive, s.Busy)

	return nil
}

// AgeOut retires every available, alive worker idle for longer than idle:
// it is sent EXIT and marked dead. Busy workers are never touched. Returns
// the number of workers retired.
func (p *Pool) AgeOut(idle time.Duration) int {
	p.mu.Lock()
	now := p.opts.now()
	var evicted []int
	for _, w := range p.workers {
		if !w.alive || !w.available || now.Sub(w.lastUsed) <= idle {
			continue
		}
		w.alive = false
		w.available = false
		select {
		case w.requests <- protocol.Exit():
		default:
			close(w.requests)
		}
		evicted = append(evicted, w.ID)
	}
	if len(evicted) > 0 {
		p.notifyLocked()
	}
	s := p.statsLocked()
	p.mu.Unlock()

	if len(evicted) == 0 {
		return 0
	}
	for _, id := range evicted {
		p.log.WithFields(logrus.Fields{"worker": id, "idle": idle}).Info("worker aged out")
	}
	p.opts.metrics.WorkersEvicted(len(evicted))
	p.opts.metrics.SetWorkers(Backend, s.Alive, s.Busy)
	p.opts.publisher.Publish(status.New("age-out", status.PhaseEvicted, Backend, s.Alive, s.Busy))

	return len(evicted)
}

// markDead records an unexpected termination. Idempotent.
func (p *Pool) markDead(w *Worker, cause error) {
	p.mu.Lock()
	if !w.alive {
		p.mu.Unlock()
		return
	}
	w.alive = false
	w.available = false
	p.notifyLocked()
	s := p.statsLocked()
	p.mu.Unlock()

	p.log.WithField("worker", w.ID).WithError(cause).Error("worker died")
	p.opts.metrics.WorkerDied()
	p.opts.metrics.SetWorkers(Backend, s.Alive, s.Busy)
	p.opts.publisher.Publish(status.New("worker", status.PhaseWorkerDied, Backend, s.Alive, s.Busy))
}

// retire takes an unresponsive worker out of service and closes its request
// channel so the loop ends once the pending request is done.
func (p *Pool) retire(w *Worker, cause error) {
	p.mu.Lock()
	if !w.alive {
		p.mu.Unlock()
		return
	}
	w.alive = false
	w.available = false
	close(w.requests)
	p.notifyLocked()
	s := p.statsLocked()
	p.mu.Unlock()

	p.log.WithField("worker", w.ID).WithError(cause).Warn("worker retired")
	p.opts.metrics.SetWorkers(Backend, s.Alive, s.Busy)
}

// Shutdown sends EXIT to every live worker and waits for all worker
// goroutines to end. Dead workers are skipped. The first call starts the
// stop; every call, including one made after an earlier call gave up on
// its ctx, waits for the same completion.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		var targets []*Worker
		for _, w := range p.workers {
			if w.alive {
				w.alive = false
				w.available = false
				targets = append(targets, w)
			}
		}
		p.notifyLocked()
		go p.stop(targets)
	}
	p.mu.Unlock()

	select {
	case <-p.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stop delivers EXIT to targets, reaps every worker goroutine and closes
// p.stopped.
func (p *Pool) stop(targets []*Worker) {
	for _, w := range targets {
		select {
		case w.requests <- protocol.Exit():
		case <-w.done:
		}
	}
	p.wg.Wait()

	p.opts.metrics.SetWorkers(Backend, 0, 0)
	p.log.WithField("stopped", len(targets)).Info("pool shutdown")
	p.opts.publisher.Publish(status.New("pool", status.PhaseShutdown, Backend, 0, 0))
	close(p.stopped)
}
