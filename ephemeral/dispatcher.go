// SPDX-License-Identifier: MIT

package ephemeral

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/parmatrix/protocol"
)

// Dispatcher spawns one executor per request.
type Dispatcher struct {
	opts Options
	log  logrus.FieldLogger
	live atomic.Int64
}

// completion is the notification one executor sends when it is done.
type completion struct {
	pos int
	rep protocol.Reply
	err error
}

// New returns a ready Dispatcher. It holds no goroutines between calls.
func New(opts ...Option) *Dispatcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Dispatcher{opts: o, log: o.logger.WithField("backend", Backend)}
}

// Live returns the number of executors currently running.
func (d *Dispatcher) Live() int { return int(d.live.Load()) }

// WorkerCounts returns (live, live): every live executor is busy.
func (d *Dispatcher) WorkerCounts() (total, active int) {
	n := d.Live()

	return n, n
}

// reserve claims a live slot, honouring the max-live limit.
func (d *Dispatcher) reserve() bool {
	for {
		cur := d.live.Load()
		if d.opts.maxLive > 0 && cur >= int64(d.opts.maxLive) {
			return false
		}
		if d.live.CompareAndSwap(cur, cur+1) {
			d.opts.metrics.SetWorkers(Backend, int(cur+1), int(cur+1))
			return true
		}
	}
}

func (d *Dispatcher) unreserve() {
	n := d.live.Add(-1)
	d.opts.metrics.SetWorkers(Backend, int(n), int(n))
}

// Dispatch runs every request on its own executor and returns the replies
// in request order.
//
// Implementation:
//   - Stage 1: for each request reserve a slot, preload a channel with the
//     request and EXIT, start protocol.Serve under an errgroup.
//   - Stage 2: count one completion per spawned executor.
//   - Stage 3: reap every executor (Wait), then report.
//
// Errors:
//   - ErrSpawnLimit, a spawn-guard error or ctx.Err() stop spawning; the
//     executors already started are still collected and reaped.
//   - Otherwise the error of the lowest failing position
//     (protocol.ErrExecutorCrashed, ErrNoReply, or a Reply.Err).
func (d *Dispatcher) Dispatch(ctx context.Context, reqs []protocol.Request) ([]protocol.Reply, error) {
	n := len(reqs)
	out := make([]protocol.Reply, n)
	errs := make([]error, n)
	completions := make(chan completion, n)

	var (
		g        errgroup.Group
		spawned  int
		spawnErr error
	)

	// Stage 1: spawn.
	for pos := range reqs {
		if err := ctx.Err(); err != nil {
			spawnErr = err
			break
		}
		if d.opts.guard != nil {
			if err := d.opts.guard(pos); err != nil {
				spawnErr = fmt.Errorf("spawn %d: %w", pos, err)
				break
			}
		}
		if !d.reserve() {
			spawnErr = fmt.Errorf("spawn %d (limit %d): %w", pos, d.opts.maxLive, ErrSpawnLimit)
			break
		}

		in := make(chan protocol.Request, 2)
		in <- reqs[pos]
		in <- protocol.Exit()
		replies := make(chan protocol.Reply, 1)
		op := reqs[pos].Op.String()
		start := time.Now()

		g.Go(func() error {
			defer d.unreserve()
			err := protocol.Serve(d.opts.exec, in, replies)
			rep, ok := <-replies
			if err == nil && !ok {
				err = ErrNoReply
			}
			d.opts.metrics.ObserveTask(Backend, op, time.Since(start), err != nil || rep.Err != nil)
			completions <- completion{pos: pos, rep: rep, err: err}

			if err != nil {
				return fmt.Errorf("executor %d: %w", pos, err)
			}
			return nil
		})
		spawned++
	}

	// Stage 2: counted completion signal.
	received := 0
	for received < spawned {
		c := <-completions
		received++
		switch {
		case c.err != nil:
			errs[c.pos] = c.err
		case c.rep.Err != nil:
			errs[c.pos] = c.rep.Err
		default:
			out[c.pos] = c.rep
		}
	}

	// Stage 3: reap. Wait reports the first executor to terminate abnormally;
	// the batch error is still chosen by position below.
	if err := g.Wait(); err != nil {
		d.log.WithError(err).Warn("executor terminated abnormally")
	}

	if spawnErr != nil {
		d.log.WithFields(logrus.Fields{"spawned": spawned, "requested": n}).WithError(spawnErr).Warn("spawn failed, batch aborted")
		return nil, spawnErr
	}
	for pos, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", reqs[pos].Index, err)
		}
	}
	d.log.WithField("tasks", n).Debug("batch complete")

	return out, nil
}
