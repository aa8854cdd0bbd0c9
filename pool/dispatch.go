// SPDX-License-Identifier: MIT

package pool

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/parmatrix/protocol"
)

// Dispatch runs every request on a pool worker and returns the replies in
// request order. At most Size requests are in flight; the loop blocks in
// Acquire until a worker frees up. The first failure (acquire, call, or a
// reply carrying an error) stops further requests from being issued; calls
// already issued run to their reply under ctx and release their worker
// before Dispatch returns. Only ctx, or the call timeout, retires workers.
func (p *Pool) Dispatch(ctx context.Context, reqs []protocol.Request) ([]protocol.Reply, error) {
	out := make([]protocol.Reply, len(reqs))
	// gctx gates new acquisitions only; in-flight calls keep ctx.
	g, gctx := errgroup.WithContext(ctx)

	var acquireErr error
	for i := range reqs {
		w, err := p.Acquire(gctx)
		if err != nil {
			acquireErr = err
			break
		}
		req := reqs[i]
		g.Go(func() error {
			defer func() {
				if err := p.Release(w); err != nil {
					p.log.WithField("worker", w.ID).WithError(err).Warn("release failed")
				}
			}()
			rep, err := w.Call(ctx, req)
			if err != nil {
				return err
			}
			if rep.Err != nil {
				return fmt.Errorf("task %d: %w", req.Index, rep.Err)
			}
			out[i] = rep

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if acquireErr != nil {
		return nil, acquireErr
	}

	return out, nil
}
