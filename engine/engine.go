// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/protocol"
	"github.com/katalvlaran/parmatrix/status"
)

// Dispatcher runs a batch of requests and returns replies in request order.
// *pool.Pool and *ephemeral.Dispatcher both satisfy it.
type Dispatcher interface {
	Dispatch(ctx context.Context, reqs []protocol.Request) ([]protocol.Reply, error)
}

// Counter is optionally implemented by a backend to report executor counts
// for status snapshots.
type Counter interface {
	WorkerCounts() (total, active int)
}

// Engine runs matrix operations on a backend.
type Engine struct {
	backend Dispatcher
	opts    Options
	log     logrus.FieldLogger
}

// New binds an engine to backend.
func New(backend Dispatcher, opts ...Option) (*Engine, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	return &Engine{
		backend: backend,
		opts:    o,
		log:     o.logger.WithField("backend", o.backendName),
	}, nil
}

// counts asks the backend for executor counts when it can report them.
func (e *Engine) counts() (int, int) {
	if c, ok := e.backend.(Counter); ok {
		return c.WorkerCounts()
	}

	return 0, 0
}

// track publishes a start snapshot and returns the matching finisher, which
// publishes complete or failed and logs the duration.
func (e *Engine) track(op string) func(error) {
	total, active := e.counts()
	start := status.New(op, status.PhaseStart, e.opts.backendName, total, active)
	e.opts.publisher.Publish(start)
	log := e.log.WithFields(logrus.Fields{"op": op, "id": start.ID})
	log.Debug("operation started")

	return func(err error) {
		phase := status.PhaseComplete
		if err != nil {
			phase = status.PhaseFailed
		}
		total, active := e.counts()
		snap := status.New(op, phase, e.opts.backendName, total, active)
		snap.ID = start.ID
		e.opts.publisher.Publish(snap)

		entry := log.WithField("elapsed", time.Since(start.Time))
		if err != nil {
			entry.WithError(err).Warn("operation failed")
			return
		}
		entry.Debug("operation complete")
	}
}

// run dispatches reqs and checks the reply count.
func (e *Engine) run(ctx context.Context, reqs []protocol.Request) ([]protocol.Reply, error) {
	reps, err := e.backend.Dispatch(ctx, reqs)
	if err != nil {
		return nil, err
	}
	if len(reps) != len(reqs) {
		return nil, ErrShortReply
	}

	return reps, nil
}

// Add computes a + b, one task per element.
func (e *Engine) Add(ctx context.Context, a, b matrix.Matrix) (*matrix.Dense, error) {
	return e.elementwise(ctx, opAdd, a, b, protocol.NewAdd)
}

// Subtract computes a - b, one task per element.
func (e *Engine) Subtract(ctx context.Context, a, b matrix.Matrix) (*matrix.Dense, error) {
	return e.elementwise(ctx, opSubtract, a, b, protocol.NewSubtract)
}

func (e *Engine) elementwise(
	ctx context.Context,
	tag string,
	a, b matrix.Matrix,
	build func(index int, x, y float64) protocol.Request,
) (res *matrix.Dense, err error) {
	if err = matrix.ValidateBinarySameShape(a, b); err != nil {
		return nil, engineErrorf(tag, err)
	}
	da, err := matrix.AsDense(a)
	if err != nil {
		return nil, engineErrorf(tag, err)
	}
	db, err := matrix.AsDense(b)
	if err != nil {
		return nil, engineErrorf(tag, err)
	}

	done := e.track(tag)
	defer func() { done(err) }()

	rows, cols := da.Rows(), da.Cols()
	ra, rb := da.ToRows(), db.ToRows()
	reqs := make([]protocol.Request, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			reqs = append(reqs, build(i*cols+j, ra[i][j], rb[i][j]))
		}
	}

	reps, err := e.run(ctx, reqs)
	if err != nil {
		return nil, engineErrorf(tag, err)
	}
	if res, err = fill(rows, cols, reps); err != nil {
		return nil, engineErrorf(tag, err)
	}

	return res, nil
}

// Multiply computes a × b, one row·column task per result element.
func (e *Engine) Multiply(ctx context.Context, a, b matrix.Matrix) (res *matrix.Dense, err error) {
	if err = matrix.ValidateMulCompatible(a, b); err != nil {
		return nil, engineErrorf(opMultiply, err)
	}
	da, err := matrix.AsDense(a)
	if err != nil {
		return nil, engineErrorf(opMultiply, err)
	}
	db, err := matrix.AsDense(b)
	if err != nil {
		return nil, engineErrorf(opMultiply, err)
	}

	done := e.track(opMultiply)
	defer func() { done(err) }()

	rows, cols := da.Rows(), db.Cols()
	rowVecs := da.ToRows()
	colVecs := make([][]float64, cols)
	for j := range colVecs {
		if colVecs[j], err = db.Col(j); err != nil {
			return nil, engineErrorf(opMultiply, err)
		}
	}

	reqs := make([]protocol.Request, 0, rows*cols)
	var req protocol.Request
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if req, err = protocol.NewDotProduct(i*cols+j, rowVecs[i], colVecs[j]); err != nil {
				return nil, engineErrorf(opMultiply, err)
			}
			reqs = append(reqs, req)
		}
	}

	reps, err := e.run(ctx, reqs)
	if err != nil {
		return nil, engineErrorf(opMultiply, err)
	}
	if res, err = fill(rows, cols, reps); err != nil {
		return nil, engineErrorf(opMultiply, err)
	}

	return res, nil
}

// MatVec computes m·v, one task per row.
func (e *Engine) MatVec(ctx context.Context, m matrix.Matrix, v []float64) (y []float64, err error) {
	if err = matrix.ValidateNotNil(m); err != nil {
		return nil, engineErrorf(opMatVec, err)
	}
	if err = matrix.ValidateVecLen(v, m.Cols()); err != nil {
		return nil, engineErrorf(opMatVec, err)
	}
	d, err := matrix.AsDense(m)
	if err != nil {
		return nil, engineErrorf(opMatVec, err)
	}

	done := e.track(opMatVec)
	defer func() { done(err) }()

	if y, err = e.matVec(ctx, d.ToRows(), v); err != nil {
		return nil, engineErrorf(opMatVec, err)
	}

	return y, nil
}

// matVec dispatches one OpMatVec task per row without status tracking.
func (e *Engine) matVec(ctx context.Context, rows [][]float64, v []float64) ([]float64, error) {
	reqs := make([]protocol.Request, len(rows))
	var err error
	for i, row := range rows {
		if reqs[i], err = protocol.NewMatVec(i, row, v); err != nil {
			return nil, err
		}
	}
	reps, err := e.run(ctx, reqs)
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(rows))
	for _, rep := range reps {
		y[rep.Index] = rep.Result
	}

	return y, nil
}

// fill places replies into a rows×cols Dense by their index.
func fill(rows, cols int, reps []protocol.Reply) (*matrix.Dense, error) {
	res, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for _, rep := range reps {
		if err = res.Set(rep.Index/cols, rep.Index%cols, rep.Result); err != nil {
			return nil, err
		}
	}

	return res, nil
}
