// SPDX-License-Identifier: MIT

package engine_test

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/engine"
	"github.com/katalvlaran/parmatrix/ephemeral"
	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/pool"
	"github.com/katalvlaran/parmatrix/protocol"
	"github.com/katalvlaran/parmatrix/status"
)

// countingBackend counts batches and task units passed to the inner backend.
type countingBackend struct {
	inner   engine.Dispatcher
	batches atomic.Int32
	tasks   atomic.Int32
}

func (c *countingBackend) Dispatch(ctx context.Context, reqs []protocol.Request) ([]protocol.Reply, error) {
	c.batches.Add(1)
	c.tasks.Add(int32(len(reqs)))

	return c.inner.Dispatch(ctx, reqs)
}

// backends returns one engine per backend, pool shut down on cleanup.
func backends(t *testing.T, opts ...engine.Option) map[string]*engine.Engine {
	t.Helper()
	p, err := pool.New(4)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, p.Shutdown(context.Background())) })

	pe, err := engine.New(p, append(opts, engine.WithBackendName(pool.Backend))...)
	require.NoError(t, err)
	ee, err := engine.New(ephemeral.New(), append(opts, engine.WithBackendName(ephemeral.Backend))...)
	require.NoError(t, err)

	return map[string]*engine.Engine{pool.Backend: pe, ephemeral.Backend: ee}
}

func mustRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

func randDense(t *testing.T, seed int64, r, c int) *matrix.Dense {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m, err := matrix.NewDense(r, c)
	require.NoError(t, err)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			require.NoError(t, m.Set(i, j, rng.Float64()*10-5))
		}
	}

	return m
}

func requireClose(t *testing.T, want, got *matrix.Dense, tol float64) {
	t.Helper()
	require.Equal(t, want.Rows(), got.Rows())
	require.Equal(t, want.Cols(), got.Cols())
	w, g := want.ToRows(), got.ToRows()
	for i := range w {
		require.InDeltaSlice(t, w[i], g[i], tol, "row %d", i)
	}
}

func TestNew_NilBackend(t *testing.T) {
	t.Parallel()
	_, err := engine.New(nil)
	require.ErrorIs(t, err, engine.ErrNilBackend)
}

func TestElementwise_BackendsAgree(t *testing.T) {
	t.Parallel()
	a := randDense(t, 1, 5, 7)
	b := randDense(t, 2, 5, 7)
	wantSum, err := matrix.Add(a, b)
	require.NoError(t, err)
	wantDiff, err := matrix.Sub(a, b)
	require.NoError(t, err)

	ctx := context.Background()
	for name, e := range backends(t) {
		sum, err := e.Add(ctx, a, b)
		require.NoError(t, err, name)
		requireClose(t, wantSum, sum, 1e-9)

		diff, err := e.Subtract(ctx, a, b)
		require.NoError(t, err, name)
		requireClose(t, wantDiff, diff, 1e-9)
	}
}

func TestAdd_DimensionMismatchBeforeDispatch(t *testing.T) {
	t.Parallel()
	cb := &countingBackend{inner: ephemeral.New()}
	e, err := engine.New(cb)
	require.NoError(t, err)

	a := mustRows(t, [][]float64{{1, 2}})
	b := mustRows(t, [][]float64{{1}, {2}})
	_, err = e.Add(context.Background(), a, b)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = e.Subtract(context.Background(), a, b)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = e.Multiply(context.Background(), a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	require.Zero(t, cb.batches.Load())
}

func TestMultiply_EphemeralIdentity(t *testing.T) {
	t.Parallel()
	e, err := engine.New(ephemeral.New())
	require.NoError(t, err)
	id, err := matrix.Identity(2)
	require.NoError(t, err)
	b := mustRows(t, [][]float64{{3, -1}, {0.5, 8}})

	got, err := e.Multiply(context.Background(), id, b)
	require.NoError(t, err)
	require.Equal(t, b.ToRows(), got.ToRows())
}

func TestMultiply_BackendsAgree(t *testing.T) {
	t.Parallel()
	a := randDense(t, 3, 4, 6)
	b := randDense(t, 4, 6, 3)
	want, err := matrix.Mul(a, b)
	require.NoError(t, err)

	for name, e := range backends(t) {
		got, err := e.Multiply(context.Background(), a, b)
		require.NoError(t, err, name)
		requireClose(t, want, got, 1e-9)
	}
}

func TestMatVec(t *testing.T) {
	t.Parallel()
	m := mustRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	for name, e := range backends(t) {
		y, err := e.MatVec(context.Background(), m, []float64{1, -1})
		require.NoError(t, err, name)
		require.Equal(t, []float64{-1, -1, -1}, y)

		_, err = e.MatVec(context.Background(), m, []float64{1})
		require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	}
}

func TestBackendFailurePropagates(t *testing.T) {
	t.Parallel()
	crashy := func(protocol.Request) protocol.Reply { panic("fault") }
	e, err := engine.New(ephemeral.New(ephemeral.WithExecutor(crashy)))
	require.NoError(t, err)

	a := mustRows(t, [][]float64{{1, 2}})
	_, err = e.Add(context.Background(), a, a)
	require.ErrorIs(t, err, protocol.ErrExecutorCrashed)
}

func TestStatusSnapshotsShareID(t *testing.T) {
	t.Parallel()
	b := status.NewBroadcaster()
	ch, cancel := b.Subscribe(4)
	defer cancel()

	e, err := engine.New(ephemeral.New(), engine.WithStatus(b), engine.WithBackendName("ephemeral"))
	require.NoError(t, err)
	a := mustRows(t, [][]float64{{1}})
	_, err = e.Add(context.Background(), a, a)
	require.NoError(t, err)

	start, complete := <-ch, <-ch
	require.Equal(t, status.PhaseStart, start.Phase)
	require.Equal(t, status.PhaseComplete, complete.Phase)
	require.Equal(t, "Add", start.Operation)
	require.Equal(t, "ephemeral", complete.Backend)
	require.Equal(t, start.ID, complete.ID)
}

func TestOptionsPanicOnInvalid(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { engine.WithMaxIterations(0) })
	require.Panics(t, func() { engine.WithTolerance(0) })
	require.Panics(t, func() { engine.WithTolerance(math.Inf(1)) })
	require.Panics(t, func() { engine.WithMaxParallelOrder(1) })
}
