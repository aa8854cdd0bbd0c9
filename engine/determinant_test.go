// SPDX-License-Identifier: MIT

package engine_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/engine"
	"github.com/katalvlaran/parmatrix/ephemeral"
	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/pool"
	"github.com/katalvlaran/parmatrix/protocol"
)

func TestDeterminant_ClosedForm(t *testing.T) {
	t.Parallel()
	for name, e := range backends(t) {
		d, err := e.Determinant(context.Background(), mustRows(t, [][]float64{{-7.5}}))
		require.NoError(t, err, name)
		require.Equal(t, -7.5, d)

		d, err = e.Determinant(context.Background(), mustRows(t, [][]float64{{4, 3}, {6, 3}}))
		require.NoError(t, err, name)
		require.Equal(t, -6.0, d)
	}
}

func TestDeterminant_MatchesLU(t *testing.T) {
	t.Parallel()
	engines := backends(t)
	for n := 3; n <= 6; n++ {
		m := randDense(t, int64(100+n), n, n)
		want, err := matrix.Det(m)
		require.NoError(t, err)
		for name, e := range engines {
			t.Run(fmt.Sprintf("%s/n=%d", name, n), func(t *testing.T) {
				got, err := e.Determinant(context.Background(), m)
				require.NoError(t, err)
				require.InDelta(t, want, got, 1e-6)
			})
		}
	}
}

func TestDeterminant_KnownThreeByThree(t *testing.T) {
	t.Parallel()
	e, err := engine.New(ephemeral.New())
	require.NoError(t, err)
	d, err := e.Determinant(context.Background(), mustRows(t, [][]float64{{6, 1, 1}, {4, -2, 5}, {2, 8, 7}}))
	require.NoError(t, err)
	require.InDelta(t, -306, d, 1e-9)
}

func TestDeterminant_NonSquareBeforeDispatch(t *testing.T) {
	t.Parallel()
	cb := &countingBackend{inner: ephemeral.New()}
	e, err := engine.New(cb)
	require.NoError(t, err)

	_, err = e.Determinant(context.Background(), randDense(t, 1, 2, 3))
	require.ErrorIs(t, err, matrix.ErrNonSquare)
	require.Zero(t, cb.batches.Load())
}

func TestDeterminant_LUFallbackAboveLimit(t *testing.T) {
	t.Parallel()
	m := randDense(t, 9, 5, 5)
	want, err := matrix.Det(m)
	require.NoError(t, err)

	cb := &countingBackend{inner: ephemeral.New()}
	e, err := engine.New(cb, engine.WithMaxParallelOrder(4))
	require.NoError(t, err)
	got, err := e.Determinant(context.Background(), m)
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-9)
	require.Zero(t, cb.tasks.Load(), "LU path dispatches nothing")

	naive := &countingBackend{inner: ephemeral.New()}
	e, err = engine.New(naive, engine.WithMaxParallelOrder(4), engine.WithNaiveDeterminant())
	require.NoError(t, err)
	got, err = e.Determinant(context.Background(), m)
	require.NoError(t, err)
	require.InDelta(t, want, got, 1e-6)
	require.Positive(t, naive.tasks.Load())
}

func TestDeterminant_FanOutLeafCount(t *testing.T) {
	t.Parallel()
	// A dense 4x4 has 4·3 = 12 2x2 leaves, each one task.
	m := mustRows(t, [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {2, 6, 4, 8}, {3, 1, 1, 2}})
	cb := &countingBackend{inner: ephemeral.New()}
	e, err := engine.New(cb)
	require.NoError(t, err)

	_, err = e.Determinant(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, int32(12), cb.tasks.Load())
}

func TestDeterminant_FailedCofactorKeepsPoolWorkers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	exec := func(req protocol.Request) protocol.Reply {
		if req.Block[0][0] == 99 {
			return protocol.Reply{Index: req.Index, Op: req.Op, Err: protocol.ErrUnknownOp}
		}
		time.Sleep(50 * time.Millisecond)
		return protocol.Execute(req)
	}
	p, err := pool.New(3, pool.WithExecutor(exec))
	require.NoError(t, err)
	defer func() { require.NoError(t, p.Shutdown(ctx)) }()
	e, err := engine.New(p, engine.WithBackendName(pool.Backend))
	require.NoError(t, err)

	// Minor 0 is slow and healthy; minors 1 and 2 start with 99 and fail.
	_, err = e.Determinant(ctx, mustRows(t, [][]float64{{1, 1, 1}, {99, 2, 3}, {4, 5, 6}}))
	require.ErrorIs(t, err, protocol.ErrUnknownOp)
	require.Equal(t, pool.Stats{Size: 3, Alive: 3, Available: 3}, p.Stats())

	d, err := e.Determinant(ctx, mustRows(t, [][]float64{{6, 1, 1}, {4, -2, 5}, {2, 8, 7}}))
	require.NoError(t, err)
	require.InDelta(t, -306, d, 1e-9)
}
