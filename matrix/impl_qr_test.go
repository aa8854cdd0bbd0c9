// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/matrix"
)

func TestQR_Factorization(t *testing.T) {
	t.Parallel()
	a := RandDense(t, 3, 4, 4)
	Q, R, err := matrix.QR(a)
	require.NoError(t, err)

	qr, err := matrix.Mul(Q, R)
	require.NoError(t, err)
	requireAllClose(t, a, qr, 1e-9)

	qt, err := matrix.Transpose(Q)
	require.NoError(t, err)
	qtq, err := matrix.Mul(qt, Q)
	require.NoError(t, err)
	id, err := matrix.Identity(4)
	require.NoError(t, err)
	requireAllClose(t, id, qtq, 1e-9)

	for i := 1; i < 4; i++ {
		for j := 0; j < i; j++ {
			require.InDelta(t, 0, MustAt(t, R, i, j), 1e-12)
		}
	}
}

func TestQR_NonSquare(t *testing.T) {
	t.Parallel()
	_, _, err := matrix.QR(MustDense(t, 3, 2))
	require.ErrorIs(t, err, matrix.ErrNonSquare)
}

func TestQREigenvalues_Symmetric(t *testing.T) {
	t.Parallel()
	m := MustRows(t, [][]float64{{4, 1, 0}, {1, 3, 0}, {0, 0, 2}})
	vals, err := matrix.QREigenvalues(m, 1000, 1e-10)
	require.NoError(t, err)
	sort.Float64s(vals)

	s5 := math.Sqrt(5)
	require.InDelta(t, 2, vals[0], 1e-6)
	require.InDelta(t, (7-s5)/2, vals[1], 1e-6)
	require.InDelta(t, (7+s5)/2, vals[2], 1e-6)
}

func TestQREigenvalues_BadParams(t *testing.T) {
	t.Parallel()
	m := MustRows(t, [][]float64{{1, 0}, {0, 1}})
	_, err := matrix.QREigenvalues(m, 0, 1e-6)
	require.ErrorIs(t, err, matrix.ErrBadIterParams)
	_, err = matrix.QREigenvalues(m, 10, 0)
	require.ErrorIs(t, err, matrix.ErrBadIterParams)
}
