// SPDX-License-Identifier: MIT

package matrix_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/matrix"
)

func TestNewDense_InvalidDimensions(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct{ r, c int }{{0, 1}, {1, 0}, {-1, 3}} {
		_, err := matrix.NewDense(tc.r, tc.c)
		require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	}
}

func TestDense_AtSetBounds(t *testing.T) {
	t.Parallel()
	m := MustDense(t, 2, 3)
	require.NoError(t, m.Set(1, 2, 7.5))
	require.Equal(t, 7.5, MustAt(t, m, 1, 2))

	_, err := m.At(2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	require.ErrorIs(t, m.Set(0, 0, math.Inf(-1)), matrix.ErrNaNInf)
}

func TestFromRows(t *testing.T) {
	t.Parallel()
	m := MustRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 2, m.Cols())
	require.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, m.ToRows())

	_, err := matrix.FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrRaggedRows)
	_, err = matrix.FromRows(nil)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestDense_Names(t *testing.T) {
	t.Parallel()
	m, err := matrix.NewNamedDense("A", 1, 1)
	require.NoError(t, err)
	require.Equal(t, "A", m.Name())

	require.ErrorIs(t, m.SetName(""), matrix.ErrBadName)
	require.ErrorIs(t, m.SetName(strings.Repeat("x", matrix.MaxNameLen+1)), matrix.ErrBadName)
	require.NoError(t, m.SetName(strings.Repeat("x", matrix.MaxNameLen)))

	_, err = matrix.NewNamedDense("", 2, 2)
	require.ErrorIs(t, err, matrix.ErrBadName)
}

func TestDense_CopiesDoNotAlias(t *testing.T) {
	t.Parallel()
	m := MustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})

	row, err := m.Row(1)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6}, row)
	row[0] = 100
	require.Equal(t, 4.0, MustAt(t, m, 1, 0))

	col, err := m.Col(2)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 6, 9}, col)
	col[0] = 100
	require.Equal(t, 3.0, MustAt(t, m, 0, 2))

	c := m.Clone()
	require.NoError(t, c.Set(0, 0, -1))
	require.Equal(t, 1.0, MustAt(t, m, 0, 0))

	_, err = m.Row(3)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = m.Col(-1)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestDense_Minor(t *testing.T) {
	t.Parallel()
	m := MustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}})

	minor, err := m.Minor(0, 1)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{4, 6}, {7, 9}}, minor.ToRows())

	minor, err = m.Minor(2, 2)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 2}, {4, 5}}, minor.ToRows())

	_, err = m.Minor(3, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	row := MustRows(t, [][]float64{{1, 2}})
	_, err = row.Minor(0, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestNewDense_RejectsOversize(t *testing.T) {
	t.Parallel()
	for _, shape := range [][2]int{
		{math.MaxInt, 2},
		{math.MaxInt/2 + 1, 2}, // product wraps negative
		{matrix.MaxElements, 2},
		{matrix.MaxElements + 1, 1},
	} {
		_, err := matrix.NewDense(shape[0], shape[1])
		require.ErrorIs(t, err, matrix.ErrInvalidDimensions, "%dx%d", shape[0], shape[1])
	}

	m, err := matrix.NewDense(1024, 1024)
	require.NoError(t, err)
	require.Equal(t, 1024, m.Rows())
}

func TestIdentity(t *testing.T) {
	t.Parallel()
	id, err := matrix.Identity(3)
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, id.ToRows())

	_, err = matrix.Identity(0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

func TestDense_String(t *testing.T) {
	t.Parallel()
	m, err := matrix.NewNamedDense("M", 1, 2)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 1, 2.5))
	require.Equal(t, "M (1x2):\n[0, 2.5]\n", m.String())
}
