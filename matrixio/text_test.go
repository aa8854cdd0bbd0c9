// SPDX-License-Identifier: MIT

package matrixio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/matrixio"
)

func named(t *testing.T, name string, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	require.NoError(t, m.SetName(name))

	return m
}

func TestWriteText_Format(t *testing.T) {
	var buf bytes.Buffer
	m := named(t, "A", [][]float64{{1, 2.5}, {-3, 4.126}})
	require.NoError(t, matrixio.WriteText(&buf, m))
	require.Equal(t, "A 2 2\n1.00 2.50\n-3.00 4.13\n", buf.String())
}

func TestReadText_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	m := named(t, "M", [][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, matrixio.WriteText(&buf, m))

	got, err := matrixio.ReadText(&buf)
	require.NoError(t, err)
	require.Equal(t, "M", got.Name())
	require.Equal(t, m.ToRows(), got.ToRows())
}

func TestReadAllText_Several(t *testing.T) {
	src := "A 1 2\n1 2\nB 2 1\n3\n4\n"
	ms, err := matrixio.ReadAllText(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, ms, 2)
	require.Equal(t, "A", ms[0].Name())
	require.Equal(t, [][]float64{{3}, {4}}, ms[1].ToRows())
}

func TestReadText_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"bad rows":    "A x 2\n",
		"zero cols":   "A 2 0\n",
		"short body":  "A 2 2\n1 2 3\n",
		"bad value":   "A 1 1\nabc\n",
		"long name":   strings.Repeat("n", matrix.MaxNameLen+1) + " 1 1\n1\n",
		"header only": "A 1\n",
		"wrapping":    "a 4294967296 4294967296 1.5",
		"too large":   "A 100000 100000\n1\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := matrixio.ReadText(strings.NewReader(src))
			require.ErrorIs(t, err, matrixio.ErrMalformed)
		})
	}
}

func TestWriteText_Rejects(t *testing.T) {
	var buf bytes.Buffer
	unnamed, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	require.ErrorIs(t, matrixio.WriteText(&buf, unnamed), matrix.ErrBadName)
	require.ErrorIs(t, matrixio.WriteText(&buf, named(t, "a b", [][]float64{{1}})), matrix.ErrBadName)
	require.ErrorIs(t, matrixio.WriteText(&buf, nil), matrix.ErrNilMatrix)
}
