// SPDX-License-Identifier: MIT

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/config"
	"github.com/katalvlaran/parmatrix/logging"
	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/matrixio"
	"github.com/katalvlaran/parmatrix/status"
)

func testRuntime(t *testing.T, backend string) *runtime {
	t.Helper()
	logger = logging.Discard()
	appCfg = config.Defaults()
	rt, err := newRuntime(backend, appCfg, logger, status.NewBroadcaster(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rt.Close(context.Background())) })

	return rt
}

func writeMatrix(t *testing.T, dir, name string, rows [][]float64) string {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	require.NoError(t, m.SetName(name))
	path := filepath.Join(dir, name+".txt")
	require.NoError(t, matrixio.WriteFile(path, m))

	return path
}

func runREPL(t *testing.T, r *repl, script string) string {
	t.Helper()
	var buf bytes.Buffer
	r.out = &buf
	require.NoError(t, r.Run(context.Background(), strings.NewReader(script)))

	return buf.String()
}

func TestREPL_Session(t *testing.T) {
	for _, backend := range []string{backendPool, backendEphemeral} {
		t.Run(backend, func(t *testing.T) {
			r := newREPL(testRuntime(t, backend), nil, t.TempDir(), config.Defaults().Pool.MaxIdle, logging.Discard())
			out := runREPL(t, r, strings.Join([]string{
				"new A 2 2 1 2 3 4",
				"new B 2 2 5 6 7 8",
				"add C A B",
				"det A",
				"set A 0 0 10",
				"show A",
				"del B",
				"show B",
				"bogus",
				"exit",
				"new X 1 1 1",
			}, "\n"))

			require.Contains(t, out, "C (2x2):\n[6, 8]\n[10, 12]\n")
			require.Contains(t, out, "det(A) = -2\n")
			require.Contains(t, out, "A (2x2):\n[10, 2]\n")
			require.Contains(t, out, "matrix not found")
			require.Contains(t, out, `unknown command "bogus"`)
			require.Equal(t, []string{"A", "C"}, r.reg.Names())
		})
	}
}

func TestREPL_Usage(t *testing.T) {
	r := newREPL(testRuntime(t, backendEphemeral), nil, t.TempDir(), time.Minute, logging.Discard())
	out := runREPL(t, r, "new A 2\nnew A 1 2 1\nhelp\n")
	require.Contains(t, out, "usage: new <name> <rows> <cols>")
	require.Contains(t, out, "want 2 values, got 1")
	require.Contains(t, out, "saveall [dir]")
	require.Zero(t, r.reg.Len())
}

func TestREPL_HandlersUseCallerContext(t *testing.T) {
	for _, backend := range []string{backendPool, backendEphemeral} {
		t.Run(backend, func(t *testing.T) {
			r := newREPL(testRuntime(t, backend), &bytes.Buffer{}, t.TempDir(), time.Minute, logging.Discard())
			require.NoError(t, r.exec(context.Background(), []string{"new", "A", "2", "2", "1", "2", "3", "4"}))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			require.ErrorIs(t, r.exec(ctx, []string{"det", "A"}), context.Canceled)
			require.ErrorIs(t, r.exec(ctx, []string{"add", "C", "A", "A"}), context.Canceled)
			require.ErrorIs(t, r.exec(ctx, []string{"quit"}), errQuit)
			require.Equal(t, []string{"A"}, r.reg.Names())
		})
	}
}

func TestREPL_SaveAllLoadAll(t *testing.T) {
	dir := t.TempDir()
	r := newREPL(testRuntime(t, backendEphemeral), nil, dir, time.Minute, logging.Discard())
	out := runREPL(t, r, "new P 1 2 1.5 2\nnew Q 1 1 3\nsaveall\n")
	require.Contains(t, out, "saved 2 matrices")

	fresh := newREPL(r.rt, nil, dir, time.Minute, logging.Discard())
	out = runREPL(t, fresh, "loadall\nshow P\neigen Q\n")
	require.Contains(t, out, "loaded 2 matrices")
	require.Contains(t, out, "[1.5, 2]")
	require.Contains(t, out, "lambda[0] = 3.000000")
}

func TestREPL_AgeOutEachIteration(t *testing.T) {
	r := newREPL(testRuntime(t, backendPool), nil, t.TempDir(), -1, logging.Discard())
	out := runREPL(t, r, "stats\n")
	require.Contains(t, out, "backend=pool")
	require.Contains(t, out, "alive=0")
}

func TestRunBench(t *testing.T) {
	logger = logging.Discard()
	appCfg = config.Defaults()
	a, err := matrix.FromRows([][]float64{{2, 0, 1}, {1, 3, 2}, {1, 1, 1}})
	require.NoError(t, err)

	for _, op := range []string{"add", "sub", "mul", "det"} {
		rows, err := runBench(context.Background(), op, 2, a, a)
		require.NoError(t, err, op)
		require.Len(t, rows, 3)
		require.Equal(t, backendSequential, rows[0].Backend)
		for _, r := range rows[1:] {
			require.Less(t, r.MaxDiff, 1e-9, "%s on %s", op, r.Backend)
		}
	}

	_, err = runBench(context.Background(), "pow", 1, a, a)
	require.Error(t, err)
	_, err = runBench(context.Background(), "mul", 0, a, a)
	require.Error(t, err)
}

func TestPrintBench(t *testing.T) {
	var buf bytes.Buffer
	printBench(&buf, "mul", []benchRow{{Backend: backendSequential, Runs: 1}})
	require.Contains(t, buf.String(), "bench mul")
	require.Contains(t, buf.String(), "max |diff|")
}

func TestMaxAbsDiff(t *testing.T) {
	require.Equal(t, 0.5, maxAbsDiff([]float64{1, 2}, []float64{1.5, 2}))
	require.True(t, maxAbsDiff([]float64{1}, nil) > 1e300)
}

func TestRunWorkload(t *testing.T) {
	rt := testRuntime(t, backendEphemeral)
	a, err := matrix.FromRows([][]float64{{2, 1}, {1, 2}})
	require.NoError(t, err)
	for _, op := range []string{"add", "sub", "mul", "det", "eigen"} {
		require.NoError(t, runWorkload(context.Background(), rt, op, 2, a, a), op)
	}
	require.Error(t, runWorkload(context.Background(), rt, "pow", 1, a, a))
	require.Error(t, runWorkload(context.Background(), rt, "det", 0, a, a))
}

func TestRootCommand_AddAndDet(t *testing.T) {
	dir := t.TempDir()
	pa := writeMatrix(t, dir, "A", [][]float64{{1, 2}, {3, 4}})
	pb := writeMatrix(t, dir, "B", [][]float64{{1, 1}, {1, 1}})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	t.Cleanup(func() { rootCmd.SetOut(nil); rootCmd.SetArgs(nil) })

	rootCmd.SetArgs([]string{"add", pa, pb, "--backend", backendEphemeral, "--log-level", "error"})
	require.NoError(t, Execute())
	require.Equal(t, "result 2 2\n2.00 3.00\n4.00 5.00\n", buf.String())

	buf.Reset()
	rootCmd.SetArgs([]string{"det", pa, "--backend", backendPool, "--pool-size", "2", "--log-level", "error"})
	require.NoError(t, Execute())
	require.Equal(t, "det(A) = -2\n", buf.String())
	require.Equal(t, 2, appCfg.Pool.Size)

	rootCmd.SetArgs([]string{"det", pa, "--backend", "threads"})
	require.Error(t, Execute())
}
