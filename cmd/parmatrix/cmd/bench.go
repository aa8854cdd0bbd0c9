// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/metrics"
	"github.com/katalvlaran/parmatrix/status"
)

const backendSequential = "sequential"

var (
	benchOp   string
	benchRuns int
)

// benchRow is one line of the comparison table.
type benchRow struct {
	Backend string
	Runs    int
	Mean    time.Duration
	MaxDiff float64 // against the sequential result
}

var benchCmd = &cobra.Command{
	Use:   "bench <A> [B]",
	Short: "Compare sequential, pool and ephemeral execution of one operation",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadMatrix(args[0])
		if err != nil {
			return err
		}
		b := a
		if len(args) == 2 {
			if b, err = loadMatrix(args[1]); err != nil {
				return err
			}
		}
		rows, err := runBench(cmd.Context(), benchOp, benchRuns, a, b)
		if err != nil {
			return err
		}
		printBench(cmd.OutOrStdout(), benchOp, rows)

		return nil
	},
}

// workload computes op once and flattens the result for comparison.
type workload func(ctx context.Context) ([]float64, error)

func flatten(m *matrix.Dense, err error) ([]float64, error) {
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, m.Rows()*m.Cols())
	for _, row := range m.ToRows() {
		out = append(out, row...)
	}

	return out, nil
}

func scalar(v float64, err error) ([]float64, error) {
	if err != nil {
		return nil, err
	}

	return []float64{v}, nil
}

func sequentialWorkload(op string, a, b *matrix.Dense) (workload, error) {
	switch op {
	case "add":
		return func(context.Context) ([]float64, error) { return flatten(matrix.Add(a, b)) }, nil
	case "sub":
		return func(context.Context) ([]float64, error) { return flatten(matrix.Sub(a, b)) }, nil
	case "mul":
		return func(context.Context) ([]float64, error) { return flatten(matrix.Mul(a, b)) }, nil
	case "det":
		return func(context.Context) ([]float64, error) { return scalar(matrix.Det(a)) }, nil
	default:
		return nil, fmt.Errorf("unknown bench op %q (want add, sub, mul or det)", op)
	}
}

func engineWorkload(op string, rt *runtime, a, b *matrix.Dense) workload {
	e := rt.engine
	switch op {
	case "add":
		return func(ctx context.Context) ([]float64, error) { return flatten(e.Add(ctx, a, b)) }
	case "sub":
		return func(ctx context.Context) ([]float64, error) { return flatten(e.Subtract(ctx, a, b)) }
	case "mul":
		return func(ctx context.Context) ([]float64, error) { return flatten(e.Multiply(ctx, a, b)) }
	default:
		return func(ctx context.Context) ([]float64, error) { return scalar(e.Determinant(ctx, a)) }
	}
}

// measure runs w runs times and returns the mean duration and last result.
func measure(ctx context.Context, w workload, runs int) (time.Duration, []float64, error) {
	var (
		last []float64
		err  error
	)
	start := time.Now()
	for i := 0; i < runs; i++ {
		if last, err = w(ctx); err != nil {
			return 0, nil, err
		}
	}

	return time.Since(start) / time.Duration(runs), last, nil
}

// runBench times op on the sequential kernels and on both backends.
func runBench(ctx context.Context, op string, runs int, a, b *matrix.Dense) ([]benchRow, error) {
	if runs < 1 {
		return nil, fmt.Errorf("runs must be >= 1, got %d", runs)
	}
	seq, err := sequentialWorkload(op, a, b)
	if err != nil {
		return nil, err
	}
	mean, want, err := measure(ctx, seq, runs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", backendSequential, err)
	}
	rows := []benchRow{{Backend: backendSequential, Runs: runs, Mean: mean}}

	bc := status.NewBroadcaster()
	defer bc.Close()
	m := metrics.New()
	for _, name := range []string{backendPool, backendEphemeral} {
		rt, err := newRuntime(name, appCfg, logger, bc, m)
		if err != nil {
			return nil, err
		}
		mean, got, err := measure(ctx, engineWorkload(op, rt, a, b), runs)
		if cerr := rt.Close(context.Background()); err == nil {
			err = cerr
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		rows = append(rows, benchRow{Backend: name, Runs: runs, Mean: mean, MaxDiff: maxAbsDiff(want, got)})
	}

	return rows, nil
}

func maxAbsDiff(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var worst float64
	for i := range a {
		worst = math.Max(worst, math.Abs(a[i]-b[i]))
	}

	return worst
}

func printBench(w io.Writer, op string, rows []benchRow) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("backend", "runs", "mean", "max |diff|")
	for _, r := range rows {
		t.Row(r.Backend, fmt.Sprint(r.Runs), r.Mean.String(), fmt.Sprintf("%.3g", r.MaxDiff))
	}
	fmt.Fprintf(w, "bench %s\n%s\n", op, t.String())
}

func init() {
	benchCmd.Flags().StringVar(&benchOp, "op", "mul", "operation: add|sub|mul|det")
	benchCmd.Flags().IntVar(&benchRuns, "runs", 3, "repetitions per backend")
	rootCmd.AddCommand(benchCmd)
}
