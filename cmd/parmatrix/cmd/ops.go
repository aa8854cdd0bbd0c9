// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/parmatrix/engine"
	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/matrixio"
	"github.com/katalvlaran/parmatrix/metrics"
	"github.com/katalvlaran/parmatrix/status"
)

var (
	outFile  string
	eigenK   int
	resultNm string
)

// binaryOp runs one two-operand engine operation.
type binaryOp func(ctx context.Context, e *engine.Engine, a, b matrix.Matrix) (*matrix.Dense, error)

var binaryOps = map[string]binaryOp{
	"add": func(ctx context.Context, e *engine.Engine, a, b matrix.Matrix) (*matrix.Dense, error) {
		return e.Add(ctx, a, b)
	},
	"sub": func(ctx context.Context, e *engine.Engine, a, b matrix.Matrix) (*matrix.Dense, error) {
		return e.Subtract(ctx, a, b)
	},
	"mul": func(ctx context.Context, e *engine.Engine, a, b matrix.Matrix) (*matrix.Dense, error) {
		return e.Multiply(ctx, a, b)
	},
}

func newBinaryCmd(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <A> <B>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				a, err := loadMatrix(args[0])
				if err != nil {
					return err
				}
				b, err := loadMatrix(args[1])
				if err != nil {
					return err
				}
				res, err := binaryOps[use](ctx, rt.engine, a, b)
				if err != nil {
					return err
				}

				return emit(cmd.OutOrStdout(), res)
			})
		},
	}
}

var detCmd = &cobra.Command{
	Use:   "det <A>",
	Short: "Determinant by cofactor fan-out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			a, err := loadMatrix(args[0])
			if err != nil {
				return err
			}
			det, err := rt.engine.Determinant(ctx, a)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "det(%s) = %g\n", a.Name(), det)

			return nil
		})
	},
}

var eigenCmd = &cobra.Command{
	Use:   "eigen <A>",
	Short: "Dominant eigenpair by power iteration plus k-1 QR estimates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			a, err := loadMatrix(args[0])
			if err != nil {
				return err
			}
			res, err := rt.engine.Eigen(ctx, a, eigenK)
			if err != nil {
				return err
			}
			printEigen(cmd.OutOrStdout(), res)

			return nil
		})
	},
}

func printEigen(w io.Writer, res *engine.EigenResult) {
	for i, v := range res.Values {
		tag := ""
		if res.Approximate[i] {
			tag = "  (approximate)"
		}
		fmt.Fprintf(w, "lambda[%d] = %.6f%s\n", i, v, tag)
	}
	if len(res.Vectors) > 0 {
		fmt.Fprintf(w, "vector[0]  = %.6f\n", res.Vectors[0])
	}
	if !res.Converged {
		fmt.Fprintf(w, "power iteration did not converge in %d iterations\n", res.Iterations)
	}
}

// emit writes res to --out when set, otherwise prints it in text form.
func emit(w io.Writer, res *matrix.Dense) error {
	if err := res.SetName(resultNm); err != nil {
		return err
	}
	if outFile != "" {
		return matrixio.WriteFile(outFile, res)
	}

	return matrixio.WriteText(w, res)
}

// withRuntime starts the configured backend, runs fn under a signal-aware
// context and shuts the backend down afterwards.
func withRuntime(cmd *cobra.Command, fn func(context.Context, *runtime) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	b := status.NewBroadcaster()
	defer b.Close()
	rt, err := newRuntime(backendName, appCfg, logger, b, metrics.New())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.Background()); cerr != nil {
			logger.WithError(cerr).Warn("backend shutdown")
		}
	}()

	return fn(ctx, rt)
}

func init() {
	for _, c := range []*cobra.Command{
		newBinaryCmd("add", "Element-wise sum, one task per element"),
		newBinaryCmd("sub", "Element-wise difference, one task per element"),
		newBinaryCmd("mul", "Matrix product, one row-column task per element"),
	} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "write the result to this file (.txt, .yaml, .toml)")
		c.Flags().StringVar(&resultNm, "name", "result", "name given to the result matrix")
		rootCmd.AddCommand(c)
	}
	eigenCmd.Flags().IntVarP(&eigenK, "count", "k", 1, "number of eigenvalues to report")
	rootCmd.AddCommand(detCmd, eigenCmd)
}
