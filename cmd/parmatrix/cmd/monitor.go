// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/metrics"
	"github.com/katalvlaran/parmatrix/status"
)

var (
	monitorTUI    bool
	monitorOp     string
	monitorRounds int
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <A> [B]",
	Short: "Run a workload and watch executor snapshots live",
	Long: `monitor repeats one operation on the configured backend while rendering
status snapshots: a bubbletea view with --tui on a terminal, plain lines
otherwise. With --listen the same stream is served on /status (websocket)
next to /metrics and /healthz until interrupted.`,
	Args: cobra.RangeArgs(1, 2),
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		bc := status.NewBroadcaster()
		m := metrics.New()
		rt, err := newRuntime(backendName, appCfg, logger, bc, m)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := rt.Close(context.Background()); cerr != nil {
				logger.WithError(cerr).Warn("backend shutdown")
			}
		}()

		ch, cancel := bc.Subscribe(appCfg.Status.Buffer)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		if appCfg.Status.Listen != "" {
			srv := status.NewServer(bc, m, logger)
			g.Go(func() error { return srv.ListenAndServe(gctx, appCfg.Status.Listen) })
		}
		g.Go(func() error {
			// Closing the broadcaster ends the renderer once the workload is done,
			// unless the HTTP feed is still being served.
			err := runWorkload(gctx, rt, monitorOp, monitorRounds, a, b)
			if appCfg.Status.Listen != "" && err == nil {
				logger.Info("workload finished; serving status until interrupted")
				<-gctx.Done()
			}
			bc.Close()
			return err
		})
		g.Go(func() error {
			return render(gctx, cmd, ch)
		})

		if err = g.Wait(); errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	},
}

// render draws the stream until it closes.
func render(ctx context.Context, cmd *cobra.Command, ch <-chan status.Snapshot) error {
	out := cmd.OutOrStdout()
	isTTY := term.IsTerminal(int(os.Stdout.Fd()))
	if monitorTUI && isTTY {
		_, err := tea.NewProgram(status.NewModel(ch), tea.WithContext(ctx), tea.WithOutput(out)).Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	}

	return status.NewMonitor(out, isTTY).Run(ctx, ch)
}

// runWorkload repeats op rounds times.
func runWorkload(ctx context.Context, rt *runtime, op string, rounds int, a, b *matrix.Dense) error {
	if rounds < 1 {
		return fmt.Errorf("rounds must be >= 1, got %d", rounds)
	}
	switch op {
	case "add", "sub", "mul", "det", "eigen":
	default:
		return fmt.Errorf("unknown monitor op %q (want add, sub, mul, det or eigen)", op)
	}
	w := engineWorkload(op, rt, a, b)
	if op == "eigen" {
		w = func(ctx context.Context) ([]float64, error) {
			res, err := rt.engine.Eigen(ctx, a, 1)
			if err != nil {
				return nil, err
			}
			return res.Values, nil
		}
	}
	for i := 0; i < rounds; i++ {
		if _, err := w(ctx); err != nil {
			return err
		}
	}

	return nil
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorTUI, "tui", false, "full-screen view when stdout is a terminal")
	monitorCmd.Flags().StringVar(&monitorOp, "op", "det", "operation: add|sub|mul|det|eigen")
	monitorCmd.Flags().IntVar(&monitorRounds, "rounds", 10, "times to repeat the operation")
	rootCmd.AddCommand(monitorCmd)
}
