// SPDX-License-Identifier: MIT

// Package cmd holds the parmatrix cobra commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/katalvlaran/parmatrix/config"
	"github.com/katalvlaran/parmatrix/logging"
)

var (
	cfgFile     string
	legacyFile  string
	backendName string

	vp     *viper.Viper
	appCfg config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "parmatrix",
	Short: "Concurrent matrix engine",
	Long: `parmatrix evaluates matrix operations by fanning small task units out to
concurrent executors and collecting the replies.

Backends:
  pool       - fixed set of long-lived workers with idle age-out
  ephemeral  - one short-lived executor per task unit

Matrices are read from .txt, .yaml/.yml or .toml files.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	pf.StringVar(&legacyFile, "legacy-config", "", `legacy "<pool size> <idle seconds>" file`)
	pf.StringVar(&backendName, "backend", backendPool, "execution backend: pool|ephemeral")

	d := config.Defaults()
	pf.Int("pool-size", d.Pool.Size, "pool workers")
	pf.Duration("max-idle", d.Pool.MaxIdle, "idle time before a pool worker is retired")
	pf.Duration("call-timeout", d.Pool.CallTimeout, "per-call timeout for pool workers (0 = none)")
	pf.Int("max-live", d.Ephemeral.MaxLive, "cap on live ephemeral executors (0 = unlimited)")
	pf.Bool("naive-det", d.Determinant.Naive, "always use the cofactor fan-out for determinants")
	pf.String("log-level", d.Log.Level, "log level: debug|info|warn|error")
	pf.String("log-format", d.Log.Format, "log format: text|json")
	pf.String("listen", d.Status.Listen, "address for the status HTTP feed (empty = off)")
	pf.String("matrix-dir", d.MatrixDir, "default directory for loadall/saveall")
}

// setup resolves configuration and the logger before any subcommand runs.
func setup(cmd *cobra.Command, _ []string) error {
	vp = config.New()
	if err := config.BindFlags(vp, cmd.Flags()); err != nil {
		return err
	}
	if legacyFile != "" {
		if err := config.ApplyLegacy(vp, legacyFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load(vp, cfgFile)
	if err != nil {
		return err
	}
	if backendName != backendPool && backendName != backendEphemeral {
		return fmt.Errorf("unknown backend %q (want %s or %s)", backendName, backendPool, backendEphemeral)
	}
	appCfg = cfg

	logger, err = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	return err
}
