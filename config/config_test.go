// SPDX-License-Identifier: MIT

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/parmatrix/config"
)

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := config.Decode(config.New())
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), cfg)
	require.Equal(t, 4, cfg.Pool.Size)
	require.Equal(t, 60*time.Second, cfg.Pool.MaxIdle)
	require.Equal(t, 1000, cfg.Eigen.MaxIterations)
	require.Equal(t, 1e-6, cfg.Eigen.Tolerance)
	require.Equal(t, 8, cfg.Determinant.MaxParallelOrder)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "parmatrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pool:
  size: 8
  max_idle: 5s
eigen:
  tolerance: 1e-9
log:
  level: debug
`), 0o644))

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Pool.Size)
	require.Equal(t, 5*time.Second, cfg.Pool.MaxIdle)
	require.Equal(t, 1e-9, cfg.Eigen.Tolerance)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 1000, cfg.Eigen.MaxIterations, "untouched keys keep defaults")
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "parmatrix.toml")
	require.NoError(t, os.WriteFile(path, []byte("[pool]\nsize = 2\n"), 0o644))

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Pool.Size)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PARMATRIX_POOL_SIZE", "12")
	t.Setenv("PARMATRIX_DETERMINANT_NAIVE", "true")

	cfg, err := config.Decode(config.New())
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Pool.Size)
	require.True(t, cfg.Determinant.Naive)
}

func TestBindFlags(t *testing.T) {
	t.Parallel()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("pool-size", 4, "")
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--pool-size=3", "--log-level=warn"}))

	v := config.New()
	require.NoError(t, config.BindFlags(v, fs))
	cfg, err := config.Decode(v)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Pool.Size)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	mutations := map[string]func(*config.Config){
		"pool size":     func(c *config.Config) { c.Pool.Size = 0 },
		"max idle":      func(c *config.Config) { c.Pool.MaxIdle = 0 },
		"call timeout":  func(c *config.Config) { c.Pool.CallTimeout = -time.Second },
		"iterations":    func(c *config.Config) { c.Eigen.MaxIterations = 0 },
		"tolerance":     func(c *config.Config) { c.Eigen.Tolerance = 0 },
		"parallel cap":  func(c *config.Config) { c.Determinant.MaxParallelOrder = 1 },
		"max live":      func(c *config.Config) { c.Ephemeral.MaxLive = -1 },
		"status buffer": func(c *config.Config) { c.Status.Buffer = 0 },
		"log level":     func(c *config.Config) { c.Log.Level = "shout" },
	}
	for name, mutate := range mutations {
		cfg := config.Defaults()
		mutate(&cfg)
		require.ErrorIs(t, config.Validate(cfg), config.ErrInvalid, name)
	}
	require.NoError(t, config.Validate(config.Defaults()))
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "sub", "parmatrix.yaml")
	require.NoError(t, config.WriteDefault(path))

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	require.Equal(t, config.Defaults(), cfg)
}

func TestHandleChange(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "parmatrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  size: 2\n"), 0o644))
	v := config.New()
	_, err := config.Load(v, path)
	require.NoError(t, err)

	var got []config.Config
	handler := config.HandleChange(v, func(c config.Config, err error) {
		require.NoError(t, err)
		got = append(got, c)
	})

	require.NoError(t, os.WriteFile(path, []byte("pool:\n  size: 6\n"), 0o644))
	require.NoError(t, v.ReadInConfig())
	handler(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	require.Empty(t, got, "chmod is ignored")
	handler(fsnotify.Event{Name: path, Op: fsnotify.Write})
	require.Len(t, got, 1)
	require.Equal(t, 6, got[0].Pool.Size)
}
