// SPDX-License-Identifier: MIT

// Package config loads parmatrix settings with viper: built-in defaults, an
// optional YAML (or TOML/JSON) file, PARMATRIX_* environment variables and
// bound command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/parmatrix/logging"
)

// EnvPrefix prefixes every environment override, e.g. PARMATRIX_POOL_SIZE.
const EnvPrefix = "PARMATRIX"

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid value")

// Config is the decoded configuration.
type Config struct {
	Pool        PoolConfig        `mapstructure:"pool"`
	Eigen       EigenConfig       `mapstructure:"eigen"`
	Determinant DeterminantConfig `mapstructure:"determinant"`
	Ephemeral   EphemeralConfig   `mapstructure:"ephemeral"`
	Status      StatusConfig      `mapstructure:"status"`
	Log         LogConfig         `mapstructure:"log"`
	MatrixDir   string            `mapstructure:"matrix_dir"`
}

// PoolConfig configures the persistent worker pool.
type PoolConfig struct {
	Size        int           `mapstructure:"size"`
	MaxIdle     time.Duration `mapstructure:"max_idle"`
	CallTimeout time.Duration `mapstructure:"call_timeout"` // 0 = none
}

// EigenConfig bounds power and QR iteration.
type EigenConfig struct {
	MaxIterations int     `mapstructure:"max_iterations"`
	Tolerance     float64 `mapstructure:"tolerance"`
}

// DeterminantConfig controls the cofactor fan-out.
type DeterminantConfig struct {
	MaxParallelOrder int  `mapstructure:"max_parallel_order"`
	Naive            bool `mapstructure:"naive"`
}

// EphemeralConfig bounds the ephemeral dispatcher.
type EphemeralConfig struct {
	MaxLive int `mapstructure:"max_live"` // 0 = unlimited
}

// StatusConfig sizes the monitor subscription and the optional HTTP feed.
type StatusConfig struct {
	Buffer int    `mapstructure:"buffer"`
	Listen string `mapstructure:"listen"` // empty disables the HTTP feed
}

// LogConfig selects logger level and format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Pool:        PoolConfig{Size: 4, MaxIdle: 60 * time.Second},
		Eigen:       EigenConfig{MaxIterations: 1000, Tolerance: 1e-6},
		Determinant: DeterminantConfig{MaxParallelOrder: 8},
		Status:      StatusConfig{Buffer: 64},
		Log:         LogConfig{Level: "info", Format: "text"},
		MatrixDir:   "matrices",
	}
}

// flatten maps every viper key onto its default value.
func flatten(c Config) map[string]any {
	return map[string]any{
		"pool.size":                      c.Pool.Size,
		"pool.max_idle":                  c.Pool.MaxIdle,
		"pool.call_timeout":              c.Pool.CallTimeout,
		"eigen.max_iterations":           c.Eigen.MaxIterations,
		"eigen.tolerance":                c.Eigen.Tolerance,
		"determinant.max_parallel_order": c.Determinant.MaxParallelOrder,
		"determinant.naive":              c.Determinant.Naive,
		"ephemeral.max_live":             c.Ephemeral.MaxLive,
		"status.buffer":                  c.Status.Buffer,
		"status.listen":                  c.Status.Listen,
		"log.level":                      c.Log.Level,
		"log.format":                     c.Log.Format,
		"matrix_dir":                     c.MatrixDir,
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	for key, val := range flatten(Defaults()) {
		v.SetDefault(key, val)
	}
}

// New returns a viper instance with defaults and environment overrides wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// FlagKeys maps CLI flag names onto config keys for BindFlags.
var FlagKeys = map[string]string{
	"pool-size":    "pool.size",
	"max-idle":     "pool.max_idle",
	"call-timeout": "pool.call_timeout",
	"max-live":     "ephemeral.max_live",
	"naive-det":    "determinant.naive",
	"log-level":    "log.level",
	"log-format":   "log.format",
	"listen":       "status.listen",
	"matrix-dir":   "matrix_dir",
}

// BindFlags binds every flag in fs that appears in FlagKeys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range FlagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("config: bind %s: %w", name, err)
		}
	}

	return nil
}

// Load reads path (if non-empty) into v and decodes the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			v.SetConfigType("toml")
		case ".json":
			v.SetConfigType("json")
		default:
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	return Decode(v)
}

// Decode unmarshals and validates the current state of v.
func Decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks ranges.
func Validate(c Config) error {
	switch {
	case c.Pool.Size < 1:
		return fmt.Errorf("%w: pool.size=%d (want >= 1)", ErrInvalid, c.Pool.Size)
	case c.Pool.MaxIdle <= 0:
		return fmt.Errorf("%w: pool.max_idle=%s (want > 0)", ErrInvalid, c.Pool.MaxIdle)
	case c.Pool.CallTimeout < 0:
		return fmt.Errorf("%w: pool.call_timeout=%s (want >= 0)", ErrInvalid, c.Pool.CallTimeout)
	case c.Eigen.MaxIterations < 1:
		return fmt.Errorf("%w: eigen.max_iterations=%d (want >= 1)", ErrInvalid, c.Eigen.MaxIterations)
	case !(c.Eigen.Tolerance > 0):
		return fmt.Errorf("%w: eigen.tolerance=%g (want > 0)", ErrInvalid, c.Eigen.Tolerance)
	case c.Determinant.MaxParallelOrder < 2:
		return fmt.Errorf("%w: determinant.max_parallel_order=%d (want >= 2)", ErrInvalid, c.Determinant.MaxParallelOrder)
	case c.Ephemeral.MaxLive < 0:
		return fmt.Errorf("%w: ephemeral.max_live=%d (want >= 0)", ErrInvalid, c.Ephemeral.MaxLive)
	case c.Status.Buffer < 1:
		return fmt.Errorf("%w: status.buffer=%d (want >= 1)", ErrInvalid, c.Status.Buffer)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return nil
}

// handleChange re-decodes v after a file event and reports to fn.
func handleChange(v *viper.Viper, fn func(Config, error)) func(fsnotify.Event) {
	return func(ev fsnotify.Event) {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return
		}
		fn(Decode(v))
	}
}

// Watch re-reads the config file on change and calls fn with the result.
// v must have been loaded from a file.
func Watch(v *viper.Viper, fn func(Config, error)) {
	v.OnConfigChange(handleChange(v, fn))
	v.WatchConfig()
}

// WriteDefault writes Defaults as a YAML document to path.
func WriteDefault(path string) error {
	nested := map[string]any{}
	for key, val := range flatten(Defaults()) {
		if d, ok := val.(time.Duration); ok {
			val = d.String()
		}
		section, leaf, found := strings.Cut(key, ".")
		if !found {
			nested[key] = val
			continue
		}
		sub, _ := nested[section].(map[string]any)
		if sub == nil {
			sub = map[string]any{}
			nested[section] = sub
		}
		sub[leaf] = val
	}

	out, err := yaml.Marshal(nested)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}

	return os.WriteFile(path, out, 0o644)
}
