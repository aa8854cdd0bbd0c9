// SPDX-License-Identifier: MIT

// Package logging builds the logrus loggers shared by the pool, the
// ephemeral dispatcher, the engines and the CLI.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrBadFormat is returned for a log format other than "text" or "json".
var ErrBadFormat = errors.New("logging: unknown format")

// TimestampFormat is used by both formatters.
const TimestampFormat = "2006-01-02 15:04:05"

// Config selects level, format and destination.
//   - Level: debug, info, warn, error (case-insensitive); empty means info.
//   - Format: text or json; empty means text.
//   - Output: nil means os.Stderr.
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// ParseLevel maps a level name onto a logrus level. Unknown names yield
// InfoLevel together with an error so callers can warn and continue.
func ParseLevel(name string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return logrus.DebugLevel, nil
	case "", "info":
		return logrus.InfoLevel, nil
	case "warn", "warning":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("logging: unknown level %q", name)
	}
}

// New builds a logger from cfg.
func New(cfg Config) (*logrus.Logger, error) {
	logger := logrus.New()

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: TimestampFormat,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: TimestampFormat})
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadFormat, cfg.Format)
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	if cfg.Output != nil {
		logger.SetOutput(cfg.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	return logger, nil
}

// Discard returns a logger that writes nowhere. Library packages fall back
// to it when no logger is configured.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}
