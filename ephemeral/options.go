// SPDX-License-Identifier: MIT

package ephemeral

import (
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/logging"
	"github.com/katalvlaran/parmatrix/metrics"
	"github.com/katalvlaran/parmatrix/protocol"
)

// Backend is the label used in logs, metrics and snapshots.
const Backend = "ephemeral"

// DefaultMaxLive means no limit on concurrently live executors.
const DefaultMaxLive = 0

const panicMaxLiveInvalid = "ephemeral: WithMaxLive: limit must be >= 0"

// Option configures a Dispatcher.
type Option func(*Options)

// Options holds the resolved configuration.
type Options struct {
	logger  logrus.FieldLogger
	exec    protocol.ExecFunc
	maxLive int
	guard   func(pos int) error
	metrics *metrics.Metrics
}

func defaultOptions() Options {
	return Options{
		logger:  logging.Discard(),
		exec:    protocol.Execute,
		maxLive: DefaultMaxLive,
	}
}

// WithLogger sets the structured logger (default discards).
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithExecutor replaces the evaluation function run by every executor.
func WithExecutor(exec protocol.ExecFunc) Option {
	return func(o *Options) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithMaxLive caps concurrently live executors; 0 means unlimited.
// Panics on a negative limit.
func WithMaxLive(n int) Option {
	if n < 0 {
		panic(panicMaxLiveInvalid)
	}

	return func(o *Options) { o.maxLive = n }
}

// WithSpawnGuard installs a hook consulted before each executor is started;
// a non-nil error aborts the batch as a spawn failure.
func WithSpawnGuard(guard func(pos int) error) Option {
	return func(o *Options) { o.guard = guard }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) { o.metrics = m }
}
