// SPDX-License-Identifier: MIT

package pool

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/logging"
	"github.com/katalvlaran/parmatrix/metrics"
	"github.com/katalvlaran/parmatrix/protocol"
	"github.com/katalvlaran/parmatrix/status"
)

// Backend is the label the pool uses in logs, metrics and snapshots.
const Backend = "pool"

// DefaultCallTimeout disables the per-call timeout.
const DefaultCallTimeout time.Duration = 0

const panicCallTimeoutInvalid = "pool: WithCallTimeout: timeout must be >= 0"

// Option configures a Pool.
type Option func(*Options)

// Options holds the resolved configuration. Zero fields fall back to defaults.
type Options struct {
	logger      logrus.FieldLogger
	now         func() time.Time
	exec        protocol.ExecFunc
	publisher   status.Publisher
	metrics     *metrics.Metrics
	callTimeout time.Duration
}

func defaultOptions() Options {
	return Options{
		logger:      logging.Discard(),
		now:         time.Now,
		exec:        protocol.Execute,
		publisher:   status.Nop{},
		callTimeout: DefaultCallTimeout,
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

// WithClock overrides time.Now for idle accounting.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithExecutor replaces the evaluation function run by every worker.
func WithExecutor(exec protocol.ExecFunc) Option {
	return func(o *Options) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// WithStatus sets the snapshot publisher.
func WithStatus(p status.Publisher) Option {
	return func(o *Options) {
		if p != nil {
			o.publisher = p
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Options) { o.metrics = m }
}

// WithCallTimeout bounds every Worker.Call; 0 disables the bound.
// Panics on a negative duration.
func WithCallTimeout(d time.Duration) Option {
	if d < 0 {
		panic(panicCallTimeoutInvalid)
	}

	return func(o *Options) { o.callTimeout = d }
}
