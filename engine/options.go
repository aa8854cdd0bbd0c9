// SPDX-License-Identifier: MIT

package engine

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/logging"
	"github.com/katalvlaran/parmatrix/status"
)

const (
	// DefaultMaxIterations caps power iteration and QR iteration.
	DefaultMaxIterations = 1000

	// DefaultTolerance is the convergence threshold for both iterations.
	DefaultTolerance = 1e-6

	// DefaultMaxParallelOrder is the largest order the cofactor fan-out runs on
	// unless naive mode is forced.
	DefaultMaxParallelOrder = 8
)

const (
	panicMaxIterationsInvalid = "engine: WithMaxIterations: n must be >= 1"
	panicToleranceInvalid     = "engine: WithTolerance: tol must be finite and > 0"
	panicParallelOrderInvalid = "engine: WithMaxParallelOrder: n must be >= 2"
)

// Option configures an Engine.
type Option func(*Options)

// Options holds the resolved configuration.
type Options struct {
	logger           logrus.FieldLogger
	publisher        status.Publisher
	backendName      string
	maxIterations    int
	tolerance        float64
	maxParallelOrder int
	naive            bool
}

func defaultOptions() Options {
	return Options{
		logger:           logging.Discard(),
		publisher:        status.Nop{},
		backendName:      "custom",
		maxIterations:    DefaultMaxIterations,
		tolerance:        DefaultTolerance,
		maxParallelOrder: DefaultMaxParallelOrder,
	}
}

// WithLogger sets the structured logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
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

// WithBackendName labels the backend in logs and snapshots.
func WithBackendName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.backendName = name
		}
	}
}

// WithMaxIterations sets the iteration cap for PowerIteration and Eigen.
func WithMaxIterations(n int) Option {
	if n < 1 {
		panic(panicMaxIterationsInvalid)
	}

	return func(o *Options) { o.maxIterations = n }
}

// WithTolerance sets the convergence threshold.
func WithTolerance(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(panicToleranceInvalid)
	}

	return func(o *Options) { o.tolerance = tol }
}

// WithMaxParallelOrder sets the largest order handled by the cofactor fan-out.
func WithMaxParallelOrder(n int) Option {
	if n < 2 {
		panic(panicParallelOrderInvalid)
	}

	return func(o *Options) { o.maxParallelOrder = n }
}

// WithNaiveDeterminant forces the cofactor fan-out at every order.
// Its cost grows as n!, so large orders are logged at warn level.
func WithNaiveDeterminant() Option {
	return func(o *Options) { o.naive = true }
}
