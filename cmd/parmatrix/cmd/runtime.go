// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/config"
	"github.com/katalvlaran/parmatrix/engine"
	"github.com/katalvlaran/parmatrix/ephemeral"
	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/matrixio"
	"github.com/katalvlaran/parmatrix/metrics"
	"github.com/katalvlaran/parmatrix/pool"
	"github.com/katalvlaran/parmatrix/status"
)

const (
	backendPool      = pool.Backend
	backendEphemeral = ephemeral.Backend
)

// runtime bundles one backend with its engine and the shared side channels.
type runtime struct {
	name    string
	engine  *engine.Engine
	pool    *pool.Pool // nil for the ephemeral backend
	status  *status.Broadcaster
	metrics *metrics.Metrics
}

// newRuntime starts the named backend. Callers must Close it.
func newRuntime(
	name string,
	cfg config.Config,
	log logrus.FieldLogger,
	b *status.Broadcaster,
	m *metrics.Metrics,
) (*runtime, error) {
	rt := &runtime{name: name, status: b, metrics: m}

	var backend engine.Dispatcher
	switch name {
	case backendPool:
		p, err := pool.New(cfg.Pool.Size,
			pool.WithLogger(log),
			pool.WithStatus(b),
			pool.WithMetrics(m),
			pool.WithCallTimeout(cfg.Pool.CallTimeout),
		)
		if err != nil {
			return nil, err
		}
		rt.pool = p
		backend = p
	case backendEphemeral:
		backend = ephemeral.New(
			ephemeral.WithLogger(log),
			ephemeral.WithMaxLive(cfg.Ephemeral.MaxLive),
			ephemeral.WithMetrics(m),
		)
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}

	opts := []engine.Option{
		engine.WithLogger(log),
		engine.WithStatus(b),
		engine.WithBackendName(name),
		engine.WithMaxIterations(cfg.Eigen.MaxIterations),
		engine.WithTolerance(cfg.Eigen.Tolerance),
		engine.WithMaxParallelOrder(cfg.Determinant.MaxParallelOrder),
	}
	if cfg.Determinant.Naive {
		opts = append(opts, engine.WithNaiveDeterminant())
	}
	e, err := engine.New(backend, opts...)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	rt.engine = e

	return rt, nil
}

// Close shuts the pool down, if any.
func (rt *runtime) Close(ctx context.Context) error {
	if rt.pool == nil {
		return nil
	}

	return rt.pool.Shutdown(ctx)
}

// loadMatrix reads the first matrix in path.
func loadMatrix(path string) (*matrix.Dense, error) {
	ms, err := matrixio.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ms[0], nil
}
