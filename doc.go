// Package parmatrix is a concurrent matrix engine: it splits matrix
// operations into small task units, hands them to concurrent executors and
// assembles the replies.
//
// Two execution backends share one request/reply protocol:
//
//   - pool       a fixed set of long-lived workers, acquired and released per
//     task, retired after an idle period;
//   - ephemeral  one short-lived executor per task unit, always reaped before
//     the dispatch returns.
//
// Both are compared against the sequential kernels in matrix, which also act
// as the oracle in tests.
//
// Layout:
//
//	protocol/      Request/Reply messages, the evaluator and the executor loop
//	pool/          persistent worker pool (Acquire, Release, AgeOut, Dispatch)
//	ephemeral/     per-task executors with counted collection and reaping
//	engine/        Add, Subtract, Multiply, MatVec, Determinant, Eigen on any backend
//	matrix/        Dense, sequential kernels, LU, QR
//	matrixio/      text/YAML/TOML matrix files and a bounded named registry
//	status/        non-blocking snapshot broadcast, line monitor, TUI, HTTP feed
//	metrics/       Prometheus collectors shared by the backends
//	config/        viper-based settings with env and flag overrides
//	logging/       logrus setup
//	cmd/parmatrix  the command-line front end
//
// Quick example:
//
//	p, _ := pool.New(4)
//	defer p.Shutdown(ctx)
//	e, _ := engine.New(p, engine.WithBackendName(pool.Backend))
//	det, _ := e.Determinant(ctx, a)
//
//	go install github.com/katalvlaran/parmatrix/cmd/parmatrix@latest
package parmatrix
