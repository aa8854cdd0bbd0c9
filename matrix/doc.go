// Package matrix provides the dense matrix type and the sequential reference
// kernels used by the concurrent engines in parmatrix.
//
// What lives here:
//
//   - Dense: a named, row-major float64 matrix with bounds-checked accessors
//     and copy-out helpers (Row, Col, Minor) so no two executors ever share
//     a backing slice.
//   - Add, Sub, Mul, MatVec, Transpose: single-goroutine kernels. They are the
//     "single" backend of the system and the oracle the concurrent backends
//     are tested against.
//   - LU (partial pivoting) and Det: the trusted determinant reference.
//   - QR (Householder) and QREigenvalues: coarse estimates for non-dominant
//     eigenvalues.
//   - Dot, Norm, Normalize: vector helpers shared with the power iteration.
//
// Errors are package-level sentinels (errors.go), wrapped with an operation
// tag at the facade and matched with errors.Is.
package matrix
