// Package engine turns matrix operations into batches of Task Units and runs
// them on an interchangeable backend: the persistent worker pool or the
// ephemeral one-executor-per-task dispatcher. Both implement Dispatcher, and
// results are numerically equivalent between them.
//
// Operations:
//
//   - Add, Subtract: one task per element.
//   - Multiply: one row·column dot product per result element.
//   - MatVec: one task per row.
//   - Determinant: recursive cofactor expansion along row 0, one concurrent
//     cofactor executor per column; 2×2 leaves are dispatched to the backend.
//     Orders above the parallel limit use the LU determinant instead.
//   - PowerIteration and Eigen: the dominant pair from power iteration (one
//     matrix-vector task per row per step) plus coarse QR-iteration
//     estimates for the remaining eigenvalues, tagged approximate.
//
// Every operation validates its inputs before dispatching anything and
// publishes start and completion snapshots on the status channel.
package engine
