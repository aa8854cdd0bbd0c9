// Package protocol defines the fixed-shape request/reply messages exchanged
// between a dispatcher and an executor, the pure function that evaluates one
// request, and the executor loop shared by pooled and ephemeral executors.
//
// A Request carries exactly one Task Unit: an element-wise add or subtract,
// a row·column dot product, a 2×2 determinant, or one row of a
// matrix-vector product. Vector payloads are copied into the message at
// construction and bounded by MaxVectorLen, so an executor never observes
// memory owned by the caller.
//
// Serve is the executor loop: receive, compute, reply, repeat until an
// OpExit request arrives or the request channel closes. A panic inside the
// evaluation function terminates the loop with ErrExecutorCrashed, which is
// how the pool learns that a worker died.
package protocol
