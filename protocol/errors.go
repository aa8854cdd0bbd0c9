// SPDX-License-Identifier: MIT

package protocol

import "errors"

var (
	// ErrPayloadTooLarge is returned when a vector exceeds MaxVectorLen.
	ErrPayloadTooLarge = errors.New("protocol: payload exceeds capacity")

	// ErrLengthMismatch is returned when paired vectors differ in length.
	ErrLengthMismatch = errors.New("protocol: vector lengths differ")

	// ErrUnknownOp is set on a Reply whose request carried an unknown tag.
	ErrUnknownOp = errors.New("protocol: unknown operation")

	// ErrExecutorCrashed is returned by Serve when the evaluation function panics.
	ErrExecutorCrashed = errors.New("protocol: executor terminated unexpectedly")
)
