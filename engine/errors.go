// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNilBackend is returned by New without a Dispatcher.
	ErrNilBackend = errors.New("engine: nil backend")

	// ErrEigenCount is returned by Eigen when k < 1 or k exceeds the matrix order.
	ErrEigenCount = errors.New("engine: eigenvalue count out of range")

	// ErrShortReply is returned when a backend answers a batch with the wrong number of replies.
	ErrShortReply = errors.New("engine: backend returned a short batch")
)

// Operation tags.
const (
	opAdd         = "Add"
	opSubtract    = "Subtract"
	opMultiply    = "Multiply"
	opMatVec      = "MatVec"
	opDeterminant = "Determinant"
	opPower       = "PowerIteration"
	opEigen       = "Eigen"
)

// engineErrorf wraps err with an operation tag. Use only when err != nil.
func engineErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}
