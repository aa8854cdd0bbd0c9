// SPDX-License-Identifier: MIT
// Package protocol: message shapes and constructors.

package protocol

import "fmt"

// MaxVectorLen bounds every vector payload carried by a Request.
const MaxVectorLen = 2000

// Op tags the computation a Request asks for.
type Op uint8

// Operation tags. The zero value is deliberately invalid.
const (
	OpAdd Op = iota + 1
	OpSubtract
	OpDotProduct
	OpDeterminant2x2
	OpMatVec
	OpExit
)

// String returns the wire name of the operation.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "ADD"
	case OpSubtract:
		return "SUBTRACT"
	case OpDotProduct:
		return "DOT_PRODUCT"
	case OpDeterminant2x2:
		return "DETERMINANT_2x2"
	case OpMatVec:
		return "MATRIX_VECTOR_MULTIPLY"
	case OpExit:
		return "EXIT"
	default:
		return fmt.Sprintf("Op(%d)", uint8(o))
	}
}

// Request is one Task Unit.
//   - Index is the result slot the reply belongs to.
//   - Operand1/Operand2 feed OpAdd and OpSubtract.
//   - Row/Col feed OpDotProduct; Row (matrix row) and Col (vector) feed OpMatVec.
//   - Block feeds OpDeterminant2x2 as [[a b] [c d]].
type Request struct {
	Index    int
	Op       Op
	Operand1 float64
	Operand2 float64
	Row      []float64
	Col      []float64
	Block    [2][2]float64
}

// Reply is the executor's answer to one Request.
type Reply struct {
	Index  int
	Op     Op
	Result float64
	Err    error
}

// NewAdd builds an OpAdd request for slot index.
func NewAdd(index int, a, b float64) Request {
	return Request{Index: index, Op: OpAdd, Operand1: a, Operand2: b}
}

// NewSubtract builds an OpSubtract request (a - b) for slot index.
func NewSubtract(index int, a, b float64) Request {
	return Request{Index: index, Op: OpSubtract, Operand1: a, Operand2: b}
}

// NewDeterminant2x2 builds an OpDeterminant2x2 request over block.
func NewDeterminant2x2(index int, block [2][2]float64) Request {
	return Request{Index: index, Op: OpDeterminant2x2, Block: block}
}

// NewDotProduct builds an OpDotProduct request for row·col. Both slices are copied.
func NewDotProduct(index int, row, col []float64) (Request, error) {
	r, c, err := copyPair("NewDotProduct", row, col)
	if err != nil {
		return Request{}, err
	}

	return Request{Index: index, Op: OpDotProduct, Row: r, Col: c}, nil
}

// NewMatVec builds an OpMatVec request computing one entry of M·v from a
// matrix row and the vector. Both slices are copied.
func NewMatVec(index int, row, vec []float64) (Request, error) {
	r, v, err := copyPair("NewMatVec", row, vec)
	if err != nil {
		return Request{}, err
	}

	return Request{Index: index, Op: OpMatVec, Row: r, Col: v}, nil
}

// Exit returns the request that ends an executor loop.
func Exit() Request { return Request{Index: -1, Op: OpExit} }

// copyPair validates and copies two equal-length vectors.
func copyPair(tag string, a, b []float64) ([]float64, []float64, error) {
	if len(a) > MaxVectorLen || len(b) > MaxVectorLen {
		return nil, nil, fmt.Errorf("%s: len %d/%d > %d: %w", tag, len(a), len(b), MaxVectorLen, ErrPayloadTooLarge)
	}
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("%s: len %d != %d: %w", tag, len(a), len(b), ErrLengthMismatch)
	}
	ac := make([]float64, len(a))
	bc := make([]float64, len(b))
	copy(ac, a)
	copy(bc, b)

	return ac, bc, nil
}
