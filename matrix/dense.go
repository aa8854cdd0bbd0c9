// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Hand out copies (Row, Col, Minor, ToRows) rather than views, so a task unit
//     never holds a live reference into a source matrix.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone/ToRows: O(r*c); Row: O(c); Col: O(r).

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// MaxNameLen bounds a matrix name in bytes.
const MaxNameLen = 49

// MaxElements bounds rows*cols for a single matrix (512 MiB of float64).
const MaxElements = 1 << 26

// ---------- error context tags ----------

const (
	ctxAt    = "At"
	ctxSet   = "Set"
	ctxRow   = "Row"
	ctxCol   = "Col"
	ctxMinor = "Minor"
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - name is an optional label (empty for temporaries such as minors).
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	name string    // optional label, len <= MaxNameLen
	r, c int       // row and column counts (> 0)
	data []float64 // contiguous row-major storage (len == r*c)
}

// Compile-time assertions for interface & fmt.Stringer conformance.
var (
	_ Matrix       = (*Dense)(nil)
	_ fmt.Stringer = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Errors:
//   - ErrInvalidDimensions when rows <= 0, cols <= 0, or rows*cols exceeds
//     MaxElements.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	// Validate shape.
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	// Division form keeps rows*cols from overflowing.
	if rows > MaxElements/cols {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d elements", ErrInvalidDimensions, rows, cols, MaxElements)
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewNamedDense is NewDense plus a validated name.
func NewNamedDense(name string, rows, cols int) (*Dense, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	m, err := NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	m.name = name

	return m, nil
}

// FromRows builds a Dense from a rectangular [][]float64 (copied).
//
// Implementation:
//   - Stage 1: reject empty input and ragged rows.
//   - Stage 2: copy every row into the flat buffer.
//
// Errors:
//   - ErrInvalidDimensions (no rows or an empty first row), ErrRaggedRows.
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	r, c := len(rows), len(rows[0])
	m, err := NewDense(r, c)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != c {
			return nil, fmt.Errorf("FromRows: row %d has %d values, want %d: %w", i, len(row), c, ErrRaggedRows)
		}
		copy(m.data[i*c:(i+1)*c], row) // one row at a time, row-major
	}

	return m, nil
}

// Identity returns the n×n identity matrix.
func Identity(n int) (*Dense, error) {
	m, err := NewDense(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}

	return m, nil
}

// Rows returns the number of rows in the matrix.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns in the matrix.
func (m *Dense) Cols() int { return m.c }

// Name returns the matrix label, possibly empty.
func (m *Dense) Name() string { return m.name }

// SetName validates and assigns the matrix label.
func (m *Dense) SetName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	m.name = name

	return nil
}

// indexOf computes the flat index for (row, col) or returns ErrOutOfRange.
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}

	return row*m.c + col, nil
}

// At retrieves the element at (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf(ctxAt, row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set assigns value v at (row, col). NaN and ±Inf are rejected with ErrNaNInf.
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf(ctxSet, row, col)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[idx] = v

	return nil
}

// Clone returns a deep copy of the Dense matrix, name included.
func (m *Dense) Clone() Matrix {
	return m.clone()
}

func (m *Dense) clone() *Dense {
	buf := make([]float64, len(m.data))
	copy(buf, m.data)

	return &Dense{name: m.name, r: m.r, c: m.c, data: buf}
}

// Row returns a fresh copy of row i.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxRow, i, 0, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	copy(out, m.data[i*m.c:(i+1)*m.c])

	return out, nil
}

// Col returns a fresh copy of column j.
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, denseErrorf(ctxCol, 0, j, ErrOutOfRange)
	}
	out := make([]float64, m.r)
	for i := 0; i < m.r; i++ {
		out[i] = m.data[i*m.c+j]
	}

	return out, nil
}

// Minor returns the (r-1)×(c-1) copy of m without row `row` and column `col`.
//
// Implementation:
//   - Stage 1: validate indices and that both dimensions are >= 2.
//   - Stage 2: walk the source row-major, skipping the dropped row/column.
//
// Errors:
//   - ErrOutOfRange for bad indices, ErrInvalidDimensions for 1×N / N×1 inputs.
//
// Complexity:
//   - Time O(r*c), Space O((r-1)*(c-1)).
func (m *Dense) Minor(row, col int) (*Dense, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return nil, denseErrorf(ctxMinor, row, col, ErrOutOfRange)
	}
	out, err := NewDense(m.r-1, m.c-1)
	if err != nil {
		return nil, denseErrorf(ctxMinor, row, col, err)
	}
	k := 0 // write cursor into out.data
	for i := 0; i < m.r; i++ {
		if i == row {
			continue
		}
		base := i * m.c
		for j := 0; j < m.c; j++ {
			if j == col {
				continue
			}
			out.data[k] = m.data[base+j]
			k++
		}
	}

	return out, nil
}

// ToRows copies the matrix out as [][]float64.
func (m *Dense) ToRows() [][]float64 {
	out := make([][]float64, m.r)
	for i := range out {
		out[i] = make([]float64, m.c)
		copy(out[i], m.data[i*m.c:(i+1)*m.c])
	}

	return out
}

// String implements fmt.Stringer for debugging: one bracketed row per line.
func (m *Dense) String() string {
	var sb strings.Builder
	if m.name != "" {
		fmt.Fprintf(&sb, "%s (%dx%d):\n", m.name, m.r, m.c)
	}
	for i := 0; i < m.r; i++ {
		sb.WriteString("[")
		for j := 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
