// SPDX-License-Identifier: MIT

package matrixio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/parmatrix/matrix"
)

// textReader pulls whitespace-separated tokens.
type textReader struct {
	sc *bufio.Scanner
}

func newTextReader(r io.Reader) *textReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	sc.Split(bufio.ScanWords)

	return &textReader{sc: sc}
}

// next returns the next token or io.EOF.
func (t *textReader) next() (string, error) {
	if t.sc.Scan() {
		return t.sc.Text(), nil
	}
	if err := t.sc.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (t *textReader) int(what string) (int, error) {
	tok, err := t.next()
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrMalformed, what, err)
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformed, what, tok)
	}

	return n, nil
}

// readOne reads one matrix. It returns io.EOF only when no header starts.
func (t *textReader) readOne() (*matrix.Dense, error) {
	name, err := t.next()
	if err != nil {
		return nil, err
	}
	rows, err := t.int("rows")
	if err != nil {
		return nil, err
	}
	cols, err := t.int("cols")
	if err != nil {
		return nil, err
	}
	m, err := matrix.NewNamedDense(name, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			tok, err := t.next()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: value (%d,%d): %v", ErrMalformed, name, i, j, err)
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: value (%d,%d) %q", ErrMalformed, name, i, j, tok)
			}
			if err = m.Set(i, j, v); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, name, err)
			}
		}
	}

	return m, nil
}

// ReadText reads the first matrix of a text document.
func ReadText(r io.Reader) (*matrix.Dense, error) {
	m, err := newTextReader(r).readOne()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	return m, err
}

// ReadAllText reads every matrix in a text document.
func ReadAllText(r io.Reader) ([]*matrix.Dense, error) {
	tr := newTextReader(r)
	var out []*matrix.Dense
	for {
		m, err := tr.readOne()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, m)
	}
}

// WriteText writes m in text form with two decimals per value.
// m must carry a name without whitespace.
func WriteText(w io.Writer, m *matrix.Dense) error {
	if err := checkWritable(m); err != nil {
		return err
	}
	if strings.ContainsAny(m.Name(), " \t\r\n") {
		return fmt.Errorf("%w: %q", matrix.ErrBadName, m.Name())
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d %d\n", m.Name(), m.Rows(), m.Cols())
	for _, row := range m.ToRows() {
		for j, v := range row {
			if j > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(v, 'f', 2, 64))
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// checkWritable rejects nil and unnamed matrices.
func checkWritable(m *matrix.Dense) error {
	if err := matrix.ValidateNotNil(m); err != nil {
		return err
	}

	return matrix.ValidateName(m.Name())
}
