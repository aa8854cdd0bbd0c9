// SPDX-License-Identifier: MIT

package engine

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/protocol"
)

// Determinant computes det(m).
//
// Implementation:
//   - n = 1: the single entry.
//   - n = 2: one OpDeterminant2x2 task on the backend.
//   - 3 <= n <= MaxParallelOrder (or naive mode): cofactor expansion along
//     row 0 with n concurrent cofactor executors; executor j copies the minor
//     without row 0 and column j, recurses, and returns (-1)^j·m[0][j]·det(minor).
//     The parent sums the terms in column order once all have replied.
//   - n > MaxParallelOrder: matrix.Det (LU with partial pivoting).
//
// Errors:
//   - matrix.ErrNonSquare / ErrNilMatrix before any dispatch.
//   - The first backend failure from any cofactor. Siblings that have not
//     dispatched yet are skipped; dispatches already in flight finish under
//     ctx so pooled workers are released, not retired.
//
// Complexity:
//   - Fan-out: O(n!) tasks and goroutines. LU path: O(n³).
func (e *Engine) Determinant(ctx context.Context, m matrix.Matrix) (det float64, err error) {
	if err = matrix.ValidateSquare(m); err != nil {
		return 0, engineErrorf(opDeterminant, err)
	}
	d, err := matrix.AsDense(m)
	if err != nil {
		return 0, engineErrorf(opDeterminant, err)
	}

	done := e.track(opDeterminant)
	defer func() { done(err) }()

	n := d.Rows()
	if n > e.opts.maxParallelOrder {
		if !e.opts.naive {
			e.log.WithFields(logrus.Fields{"order": n, "limit": e.opts.maxParallelOrder}).
				Debug("order above parallel limit, using LU")
			if det, err = matrix.Det(d); err != nil {
				return 0, engineErrorf(opDeterminant, err)
			}
			return det, nil
		}
		e.log.WithFields(logrus.Fields{"order": n, "limit": e.opts.maxParallelOrder}).
			Warn("naive cofactor expansion above parallel limit")
	}

	if det, err = e.cofactor(ctx, ctx, d); err != nil {
		return 0, engineErrorf(opDeterminant, err)
	}

	return det, nil
}

// cofactor is the recursive fan-out. m is owned by the caller and never shared.
// Backend calls run under ctx; stop ends when any sibling subtree has failed
// and only keeps new work from starting.
func (e *Engine) cofactor(ctx, stop context.Context, m *matrix.Dense) (float64, error) {
	rows := m.ToRows()
	n := len(rows)
	switch n {
	case 1:
		return rows[0][0], nil
	case 2:
		if err := stop.Err(); err != nil {
			return 0, err
		}
		block := [2][2]float64{{rows[0][0], rows[0][1]}, {rows[1][0], rows[1][1]}}
		reps, err := e.run(ctx, []protocol.Request{protocol.NewDeterminant2x2(0, block)})
		if err != nil {
			return 0, err
		}
		return reps[0].Result, nil
	}

	terms := make([]float64, n)
	g, gstop := errgroup.WithContext(stop)
	for j := 0; j < n; j++ {
		pivot := rows[0][j]
		g.Go(func() error {
			if pivot == 0 {
				return nil // term vanishes
			}
			if err := gstop.Err(); err != nil {
				return err
			}
			minor, err := m.Minor(0, j)
			if err != nil {
				return err
			}
			sub, err := e.cofactor(ctx, gstop, minor)
			if err != nil {
				return err
			}
			sign := 1.0
			if j%2 == 1 {
				sign = -1.0
			}
			terms[j] = sign * pivot * sub

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	sum := 0.0
	for _, t := range terms {
		sum += t
	}

	return sum, nil
}
