// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/parmatrix/matrix"
)

// PowerResult is the dominant eigenpair found by power iteration.
type PowerResult struct {
	Value      float64
	Vector     []float64 // unit length unless the iterate collapsed to ~0
	Converged  bool
	Iterations int
}

// EigenResult holds k eigenvalues. Only index 0 (the dominant pair) is
// numerically meaningful; indices >= 1 are QR-iteration estimates with
// Approximate[i] = true and nil Vectors[i].
type EigenResult struct {
	Values      []float64
	Vectors     [][]float64
	Approximate []bool
	Converged   bool // power iteration converged
	Iterations  int  // power iterations performed
}

// PowerIteration finds the dominant eigenpair of a square matrix.
//
// Implementation:
//   - Stage 1: v = normalised ones.
//   - Stage 2: each step dispatches one OpMatVec task per row giving w = m·v,
//     λ = w·v (w before normalisation), w is normalised, and the step
//     converges when Σ|w - v| < tolerance.
//   - Stage 3: at the cap the last (λ, v) is returned with Converged = false.
//     That is logged, not treated as an error.
//
// Errors:
//   - matrix.ErrNonSquare / ErrNilMatrix before any dispatch; backend errors.
func (e *Engine) PowerIteration(ctx context.Context, m matrix.Matrix) (res PowerResult, err error) {
	if err = matrix.ValidateSquare(m); err != nil {
		return PowerResult{}, engineErrorf(opPower, err)
	}
	d, err := matrix.AsDense(m)
	if err != nil {
		return PowerResult{}, engineErrorf(opPower, err)
	}

	done := e.track(opPower)
	defer func() { done(err) }()

	if res, err = e.power(ctx, d); err != nil {
		return PowerResult{}, engineErrorf(opPower, err)
	}

	return res, nil
}

func (e *Engine) power(ctx context.Context, d *matrix.Dense) (PowerResult, error) {
	rows := d.ToRows()
	v := matrix.Normalize(matrix.Ones(len(rows)))
	res := PowerResult{Vector: v}

	for iter := 1; iter <= e.opts.maxIterations; iter++ {
		w, err := e.matVec(ctx, rows, v)
		if err != nil {
			return PowerResult{}, err
		}
		lambda := matrix.Dot(w, v)
		w = matrix.Normalize(w)
		diff := matrix.AbsDiffSum(w, v)

		res.Value, res.Vector, res.Iterations = lambda, w, iter
		v = w
		if diff < e.opts.tolerance {
			res.Converged = true
			return res, nil
		}
	}

	e.log.WithFields(logrus.Fields{"iterations": res.Iterations, "value": res.Value}).
		Warn("power iteration did not converge")

	return res, nil
}

// Eigen returns k eigenvalues of a square matrix: the dominant pair from
// power iteration, then the k-1 largest-magnitude QR estimates after
// dropping the estimate closest to the dominant value.
//
// Errors:
//   - matrix.ErrNonSquare / ErrNilMatrix, ErrEigenCount (k < 1 or k > n).
func (e *Engine) Eigen(ctx context.Context, m matrix.Matrix, k int) (res *EigenResult, err error) {
	if err = matrix.ValidateSquare(m); err != nil {
		return nil, engineErrorf(opEigen, err)
	}
	n := m.Rows()
	if k < 1 || k > n {
		return nil, engineErrorf(opEigen, fmt.Errorf("k=%d, order %d: %w", k, n, ErrEigenCount))
	}
	d, err := matrix.AsDense(m)
	if err != nil {
		return nil, engineErrorf(opEigen, err)
	}

	done := e.track(opEigen)
	defer func() { done(err) }()

	pr, err := e.power(ctx, d)
	if err != nil {
		return nil, engineErrorf(opEigen, err)
	}
	res = &EigenResult{
		Values:      []float64{pr.Value},
		Vectors:     [][]float64{pr.Vector},
		Approximate: []bool{false},
		Converged:   pr.Converged,
		Iterations:  pr.Iterations,
	}
	if k == 1 {
		return res, nil
	}

	rest, err := e.secondary(d, pr.Value)
	if err != nil {
		return nil, engineErrorf(opEigen, err)
	}
	for i := 0; i < k-1 && i < len(rest); i++ {
		res.Values = append(res.Values, rest[i])
		res.Vectors = append(res.Vectors, nil)
		res.Approximate = append(res.Approximate, true)
	}

	return res, nil
}

// secondary returns the QR estimates minus the one nearest dominant,
// ordered by decreasing magnitude.
func (e *Engine) secondary(d *matrix.Dense, dominant float64) ([]float64, error) {
	vals, err := matrix.QREigenvalues(d, e.opts.maxIterations, e.opts.tolerance)
	if err != nil {
		return nil, err
	}
	nearest := 0
	for i, v := range vals {
		if math.Abs(v-dominant) < math.Abs(vals[nearest]-dominant) {
			nearest = i
		}
	}
	rest := append(append([]float64{}, vals[:nearest]...), vals[nearest+1:]...)
	sort.SliceStable(rest, func(i, j int) bool { return math.Abs(rest[i]) > math.Abs(rest[j]) })

	return rest, nil
}
