// SPDX-License-Identifier: MIT
// Package matrix: Householder QR and unshifted QR iteration.
//
// QREigenvalues gives coarse estimates of every eigenvalue of a square
// matrix. It is only used for the non-dominant eigenvalues, which callers
// must treat as approximate; complex pairs never converge and come back as
// whatever sits on the diagonal after maxIter steps.

package matrix

import "math"

// QR returns Q (orthogonal) and R (upper triangular) with m = Q×R.
//
// Implementation:
//   - Stage 1: validate square input, copy it into the working R.
//   - Stage 2: for each column k build the Householder vector v of R[k:n][k]
//     and reflect R and the accumulator H (H starts as I).
//   - Stage 3: H = H_n⋯H_1, so Q = Hᵀ.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func QR(m Matrix) (Q, R *Dense, err error) {
	if err = ValidateSquare(m); err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	a, err := AsDense(m)
	if err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}
	n := a.r
	R = a.clone()
	R.name = ""
	H, err := Identity(n)
	if err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}

	householder(R.data, H.data, n)

	if Q, err = Transpose(H); err != nil {
		return nil, nil, matrixErrorf(opQR, err)
	}

	return Q, R, nil
}

// householder reduces r (n×n, row-major) to upper triangular form in place
// and applies the same reflections to h.
func householder(r, h []float64, n int) {
	v := make([]float64, n)
	var norm, alpha, beta, tau float64
	for k := 0; k < n-1; k++ {
		norm = ZeroSum
		for i := k; i < n; i++ {
			norm += r[i*n+k] * r[i*n+k]
		}
		norm = math.Sqrt(norm)
		if norm == ZeroSum {
			continue // zero column, nothing to reflect
		}
		alpha = -math.Copysign(norm, r[k*n+k])

		for i := range v {
			v[i] = ZeroSum
		}
		for i := k; i < n; i++ {
			v[i] = r[i*n+k]
		}
		v[k] -= alpha
		beta = ZeroSum
		for i := k; i < n; i++ {
			beta += v[i] * v[i]
		}
		if beta == ZeroSum {
			continue
		}
		tau = 2.0 / beta

		reflect(r, v, tau, n, k, k)
		reflect(h, v, tau, n, k, 0)
		for i := k + 1; i < n; i++ {
			r[i*n+k] = ZeroSum // exact zeros below the diagonal
		}
	}
}

// reflect applies (I - tau·v·vᵀ) from the left to columns fromCol..n-1 of x,
// touching only rows k..n-1 where v is non-zero.
func reflect(x, v []float64, tau float64, n, k, fromCol int) {
	var sum float64
	for j := fromCol; j < n; j++ {
		sum = ZeroSum
		for i := k; i < n; i++ {
			sum += v[i] * x[i*n+j]
		}
		if sum == ZeroSum {
			continue
		}
		sum *= tau
		for i := k; i < n; i++ {
			x[i*n+j] -= sum * v[i]
		}
	}
}

// QREigenvalues runs unshifted QR iteration A_{k+1} = R_k·Q_k and returns the
// diagonal of the last iterate. Iteration stops once the sum of absolute
// sub-diagonal entries falls below tol, or after maxIter steps.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrBadIterParams.
func QREigenvalues(m Matrix, maxIter int, tol float64) ([]float64, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opQREigen, err)
	}
	if maxIter < 1 || !(tol > 0) {
		return nil, matrixErrorf(opQREigen, ErrBadIterParams)
	}
	a, err := AsDense(m)
	if err != nil {
		return nil, matrixErrorf(opQREigen, err)
	}
	n := a.r
	cur := a.clone()

	var q, r *Dense
	for iter := 0; iter < maxIter; iter++ {
		if q, r, err = QR(cur); err != nil {
			return nil, matrixErrorf(opQREigen, err)
		}
		if cur, err = Mul(r, q); err != nil {
			return nil, matrixErrorf(opQREigen, err)
		}
		if subDiagonalSum(cur) < tol {
			break
		}
	}

	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		vals[i] = cur.data[i*n+i]
	}

	return vals, nil
}

// subDiagonalSum returns Σ|a[i][j]| for i > j.
func subDiagonalSum(a *Dense) float64 {
	n := a.c
	acc := ZeroSum
	for i := 1; i < a.r; i++ {
		for j := 0; j < i; j++ {
			acc += math.Abs(a.data[i*n+j])
		}
	}

	return acc
}
