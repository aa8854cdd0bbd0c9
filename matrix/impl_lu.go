// SPDX-License-Identifier: MIT
// Package matrix: LU decomposition with partial pivoting and the determinant
// built on top of it. Det is the trusted reference every concurrent
// determinant is checked against.

package matrix

import "math"

// luDecompose factors a square Dense copy in place (Doolittle, row pivoting).
// On return lu holds U on and above the diagonal and the multipliers of L
// strictly below it; perm[i] is the source row of row i; sign is ±1 by swap
// parity. A column with no usable pivot is left as is, so singular inputs
// yield a zero on U's diagonal instead of an error.
func luDecompose(a *Dense) (lu *Dense, perm []int, sign float64) {
	n := a.r
	lu = a.clone()
	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sign = 1

	d := lu.data
	var (
		p        int
		best, v  float64
		pivot, f float64
	)
	for k := 0; k < n; k++ {
		// Stage 1: choose the largest |a[i][k]| for i >= k.
		p, best = k, math.Abs(d[k*n+k])
		for i := k + 1; i < n; i++ {
			if v = math.Abs(d[i*n+k]); v > best {
				p, best = i, v
			}
		}
		if best == 0 {
			continue // singular column
		}

		// Stage 2: swap rows k and p.
		if p != k {
			for j := 0; j < n; j++ {
				d[k*n+j], d[p*n+j] = d[p*n+j], d[k*n+j]
			}
			perm[k], perm[p] = perm[p], perm[k]
			sign = -sign
		}

		// Stage 3: eliminate below the pivot, storing multipliers in place.
		pivot = d[k*n+k]
		for i := k + 1; i < n; i++ {
			f = d[i*n+k] / pivot
			d[i*n+k] = f
			if f == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				d[i*n+j] -= f * d[k*n+j]
			}
		}
	}

	return lu, perm, sign
}

// LU computes P·A = L·U for a square matrix.
//
// Returns:
//   - L: unit lower triangular.
//   - U: upper triangular.
//   - perm: row permutation, row i of P·A is row perm[i] of A.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func LU(m Matrix) (L, U *Dense, perm []int, err error) {
	if err = ValidateSquare(m); err != nil {
		return nil, nil, nil, matrixErrorf(opLU, err)
	}
	a, err := AsDense(m)
	if err != nil {
		return nil, nil, nil, matrixErrorf(opLU, err)
	}
	lu, perm, _ := luDecompose(a)

	n := a.r
	if L, err = Identity(n); err != nil {
		return nil, nil, nil, matrixErrorf(opLU, err)
	}
	if U, err = NewDense(n, n); err != nil {
		return nil, nil, nil, matrixErrorf(opLU, err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j < i {
				L.data[i*n+j] = lu.data[i*n+j]
			} else {
				U.data[i*n+j] = lu.data[i*n+j]
			}
		}
	}

	return L, U, perm, nil
}

// Det returns the determinant of a square matrix via LU: sign·Π U[i][i].
// Singular matrices return 0 with a nil error.
func Det(m Matrix) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opDet, err)
	}
	a, err := AsDense(m)
	if err != nil {
		return 0, matrixErrorf(opDet, err)
	}
	lu, _, sign := luDecompose(a)
	n := a.r
	det := sign
	for i := 0; i < n; i++ {
		det *= lu.data[i*n+i]
	}

	return det, nil
}
