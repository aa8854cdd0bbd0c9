// SPDX-License-Identifier: MIT

package matrix

import "math"

// NormEpsilon is the norm at or below which Normalize leaves a vector untouched.
const NormEpsilon = 1e-10

// Dot returns Σ a[i]·b[i] over the common prefix of a and b.
func Dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	acc := ZeroSum
	for i := 0; i < n; i++ {
		acc += a[i] * b[i]
	}

	return acc
}

// Norm returns the Euclidean length of v.
func Norm(v []float64) float64 {
	return math.Sqrt(Dot(v, v))
}

// Normalize returns a copy of v scaled to unit length.
// When Norm(v) <= NormEpsilon the copy is returned unscaled.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	n := Norm(v)
	if n <= NormEpsilon {
		return out
	}
	for i := range out {
		out[i] /= n
	}

	return out
}

// AbsDiffSum returns Σ|a[i]-b[i]| over the common prefix of a and b.
func AbsDiffSum(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	acc := ZeroSum
	for i := 0; i < n; i++ {
		acc += math.Abs(a[i] - b[i])
	}

	return acc
}

// Ones returns a vector of n ones.
func Ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}

	return v
}
