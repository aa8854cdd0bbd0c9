package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/parmatrix/matrix"
)

// ExampleDet shows the LU-based reference determinant.
func ExampleDet() {
	a, _ := matrix.FromRows([][]float64{
		{6, 1, 1},
		{4, -2, 5},
		{2, 8, 7},
	})
	d, _ := matrix.Det(a)
	fmt.Printf("%.0f\n", d)

	// Output:
	// -306
}

// ExampleMul multiplies two small matrices and prints the named result.
func ExampleMul() {
	a, _ := matrix.FromRows([][]float64{{1, 2}, {3, 4}})
	b, _ := matrix.FromRows([][]float64{{5, 6}, {7, 8}})
	c, _ := matrix.Mul(a, b)
	_ = c.SetName("C")
	fmt.Print(c)

	// Output:
	// C (2x2):
	// [19, 22]
	// [43, 50]
}
