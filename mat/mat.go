// Package mat holds small helpers for moving row oriented data in and out of gonum dense
// matrices.
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch    = errors.New("column size mismatch")
	ErrNoColumns      = errors.New("rows have no columns")
	ErrRowOutOfBounds = errors.New("row is out of bounds")
	ErrColOutOfBounds = errors.New("column is out of bounds")
)

// NewDenseFromArray converts row major data into a dense matrix. No rows yields an empty
// matrix whose dimensions are 0x0, which gonum would otherwise refuse to allocate.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	m := len(x)
	if m == 0 {
		return &mat.Dense{}, nil
	}

	n := len(x[0])
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("at row %d expected %d columns but got %d, %w", i, n, len(row), ErrColMismatch)
		}
	}
	if n == 0 {
		return nil, ErrNoColumns
	}

	// flatten to row order
	data := make([]float64, 0, m*n)
	for _, row := range x {
		data = append(data, row...)
	}
	return mat.NewDense(m, n, data), nil
}

// NewColumn returns an m x 1 matrix of the values. No values yields an empty matrix.
func NewColumn(y []float64) *mat.Dense {
	if len(y) == 0 {
		return &mat.Dense{}
	}
	data := make([]float64, len(y))
	copy(data, y)
	return mat.NewDense(len(y), 1, data)
}

// Dims returns the dimensions of x treating an empty dense matrix as 0x0.
func Dims(x mat.Matrix) (int, int) {
	if d, ok := x.(*mat.Dense); ok && d.IsEmpty() {
		return 0, 0
	}
	return x.Dims()
}

// Columns copies every column of x into its own slice.
func Columns(x mat.Matrix) [][]float64 {
	_, n := Dims(x)
	cols := make([][]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = mat.Col(nil, j, x)
	}
	return cols
}

// Rows copies every row of x into its own slice.
func Rows(x mat.Matrix) [][]float64 {
	m, _ := Dims(x)
	rows := make([][]float64, m)
	for i := 0; i < m; i++ {
		rows[i] = mat.Row(nil, i, x)
	}
	return rows
}

// Project builds a new dense matrix from the selected rows and columns of x, in the order
// given. Rows may repeat.
func Project(x mat.Matrix, rows, cols []int) (*mat.Dense, error) {
	m, n := Dims(x)
	if len(rows) == 0 || len(cols) == 0 {
		return &mat.Dense{}, nil
	}
	for _, j := range cols {
		if j < 0 || j >= n {
			return nil, fmt.Errorf("column %d of %d, %w", j, n, ErrColOutOfBounds)
		}
	}

	data := make([]float64, 0, len(rows)*len(cols))
	for _, i := range rows {
		if i < 0 || i >= m {
			return nil, fmt.Errorf("row %d of %d, %w", i, m, ErrRowOutOfBounds)
		}
		for _, j := range cols {
			data = append(data, x.At(i, j))
		}
	}
	return mat.NewDense(len(rows), len(cols), data), nil
}
