// Package models is a collection of regression models used to predict stock returns. The
// random forest is the production model and ordinary least squares is its linear baseline.
package models

import (
	"gonum.org/v1/gonum/mat"
)

// Model is implemented by every regressor in the package. x is an m x n feature matrix and y is
// an m x 1 target matrix.
type Model interface {
	Fit(x, y mat.Matrix) error
	Predict(x mat.Matrix) ([]float64, error)
	Score(x, y mat.Matrix) (float64, error)
}

var (
	_ Model = (*RegressionTree)(nil)
	_ Model = (*Forest)(nil)
	_ Model = (*OLSRegression)(nil)
)
