package models

import (
	"fmt"
	"math"

	mat_ "github.com/aouyang1/go-stockforest/mat"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// fitValidate checks the training shapes and returns the training dimensions along with the
// target as a slice.
func fitValidate(x, y mat.Matrix) (int, int, []float64, error) {
	if x == nil {
		return 0, 0, nil, ErrNoTrainingMatrix
	}
	if y == nil {
		return 0, 0, nil, ErrNoTargetMatrix
	}

	m, n := mat_.Dims(x)
	if m == 0 || n == 0 {
		return 0, 0, nil, fmt.Errorf("training data has %d rows and %d columns, %w", m, n, ErrEmptyTrainingMatrix)
	}

	ym, yn := mat_.Dims(y)
	if ym != m {
		return 0, 0, nil, fmt.Errorf("training data has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}
	if yn != 1 {
		return 0, 0, nil, fmt.Errorf("target has %d columns, %w", yn, ErrTargetNotVector)
	}
	return m, n, mat.Col(nil, 0, y), nil
}

// predictValidate checks a design matrix against the number of training features.
func predictValidate(x mat.Matrix, nFeatures int) (int, error) {
	if x == nil {
		return 0, ErrNoDesignMatrix
	}
	m, n := mat_.Dims(x)
	if m == 0 {
		return 0, nil
	}
	if n != nFeatures {
		return 0, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, nFeatures, ErrFeatureLenMismatch)
	}
	return m, nil
}

func scoreValidate(x, y mat.Matrix) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if y == nil {
		return nil, ErrNoTargetMatrix
	}
	m, _ := mat_.Dims(x)
	ym, yn := mat_.Dims(y)
	if m != ym {
		return nil, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}
	if yn != 1 {
		return nil, fmt.Errorf("target has %d columns, %w", yn, ErrTargetNotVector)
	}
	if m == 0 {
		return nil, ErrEmptyTrainingMatrix
	}
	return mat.Col(nil, 0, y), nil
}

// rSquared computes the coefficient of determination. A constant target that is matched
// exactly scores 1.
func rSquared(predicted, actual []float64) float64 {
	score := stat.RSquaredFrom(predicted, actual, nil)
	if math.IsNaN(score) {
		score = 1.0
	}
	return score
}
