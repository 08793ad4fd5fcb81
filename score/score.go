// Package score evaluates return predictions against realized returns.
package score

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoValues       = errors.New("no comparable values")
)

// Scores tracks the holdout scores of a model
type Scores struct {
	Samples int     `json:"samples"`
	MSE     float64 `json:"mean_squared_error"`
	MAE     float64 `json:"mean_absolute_error"`
	MAPE    float64 `json:"mean_average_percent_error"`
	R2      float64 `json:"r_squared"`

	// DirectionalAccuracy is the fraction of rows where the predicted return has the same sign
	// as the realized return.
	DirectionalAccuracy float64 `json:"directional_accuracy"`
}

// NewScores calculates every score given the predicted and actual values. Pairs where either
// side is NaN are ignored.
func NewScores(predicted, actual []float64) (*Scores, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil {
		return nil, err
	}

	mse, err := MSE(p, a)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mae, err := MAE(p, a)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}
	mape, err := MAPE(p, a)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	rs, err := RSquared(p, a)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	da, err := DirectionalAccuracy(p, a)
	if err != nil {
		return nil, fmt.Errorf("unable to compute directional accuracy, %w", err)
	}

	return &Scores{
		Samples:             len(a),
		MSE:                 mse,
		MAE:                 mae,
		MAPE:                mape,
		R2:                  rs,
		DirectionalAccuracy: da,
	}, nil
}

// pairs drops every index where either value is NaN.
func pairs(predicted, actual []float64) ([]float64, []float64, error) {
	if len(predicted) != len(actual) {
		return nil, nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	p := make([]float64, 0, len(predicted))
	a := make([]float64, 0, len(actual))
	for i := range actual {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		p = append(p, predicted[i])
		a = append(a, actual[i])
	}
	if len(a) == 0 {
		return nil, nil, ErrNoValues
	}
	return p, a, nil
}

// MSE computes the mean squared error. A score of 0 means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	var mse float64
	for i := range a {
		mse += math.Pow(a[i]-p[i], 2.0)
	}
	return mse / float64(len(a)), nil
}

// MAE computes the mean absolute error, in the same units as the returns.
func MAE(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	var mae float64
	for i := range a {
		mae += math.Abs(a[i] - p[i])
	}
	return mae / float64(len(a)), nil
}

// MAPE calculates the mean average percent error. Rows with an actual value of zero contribute
// nothing but still count towards the mean.
func MAPE(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	var mape float64
	for i := range a {
		if a[i] == 0 {
			continue
		}
		mape += math.Abs((a[i] - p[i]) / a[i])
	}
	return mape / float64(len(a)), nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit. A constant actual series matched exactly scores 1.
func RSquared(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	r2 := stat.RSquaredFrom(p, a, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}

// DirectionalAccuracy is the fraction of pairs whose signs agree. Zero only agrees with zero.
func DirectionalAccuracy(predicted, actual []float64) (float64, error) {
	p, a, err := pairs(predicted, actual)
	if err != nil {
		return 0, err
	}
	var hits int
	for i := range a {
		if sign(p[i]) == sign(a[i]) {
			hits++
		}
	}
	return float64(hits) / float64(len(a)), nil
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
