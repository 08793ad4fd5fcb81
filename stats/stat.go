// Package stats holds the statistical preprocessing applied to feature rows and targets before
// they reach a model.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	mat_ "github.com/aouyang1/go-stockforest/mat"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrNoRows             = errors.New("no rows to fit scaler")
	ErrFeatureLenMismatch = errors.New("number of features does not match the scaler")
	ErrNonFiniteValue     = errors.New("non-finite value")
)

// Scaler standardizes every column to zero mean and unit population standard deviation using
// the statistics of the rows it was fit on.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes the per column mean and standard deviation of x. Constant columns are
// scaled by 1 so they transform to zero.
func FitScaler(x mat.Matrix) (*Scaler, error) {
	if x == nil {
		return nil, ErrNoRows
	}
	m, n := mat_.Dims(x)
	if m == 0 {
		return nil, ErrNoRows
	}

	s := &Scaler{
		Mean:  make([]float64, n),
		Scale: make([]float64, n),
	}
	col := make([]float64, m)
	for j := 0; j < n; j++ {
		mat.Col(col, j, x)
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("row %d column %d, %w", i, j, ErrNonFiniteValue)
			}
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return s, nil
}

// NumFeatures returns the number of columns the scaler was fit on.
func (s *Scaler) NumFeatures() int {
	return len(s.Mean)
}

// Validate checks a scaler loaded from storage.
func (s *Scaler) Validate() error {
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler has %d means and %d scales, %w", len(s.Mean), len(s.Scale), ErrFeatureLenMismatch)
	}
	for j, v := range s.Scale {
		if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scale %v for column %d, %w", v, j, ErrNonFiniteValue)
		}
	}
	return nil
}

// Transform returns a standardized copy of x.
func (s *Scaler) Transform(x mat.Matrix) (*mat.Dense, error) {
	m, n := mat_.Dims(x)
	if m == 0 {
		return &mat.Dense{}, nil
	}
	if n != s.NumFeatures() {
		return nil, fmt.Errorf("got %d features, but expected %d, %w", n, s.NumFeatures(), ErrFeatureLenMismatch)
	}
	res := mat.DenseCopyOf(x)
	res.Apply(func(_, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, res)
	return res, nil
}

// TransformRow standardizes a single feature row into a new slice.
func (s *Scaler) TransformRow(row []float64) ([]float64, error) {
	if len(row) != s.NumFeatures() {
		return nil, fmt.Errorf("got %d features, but expected %d, %w", len(row), s.NumFeatures(), ErrFeatureLenMismatch)
	}
	res := make([]float64, len(row))
	for j, v := range row {
		res[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return res, nil
}

// DetectOutliers returns the indices of y lying beyond the given percentiles widened by
// tukeyFactor times the inter percentile range.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	if len(y) == 0 {
		return nil
	}
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)

	lower := stat.Quantile(lowerPerc, stat.Empirical, sorted, nil)
	upper := stat.Quantile(upperPerc, stat.Empirical, sorted, nil)
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i, v := range y {
		if v > upper || v < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}
