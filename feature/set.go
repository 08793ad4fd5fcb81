package feature

import (
	"gonum.org/v1/gonum/mat"
)

// Set holds the value of every indicator at every bar of a price series, keyed by indicator.
type Set map[Indicator][]float64

// Len returns the number of bars in the set.
func (s Set) Len() int {
	return len(s[Return1M])
}

// Row returns the feature row for bar i in column order.
func (s Set) Row(i int) []float64 {
	row := make([]float64, len(indicators))
	for j, ind := range indicators {
		row[j] = s[ind][i]
	}
	return row
}

// Matrix returns an m x n matrix with one row per bar and one column per indicator.
func (s Set) Matrix() *mat.Dense {
	m := s.Len()
	if m == 0 {
		return &mat.Dense{}
	}
	n := len(indicators)
	obs := make([]float64, m*n)
	for j, ind := range indicators {
		for i, v := range s[ind] {
			obs[n*i+j] = v
		}
	}
	return mat.NewDense(m, n, obs)
}
