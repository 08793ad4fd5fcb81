// Package timedataset holds validated price histories.
package timedataset

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrNoPriceData        = errors.New("no price data")
	ErrNonMontonic        = errors.New("time feature is not monotonic")
	ErrDatasetLenMismatch = errors.New("time feature has a different length than observations")
	ErrInvalidClose       = errors.New("close must be positive and finite")
	ErrInvalidVolume      = errors.New("volume must be non-negative and finite")
)

// PriceSeries is the bar history of a single instrument. T is strictly increasing and every
// slice has the same length.
type PriceSeries struct {
	T      []time.Time
	Close  []float64
	Volume []float64
}

// NewPriceSeries validates and copies the bar history.
func NewPriceSeries(t []time.Time, closes, volume []float64) (*PriceSeries, error) {
	if len(closes) == 0 {
		return nil, ErrNoPriceData
	}
	if len(t) != len(closes) {
		return nil, fmt.Errorf(
			"time feature has length of %d, but close has a length of %d, %w",
			len(t), len(closes), ErrDatasetLenMismatch,
		)
	}
	if len(volume) != len(closes) {
		return nil, fmt.Errorf(
			"volume has length of %d, but close has a length of %d, %w",
			len(volume), len(closes), ErrDatasetLenMismatch,
		)
	}

	for i := 1; i < len(t); i++ {
		if !t[i].After(t[i-1]) {
			return nil, fmt.Errorf("non-monotonic at %d, %w", i, ErrNonMontonic)
		}
	}
	for i, c := range closes {
		if c <= 0 || math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("close of %v at %d, %w", c, i, ErrInvalidClose)
		}
	}
	for i, v := range volume {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("volume of %v at %d, %w", v, i, ErrInvalidVolume)
		}
	}

	ps := &PriceSeries{
		T:      make([]time.Time, len(t)),
		Close:  make([]float64, len(closes)),
		Volume: make([]float64, len(volume)),
	}
	copy(ps.T, t)
	copy(ps.Close, closes)
	copy(ps.Volume, volume)
	return ps, nil
}

// Len returns the number of bars.
func (ps *PriceSeries) Len() int {
	return len(ps.Close)
}

// LastClose returns the most recent closing price.
func (ps *PriceSeries) LastClose() float64 {
	return ps.Close[len(ps.Close)-1]
}

// EndTime returns the time of the most recent bar.
func (ps *PriceSeries) EndTime() time.Time {
	return ps.T[len(ps.T)-1]
}

func (ps *PriceSeries) Copy() *PriceSeries {
	cp := &PriceSeries{
		T:      make([]time.Time, len(ps.T)),
		Close:  make([]float64, len(ps.Close)),
		Volume: make([]float64, len(ps.Volume)),
	}
	copy(cp.T, ps.T)
	copy(cp.Close, ps.Close)
	copy(cp.Volume, ps.Volume)
	return cp
}

// Until returns the bars at or before end. It returns ErrNoPriceData if no bar qualifies.
func (ps *PriceSeries) Until(end time.Time) (*PriceSeries, error) {
	n := 0
	for n < len(ps.T) && !ps.T[n].After(end) {
		n++
	}
	if n == 0 {
		return nil, ErrNoPriceData
	}
	return &PriceSeries{
		T:      ps.T[:n:n],
		Close:  ps.Close[:n:n],
		Volume: ps.Volume[:n:n],
	}, nil
}
