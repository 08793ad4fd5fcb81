package feature

import (
	"errors"
	"fmt"
	"math"

	"github.com/aouyang1/go-stockforest/timedataset"
)

var (
	ErrNoSeries           = errors.New("no price series")
	ErrNoSamples          = errors.New("no training samples")
	ErrIncompatibleLabels = errors.New("feature labels do not match")
)

// Compute derives every indicator for every bar of the series.
func Compute(series *timedataset.PriceSeries) (Set, error) {
	if series == nil || series.Len() == 0 {
		return nil, ErrNoSeries
	}
	closes := series.Close
	ret1m := pctChange(closes, 1)

	return Set{
		Return1M:    ret1m,
		Return3M:    pctChange(closes, 3),
		Return6M:    pctChange(closes, 6),
		SMA3Cross:   above(closes, rollingMean(closes, 3)),
		SMA6Cross:   above(closes, rollingMean(closes, 6)),
		RSI:         rsi(closes, rsiWindow),
		MACDSignal:  macdSignal(closes),
		Volatility:  rollingStd(ret1m, volatilityWindow),
		VolumeRatio: volumeRatio(series.Volume, volumeWindow),
	}, nil
}

// Latest returns the feature row of the most recent bar.
func Latest(series *timedataset.PriceSeries) ([]float64, error) {
	set, err := Compute(series)
	if err != nil {
		return nil, err
	}
	row := set.Row(set.Len() - 1)
	if !finite(row) {
		return nil, fmt.Errorf("latest bar has non-finite features %v, %w", row, ErrNoSamples)
	}
	return row, nil
}

// BuildDataset pairs the features of every bar with the return into the next bar across all
// series, in the order given. Rows with a non-finite feature or target are skipped.
func BuildDataset(series ...*timedataset.PriceSeries) ([][]float64, []float64, error) {
	var x [][]float64
	var y []float64
	for i, s := range series {
		set, err := Compute(s)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to compute features for series %d, %w", i, err)
		}
		for j := 0; j < s.Len()-1; j++ {
			row := set.Row(j)
			target := s.Close[j+1]/s.Close[j] - 1
			if !finite(row) || !finite([]float64{target}) {
				continue
			}
			x = append(x, row)
			y = append(y, target)
		}
	}
	if len(x) == 0 {
		return nil, nil, ErrNoSamples
	}
	return x, y, nil
}

func finite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
