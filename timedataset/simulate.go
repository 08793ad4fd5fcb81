package timedataset

import (
	"math"
	"math/rand/v2"
	"time"
)

// GenerateMonthlyT returns n month end timestamps, the last one falling in the month of end.
func GenerateMonthlyT(n int, end time.Time) []time.Time {
	t := make([]time.Time, 0, n)
	year, month, _ := end.Date()
	first := time.Date(year, month-time.Month(n-1), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		// day 0 of the following month is the last day of this one
		t = append(t, time.Date(first.Year(), first.Month()+time.Month(i)+1, 0, 0, 0, 0, 0, time.UTC))
	}
	return t
}

// SimulatePrices generates a geometric random walk of closes starting at start with the given
// per bar drift and volatility, along with volumes scattered around baseVolume.
func SimulatePrices(r *rand.Rand, n int, start, drift, vol, baseVolume float64) ([]float64, []float64) {
	closes := make([]float64, 0, n)
	volumes := make([]float64, 0, n)
	price := start
	for i := 0; i < n; i++ {
		if i > 0 {
			price *= math.Exp(drift - vol*vol/2 + vol*r.NormFloat64())
		}
		closes = append(closes, price)
		volumes = append(volumes, math.Max(0, baseVolume*(1+0.25*r.NormFloat64())))
	}
	return closes, volumes
}

// GenerateSeries builds a monthly PriceSeries from a random walk ending in the month of end.
func GenerateSeries(r *rand.Rand, n int, end time.Time, start, drift, vol float64) (*PriceSeries, error) {
	closes, volumes := SimulatePrices(r, n, start, drift, vol, 1e6)
	return NewPriceSeries(GenerateMonthlyT(n, end), closes, volumes)
}
