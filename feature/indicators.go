package feature

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	rsiWindow        = 14
	volatilityWindow = 12
	volumeWindow     = 3
	macdFastSpan     = 12
	macdSlowSpan     = 26
	macdSignalSpan   = 9

	// rsiEpsilon keeps the relative strength finite when there were no losses
	rsiEpsilon = 1e-9
)

// pctChange returns x[i]/x[i-k]-1, or 0 for the first k bars.
func pctChange(x []float64, k int) []float64 {
	res := make([]float64, len(x))
	for i := k; i < len(x); i++ {
		res[i] = x[i]/x[i-k] - 1
	}
	return res
}

// rollingMean returns the trailing mean over window bars. Bars before the first full window
// take the first full window's mean. If no window fits every value is NaN.
func rollingMean(x []float64, window int) []float64 {
	res := make([]float64, len(x))
	if len(x) < window {
		for i := range res {
			res[i] = math.NaN()
		}
		return res
	}
	for i := window - 1; i < len(x); i++ {
		res[i] = floats.Sum(x[i-window+1:i+1]) / float64(window)
	}
	for i := 0; i < window-1; i++ {
		res[i] = res[window-1]
	}
	return res
}

// above returns 1 where x is strictly greater than ref and 0 elsewhere, including where ref is
// NaN.
func above(x, ref []float64) []float64 {
	res := make([]float64, len(x))
	for i := range x {
		if x[i] > ref[i] {
			res[i] = 1
		}
	}
	return res
}

// rsi returns the relative strength index over a trailing window of bar to bar changes, the
// change into the first bar counting as zero. Bars without a full window are 0.
func rsi(x []float64, window int) []float64 {
	gains := make([]float64, len(x))
	losses := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}

	res := make([]float64, len(x))
	for i := window - 1; i < len(x); i++ {
		gain := floats.Sum(gains[i-window+1:i+1]) / float64(window)
		loss := floats.Sum(losses[i-window+1:i+1]) / float64(window)
		rs := gain / (loss + rsiEpsilon)
		res[i] = 100 - 100/(1+rs)
	}
	return res
}

// ewm returns the exponentially weighted mean with alpha = 2/(span+1), where bar i is the
// weighted average of every bar up to i with weights (1-alpha)^age.
func ewm(x []float64, span int) []float64 {
	decay := 1 - 2/(float64(span)+1)
	res := make([]float64, len(x))
	var num, den float64
	for i, v := range x {
		num = num*decay + v
		den = den*decay + 1
		res[i] = num / den
	}
	return res
}

// macdSignal returns 1 where the MACD line is above its signal line.
func macdSignal(x []float64) []float64 {
	fast := ewm(x, macdFastSpan)
	slow := ewm(x, macdSlowSpan)
	macd := make([]float64, len(x))
	floats.SubTo(macd, fast, slow)
	return above(macd, ewm(macd, macdSignalSpan))
}

// rollingStd returns the trailing sample standard deviation over window bars, 0 until a full
// window is available.
func rollingStd(x []float64, window int) []float64 {
	res := make([]float64, len(x))
	for i := window - 1; i < len(x); i++ {
		res[i] = stat.StdDev(x[i-window+1:i+1], nil)
	}
	return res
}

// volumeRatio returns volume relative to its trailing mean, 1 until a full window is available
// or when the trailing mean is zero.
func volumeRatio(volume []float64, window int) []float64 {
	res := make([]float64, len(volume))
	for i := range res {
		res[i] = 1
	}
	for i := window - 1; i < len(volume); i++ {
		avg := floats.Sum(volume[i-window+1:i+1]) / float64(window)
		if avg > 0 {
			res[i] = volume[i] / avg
		}
	}
	return res
}
