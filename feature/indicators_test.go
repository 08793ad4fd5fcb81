package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertInDeltaSlice(t *testing.T, expected, actual []float64) {
	t.Helper()
	if !assert.Len(t, actual, len(expected)) {
		return
	}
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.True(t, math.IsNaN(actual[i]), "index %d", i)
			continue
		}
		assert.InDelta(t, expected[i], actual[i], 1e-6, "index %d", i)
	}
}

func TestPctChange(t *testing.T) {
	testData := map[string]struct {
		x        []float64
		k        int
		expected []float64
	}{
		"one":          {[]float64{10, 11, 12, 11}, 1, []float64{0, 0.1, 1.0 / 11, -1.0 / 12}},
		"three":        {[]float64{10, 11, 12, 11, 13}, 3, []float64{0, 0, 0, 0.1, 2.0 / 11}},
		"short series": {[]float64{10, 11}, 6, []float64{0, 0}},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assertInDeltaSlice(t, td.expected, pctChange(td.x, td.k))
		})
	}
}

func TestRollingMean(t *testing.T) {
	testData := map[string]struct {
		x        []float64
		window   int
		expected []float64
	}{
		"back filled": {
			[]float64{10, 11, 12, 11, 13, 14, 12},
			3,
			[]float64{11, 11, 11, 34.0 / 3, 12, 38.0 / 3, 13},
		},
		"exact window": {
			[]float64{1, 2, 3},
			3,
			[]float64{2, 2, 2},
		},
		"too short": {
			[]float64{1, 2},
			3,
			[]float64{math.NaN(), math.NaN()},
		},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assertInDeltaSlice(t, td.expected, rollingMean(td.x, td.window))
		})
	}
}

func TestAbove(t *testing.T) {
	res := above([]float64{1, 2, 3, 4}, []float64{0, 2, math.NaN(), 5})
	assert.Equal(t, []float64{1, 0, 0, 0}, res)
}

func TestRSI(t *testing.T) {
	x := []float64{10, 11, 12, 11, 13, 14, 12}
	res := rsi(x, 3)
	assertInDeltaSlice(t, []float64{0, 0, 100, 100 - 100.0/3, 75, 75, 60}, res)

	// flat prices have neither gains nor losses
	assert.Equal(t, []float64{0, 0, 0, 0}, rsi([]float64{5, 5, 5, 5}, 3))
}

func TestEWM(t *testing.T) {
	assertInDeltaSlice(t, []float64{1, 2.5 / 1.5, 4.25 / 1.75}, ewm([]float64{1, 2, 3}, 3))
	assertInDeltaSlice(t, []float64{4, 4, 4, 4}, ewm([]float64{4, 4, 4, 4}, 26))
}

func TestMACDSignal(t *testing.T) {
	rising := make([]float64, 40)
	falling := make([]float64, 40)
	for i := range rising {
		rising[i] = float64(i + 1)
		falling[i] = float64(100 - i)
	}

	res := macdSignal(rising)
	assert.Equal(t, 0.0, res[0])
	for i := 1; i < len(res); i++ {
		assert.Equal(t, 1.0, res[i], "index %d", i)
	}

	for i, v := range macdSignal(falling) {
		assert.Equal(t, 0.0, v, "index %d", i)
	}
}

func TestRollingStd(t *testing.T) {
	assertInDeltaSlice(t, []float64{0, 0, 1, 1, math.Sqrt(7)}, rollingStd([]float64{1, 2, 3, 4, 8}, 3))
	assert.Equal(t, []float64{0, 0}, rollingStd([]float64{1, 2}, 3))
}

func TestVolumeRatio(t *testing.T) {
	res := volumeRatio([]float64{100, 200, 300, 0, 0, 0, 600}, 3)
	assertInDeltaSlice(t, []float64{1, 1, 1.5, 0, 0, 1, 3}, res)
}
