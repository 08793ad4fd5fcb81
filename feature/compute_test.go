package feature

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/aouyang1/go-stockforest/timedataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeries(t *testing.T, closes, volumes []float64) *timedataset.PriceSeries {
	ts := timedataset.GenerateMonthlyT(len(closes), time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	ps, err := timedataset.NewPriceSeries(ts, closes, volumes)
	require.Nil(t, err)
	return ps
}

func TestNames(t *testing.T) {
	expected := []string{
		"return_1m", "return_3m", "return_6m",
		"sma3_cross", "sma6_cross", "rsi",
		"macd_signal", "volatility", "volume_ratio",
	}
	assert.Equal(t, expected, Names())
	assert.Equal(t, 9, NumFeatures())

	labels := NewLabels(Names())
	idx, ok := labels.Index("rsi")
	assert.True(t, ok)
	assert.Equal(t, 5, idx)
	_, ok = labels.Index("missing")
	assert.False(t, ok)

	require.Nil(t, labels.Compatible(expected))
	assert.ErrorIs(t, labels.Compatible(expected[:8]), ErrIncompatibleLabels)
	swapped := Names()
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.ErrorIs(t, labels.Compatible(swapped), ErrIncompatibleLabels)
}

func TestCompute(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 14, 12}
	volumes := []float64{100, 200, 300, 0, 0, 0, 600}
	set, err := Compute(newSeries(t, closes, volumes))
	require.Nil(t, err)
	require.Equal(t, 7, set.Len())

	assertInDeltaSlice(t, []float64{0, 0.1, 1.0 / 11, -1.0 / 12, 2.0 / 11, 1.0 / 13, -2.0 / 14}, set[Return1M])
	assertInDeltaSlice(t, []float64{0, 0, 0, 0.1, 13.0/11 - 1, 14.0/12 - 1, 12.0/11 - 1}, set[Return3M])
	assertInDeltaSlice(t, []float64{0, 0, 0, 0, 0, 0, 0.2}, set[Return6M])
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 1, 0}, set[SMA3Cross])
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 1, 0}, set[SMA6Cross])
	assert.Equal(t, make([]float64, 7), set[RSI])
	assert.Equal(t, make([]float64, 7), set[Volatility])
	assertInDeltaSlice(t, []float64{1, 1, 1.5, 0, 0, 1, 3}, set[VolumeRatio])

	row := set.Row(6)
	require.Len(t, row, 9)
	assert.InDelta(t, -2.0/14, row[0], 1e-12)
	assert.Equal(t, 3.0, row[8])

	mx := set.Matrix()
	m, n := mx.Dims()
	assert.Equal(t, 7, m)
	assert.Equal(t, 9, n)
	assert.Equal(t, row[0], mx.At(6, 0))
	assert.Equal(t, row[8], mx.At(6, 8))

	latest, err := Latest(newSeries(t, closes, volumes))
	require.Nil(t, err)
	assert.Equal(t, row, latest)

	_, err = Compute(nil)
	assert.ErrorIs(t, err, ErrNoSeries)
}

func TestComputeLongSeries(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	ps, err := timedataset.GenerateSeries(r, 48, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), 50, 0.005, 0.08)
	require.Nil(t, err)

	set, err := Compute(ps)
	require.Nil(t, err)
	for i := 0; i < set.Len(); i++ {
		row := set.Row(i)
		assert.True(t, finite(row), "row %d", i)

		rsiVal := row[5]
		assert.GreaterOrEqual(t, rsiVal, 0.0)
		assert.LessOrEqual(t, rsiVal, 100.0)
		if i < 13 {
			assert.Equal(t, 0.0, rsiVal)
		}
		if i < 11 {
			assert.Equal(t, 0.0, row[7])
		} else {
			assert.Greater(t, row[7], 0.0)
		}
	}
}

func TestBuildDataset(t *testing.T) {
	a := newSeries(t, []float64{10, 11, 12, 11, 13, 14, 12}, []float64{1, 1, 1, 1, 1, 1, 1})
	b := newSeries(t, []float64{20, 10, 40}, []float64{5, 5, 5})

	x, y, err := BuildDataset(a, b)
	require.Nil(t, err)
	require.Len(t, x, 8)
	require.Len(t, y, 8)
	assertInDeltaSlice(t, []float64{0.1, 1.0 / 11, -1.0 / 12, 2.0 / 11, 1.0 / 13, -2.0 / 14, -0.5, 3}, y)

	// rows are the features of the bar the return starts from
	setB, err := Compute(b)
	require.Nil(t, err)
	assert.Equal(t, setB.Row(1), x[7])

	testData := map[string]struct {
		series []*timedataset.PriceSeries
		err    error
	}{
		"no series":  {nil, ErrNoSamples},
		"single bar": {[]*timedataset.PriceSeries{newSeries(t, []float64{1}, []float64{1})}, ErrNoSamples},
		"nil series": {[]*timedataset.PriceSeries{a, nil}, ErrNoSeries},
	}
	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			_, _, err := BuildDataset(td.series...)
			assert.ErrorIs(t, err, td.err)
		})
	}
}
