package score

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScores(t *testing.T) {
	testData := map[string]struct {
		predicted []float64
		actual    []float64
		expected  *Scores
		err       error
	}{
		"perfect": {
			predicted: []float64{0.1, -0.2, 0.3},
			actual:    []float64{0.1, -0.2, 0.3},
			expected:  &Scores{Samples: 3, R2: 1.0, DirectionalAccuracy: 1.0},
		},
		"offset": {
			predicted: []float64{2, 2, -1, 0},
			actual:    []float64{1, 3, 1, 2},
			expected:  &Scores{Samples: 4, MSE: 2.5, MAE: 1.5, MAPE: 13.0 / 12.0, R2: 1 - 10/2.75, DirectionalAccuracy: 0.5},
		},
		"nan skipped": {
			predicted: []float64{1, math.NaN(), 3},
			actual:    []float64{1, 2, math.NaN()},
			expected:  &Scores{Samples: 1, R2: 1.0, DirectionalAccuracy: 1.0},
		},
		"length mismatch": {
			predicted: []float64{1},
			actual:    []float64{1, 2},
			err:       ErrResLenMismatch,
		},
		"no values": {
			predicted: []float64{math.NaN()},
			actual:    []float64{1},
			err:       ErrNoValues,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := NewScores(td.predicted, td.actual)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected.Samples, res.Samples)
			assert.InDelta(t, td.expected.MSE, res.MSE, 1e-9)
			assert.InDelta(t, td.expected.MAE, res.MAE, 1e-9)
			assert.InDelta(t, td.expected.MAPE, res.MAPE, 1e-9)
			assert.InDelta(t, td.expected.R2, res.R2, 1e-9)
			assert.InDelta(t, td.expected.DirectionalAccuracy, res.DirectionalAccuracy, 1e-9)
		})
	}
}

func TestDirectionalAccuracy(t *testing.T) {
	res, err := DirectionalAccuracy([]float64{0, 1, -1, 0}, []float64{0, -1, -2, 3})
	require.Nil(t, err)
	assert.Equal(t, 0.5, res)
}
