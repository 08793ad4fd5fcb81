package models

import (
	"math/rand/v2"
	"testing"

	mat_ "github.com/aouyang1/go-stockforest/mat"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// generateData returns m rows of n uniform features with a target driven mostly by the first
// two features.
func generateData(m, n int, seed uint64) (*mat.Dense, *mat.Dense) {
	r := rand.New(rand.NewPCG(seed, seed+1))
	x := mat.NewDense(m, n, nil)
	y := mat.NewDense(m, 1, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			x.Set(i, j, r.Float64()*10)
		}
		val := 3*x.At(i, 0) + 0.5*x.At(i, 1)*x.At(i, 1)
		if n > 2 {
			val += 0.1 * x.At(i, 2)
		}
		y.Set(i, 0, val+r.NormFloat64()*0.1)
	}
	return x, y
}

func dense(t *testing.T, x [][]float64) *mat.Dense {
	mx, err := mat_.NewDenseFromArray(x)
	require.Nil(t, err)
	return mx
}
