package models

import (
	"math"
	"math/rand/v2"
	"sort"
)

// FeaturesPerTree returns the number of columns each forest member is trained on given the
// total number of features: the floor of the square root, at least 1.
func FeaturesPerTree(nFeatures int) int {
	k := int(math.Floor(math.Sqrt(float64(nFeatures))))
	if k < 1 {
		k = 1
	}
	if k > nFeatures {
		k = nFeatures
	}
	return k
}

// memberRand returns the random stream owned by one forest member. Streams only depend on the
// base seed and the member index so members can be grown in any order.
func memberRand(seed uint64, member int) *rand.Rand {
	return rand.New(rand.NewPCG(seed^uint64(member), uint64(member)))
}

// bootstrap draws n row indices uniformly from [0, n) with replacement.
func bootstrap(r *rand.Rand, n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = r.IntN(n)
	}
	return rows
}

// featureSubset draws k distinct column indices uniformly from [0, n) and returns them in
// ascending order.
func featureSubset(r *rand.Rand, n, k int) []int {
	// partial Fisher-Yates over the first k positions
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + r.IntN(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	features := perm[:k:k]
	sort.Ints(features)
	return features
}
