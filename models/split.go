package models

import (
	"sort"
)

// minSplitSamples is the smallest number of rows either side of a split may hold.
const minSplitSamples = 2

const (
	// screenTol keeps candidates whose running sum gain is within this relative distance of the
	// best seen for rescoring.
	screenTol = 1e-9

	// tieTol is the relative distance below which rescored gains count as equal.
	tieTol = 1e-12
)

// split is a candidate partition of a node's rows on one feature.
type split struct {
	feature   int
	threshold float64
	gain      float64
}

// bestSplit searches every feature of cols over the given rows for the threshold with the
// greatest variance reduction. Features are visited in ascending order and thresholds in
// ascending value, and the first candidate wins ties. ok is false when no candidate reduces
// variance.
//
// The reduction of a partition into left and right is
//
//	var(y) - (nl*var(yl) + nr*var(yr))/n = nl*nr*(mean(yl)-mean(yr))^2 / n^2
//
// The scan evaluates it from running sums in each feature's sorted order. Those sums depend on
// the summation order, so the candidates near the best are rescored by partitionGain, which
// always sums in row order and gives identical partitions identical gains.
func bestSplit(cols [][]float64, y []float64, rows []int) (split, bool) {
	n := len(rows)
	if n < 2*minSplitSamples {
		return split{}, false
	}

	var mean float64
	for _, r := range rows {
		mean += y[r]
	}
	mean /= float64(n)

	var total float64
	for _, r := range rows {
		total += y[r] - mean
	}

	order := make([]int, n)
	nf := float64(n)

	var candidates []split
	var maxGain float64
	for f, col := range cols {
		copy(order, rows)
		sort.SliceStable(order, func(i, j int) bool {
			return col[order[i]] < col[order[j]]
		})

		var sumLeft float64
		for i := 1; i < n; i++ {
			sumLeft += y[order[i-1]] - mean

			lo, hi := col[order[i-1]], col[order[i]]
			if lo == hi {
				continue
			}
			nLeft, nRight := i, n-i
			if nLeft < minSplitSamples || nRight < minSplitSamples {
				continue
			}

			nl, nr := float64(nLeft), float64(nRight)
			diff := sumLeft/nl - (total-sumLeft)/nr
			gain := nl * nr * diff * diff / (nf * nf)
			if gain <= 0 || gain < maxGain*(1-screenTol) {
				continue
			}
			candidates = append(candidates, split{
				feature:   f,
				threshold: (lo + hi) / 2.0,
				gain:      gain,
			})
			maxGain = max(maxGain, gain)
		}
	}

	var rescored []split
	var bestGain float64
	for _, c := range candidates {
		if c.gain < maxGain*(1-screenTol) {
			continue
		}
		c.gain = partitionGain(cols[c.feature], y, rows, c.threshold, mean)
		rescored = append(rescored, c)
		bestGain = max(bestGain, c.gain)
	}
	if bestGain <= 0 {
		return split{}, false
	}
	for _, c := range rescored {
		if c.gain >= bestGain*(1-tieTol) {
			return c, true
		}
	}
	return split{}, false
}

// partitionGain is the variance reduction of splitting rows at threshold on col, summing the
// centered targets of each side in row order.
func partitionGain(col, y []float64, rows []int, threshold, mean float64) float64 {
	var sumLeft, sumRight float64
	var nLeft, nRight int
	for _, r := range rows {
		if col[r] <= threshold {
			sumLeft += y[r] - mean
			nLeft++
		} else {
			sumRight += y[r] - mean
			nRight++
		}
	}
	nl, nr, n := float64(nLeft), float64(nRight), float64(len(rows))
	diff := sumLeft/nl - sumRight/nr
	return nl * nr * diff * diff / (n * n)
}

// partition splits rows into those at or below the threshold on the feature and those above,
// preserving their relative order.
func partition(col []float64, rows []int, threshold float64) ([]int, []int) {
	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		if col[r] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}
