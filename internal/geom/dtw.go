package geom

import (
	"errors"
	"math"
)

var ErrEmptySequence = errors.New("dtw: empty sequence")

// DTW returns the dynamic time warping distance between two sequences with
// absolute difference as the local cost. A positive window restricts the
// warping path to a Sakoe-Chiba band; the band is widened to the length
// difference so a path always exists. Zero means unconstrained.
func DTW(s, t []float64, window int) (float64, error) {
	n, m := len(s), len(t)
	if n == 0 || m == 0 {
		return 0, ErrEmptySequence
	}

	w := max(n, m)
	if window > 0 {
		w = max(window, abs(n-m))
	}

	prev := make([]float64, m+1)
	curr := make([]float64, m+1)
	for j := range prev {
		prev[j] = math.Inf(1)
	}
	prev[0] = 0

	for i := 1; i <= n; i++ {
		for j := range curr {
			curr[j] = math.Inf(1)
		}
		lo, hi := max(1, i-w), min(m, i+w)
		for j := lo; j <= hi; j++ {
			cost := math.Abs(s[i-1] - t[j-1])
			curr[j] = cost + math.Min(prev[j], math.Min(curr[j-1], prev[j-1]))
		}
		prev, curr = curr, prev
	}

	return prev[m], nil
}

// DTWDistance adapts DTW with the given window to DistanceFn.
func DTWDistance(window int) DistanceFn {
	return func(vec, vec1 []float64) (float64, error) {
		return DTW(vec, vec1, window)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
