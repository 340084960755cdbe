package geom

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

var ErrDimNotEqual = fmt.Errorf("vectors dimension is not equal")

// DistanceFn computes the distance between two vectors of equal dimension.
type DistanceFn func(vec, vec1 []float64) (float64, error)

const (
	DistanceEuclidean = "euclidean"
	DistanceManhattan = "manhattan"
	DistanceChebyshev = "chebyshev"
)

// DistanceFor resolves a metric by name. Each is bounded below by the
// difference on any single axis, so kd-tree pruning stays exact.
func DistanceFor(name string) (DistanceFn, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", DistanceEuclidean:
		return EuclideanDistance, nil
	case DistanceManhattan:
		return ManhattanDistance, nil
	case DistanceChebyshev:
		return ChebyshevDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance %q, use euclidean, manhattan or chebyshev", name)
	}
}

func EuclideanDistance(vec, vec1 []float64) (float64, error) {
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	return floats.Distance(vec, vec1, 2), nil
}

func ChebyshevDistance(vec, vec1 []float64) (float64, error) {
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	return floats.Distance(vec, vec1, math.Inf(1)), nil
}

func ManhattanDistance(vec, vec1 []float64) (float64, error) {
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	return floats.Distance(vec, vec1, 1), nil
}

// CosineDistance is 1 - cos(vec, vec1). A zero vector is at distance 1 from everything.
func CosineDistance(vec, vec1 []float64) (float64, error) {
	if len(vec) != len(vec1) {
		return 0.0, ErrDimNotEqual
	}
	n, n1 := floats.Norm(vec, 2), floats.Norm(vec1, 2)
	if n == 0 || n1 == 0 {
		return 1, nil
	}
	return 1 - floats.Dot(vec, vec1)/(n*n1), nil
}
