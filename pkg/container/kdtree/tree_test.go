package kdtree

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point []float64

func (p point) Dim(idx int) float64 { return p[idx] }
func (p point) Dimensions() int { return len(p) }
func (p point) Points() []float64 { return p }

func euclidean(vec, vec1 []float64) (float64, error) {
	var d float64
	for i := range vec {
		d += (vec[i] - vec1[i]) * (vec[i] - vec1[i])
	}
	return math.Sqrt(d), nil
}

func TestTree_KNN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		points   []Point
		query    point
		k        int
		expected []float64
	}{
		{
			name:     "one_dimension",
			points:   []Point{point{0}, point{1}, point{2}, point{10}, point{11}},
			query:    point{0.5},
			k:        3,
			expected: []float64{0.5, 0.5, 1.5},
		},
		{
			name:     "two_dimensions",
			points:   []Point{point{0, 0}, point{3, 4}, point{1, 1}, point{-2, 0}},
			query:    point{0, 0},
			k:        2,
			expected: []float64{0, math.Sqrt2},
		},
		{
			name:     "k_larger_than_tree",
			points:   []Point{point{1}, point{2}},
			query:    point{0},
			k:        5,
			expected: []float64{1, 2},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			tree := New(euclidean)
			tree.Build(test.points...)
			assert.Equal(t, len(test.points), tree.Len())

			neighbors, err := tree.KNN(test.query, test.k)
			require.NoError(t, err)
			require.Len(t, neighbors, len(test.expected))
			for i, n := range neighbors {
				assert.InDelta(t, test.expected[i], n.Distance, 1e-12)
			}
		})
	}
}

func TestTree_KNN_MatchesScan(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	points := make([]Point, 300)
	for i := range points {
		points[i] = point{rnd.Float64(), rnd.Float64(), rnd.Float64()}
	}
	tree := New(euclidean)
	tree.Build(points...)

	for q := 0; q < 20; q++ {
		query := point{rnd.Float64(), rnd.Float64(), rnd.Float64()}
		distances := make([]float64, len(points))
		for i, p := range points {
			distances[i], _ = euclidean(query, p.Points())
		}
		sort.Float64s(distances)

		neighbors, err := tree.KNN(query, 5)
		require.NoError(t, err)
		require.Len(t, neighbors, 5)
		for i := range neighbors {
			assert.InDelta(t, distances[i], neighbors[i].Distance, 1e-12)
		}
	}
}

func TestTree_KNN_TiesByBuildOrder(t *testing.T) {
	points := []Point{point{2}, point{-1}, point{1}, point{-2}, point{1}, point{0}}
	tree := New(euclidean)
	tree.Build(points...)

	neighbors, err := tree.KNN(point{0}, 4)
	require.NoError(t, err)
	indexes := make([]int, len(neighbors))
	for i, n := range neighbors {
		indexes[i] = n.Index
	}
	assert.Equal(t, []int{5, 1, 2, 4}, indexes)
}

func TestTree_KNN_Errors(t *testing.T) {
	tree := New(euclidean)
	_, err := tree.KNN(point{1}, 1)
	assert.ErrorIs(t, err, ErrEmptyTree)
	assert.Zero(t, tree.Len())

	tree.Build(point{1, 2})
	_, err = tree.KNN(point{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidK)
	_, err = tree.KNN(point{1}, 1)
	assert.Error(t, err)
}
