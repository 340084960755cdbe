// Package kd serves exact neighbor queries from a kd-tree.
package kd

import (
	"context"
	"fmt"

	"github.com/go-sod/clamp/internal/geom"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/pkg/container/kdtree"
)

var _ neighbor.Index = (*Index)(nil)

type Option func(*Index)

// WithDistance sets the metric. It must be bounded below by the difference
// on a single axis; see geom.DistanceFor.
func WithDistance(fn geom.DistanceFn) Option {
	return func(idx *Index) {
		idx.distFn = fn
	}
}

func New(opts ...Option) *Index {
	idx := &Index{distFn: geom.EuclideanDistance}
	for _, opt := range opts {
		opt(idx)
	}
	idx.tree = kdtree.New(kdtree.DistanceFn(idx.distFn))
	return idx
}

type Index struct {
	distFn geom.DistanceFn
	tree   *kdtree.Tree
	dim    int
}

func (idx *Index) Build(ctx context.Context, vectors [][]float64) error {
	dim, err := neighbor.ValidateVectors(vectors)
	if err != nil {
		return &neighbor.IndexBuildError{Backend: neighbor.AlgTypeKD, Err: err}
	}
	points := make([]kdtree.Point, len(vectors))
	for i := range vectors {
		points[i] = geom.NewPoint(vectors[i])
	}
	if err := ctx.Err(); err != nil {
		return &neighbor.IndexBuildError{Backend: neighbor.AlgTypeKD, Err: err}
	}
	idx.tree.Build(points...)
	idx.dim = dim
	return nil
}

// Query returns the k closest positions. Equal distances are ordered by position.
func (idx *Index) Query(ctx context.Context, vec []float64, k int) ([]int, error) {
	if err := neighbor.ValidateQuery(vec, k, idx.tree.Len(), idx.dim); err != nil {
		return nil, &neighbor.QueryError{Backend: neighbor.AlgTypeKD, K: k, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &neighbor.QueryError{Backend: neighbor.AlgTypeKD, K: k, Err: err}
	}

	found, err := idx.tree.KNN(geom.NewPoint(vec), k)
	if err != nil {
		return nil, &neighbor.QueryError{Backend: neighbor.AlgTypeKD, K: k, Err: err}
	}
	if len(found) != k {
		return nil, &neighbor.QueryError{
			Backend: neighbor.AlgTypeKD,
			K:       k,
			Err:     fmt.Errorf("tree returned %d neighbors", len(found)),
		}
	}

	positions := make([]int, len(found))
	for i := range found {
		positions[i] = found[i].Index
	}
	return positions, nil
}

func (idx *Index) Len() int {
	return idx.tree.Len()
}

func (idx *Index) Close() error {
	idx.tree = kdtree.New(kdtree.DistanceFn(idx.distFn))
	idx.dim = 0
	return nil
}
