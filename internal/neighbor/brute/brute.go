// Package brute implements the exact Euclidean neighbor scan.
package brute

import (
	"context"
	"fmt"

	"github.com/go-sod/clamp/internal/geom"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/pkg/pqueue"
)

var _ neighbor.Index = (*Index)(nil)

type Option func(*Index)

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
	return idx
}

// Index keeps the training vectors in memory and ranks all of them per query.
type Index struct {
	distFn  geom.DistanceFn
	vectors [][]float64
	dim     int
}

func (idx *Index) Build(ctx context.Context, vectors [][]float64) error {
	dim, err := neighbor.ValidateVectors(vectors)
	if err != nil {
		return &neighbor.IndexBuildError{Backend: neighbor.AlgTypeBrute, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return &neighbor.IndexBuildError{Backend: neighbor.AlgTypeBrute, Err: err}
	}
	idx.vectors = vectors
	idx.dim = dim
	return nil
}

// Query returns the k closest positions. Equal distances keep the lower position first.
func (idx *Index) Query(ctx context.Context, vec []float64, k int) ([]int, error) {
	if err := neighbor.ValidateQuery(vec, k, len(idx.vectors), idx.dim); err != nil {
		return nil, &neighbor.QueryError{Backend: neighbor.AlgTypeBrute, K: k, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, &neighbor.QueryError{Backend: neighbor.AlgTypeBrute, K: k, Err: err}
	}

	queue := pqueue.New(pqueue.WithCap[int](uint(k)))
	for pos := range idx.vectors {
		dist, err := idx.distFn(vec, idx.vectors[pos])
		if err != nil {
			return nil, &neighbor.QueryError{
				Backend: neighbor.AlgTypeBrute,
				K:       k,
				Err:     fmt.Errorf("distance to %d: %w", pos, err),
			}
		}
		queue.Push(pos, dist)
	}
	return queue.PopAll(), nil
}

func (idx *Index) Len() int {
	return len(idx.vectors)
}

func (idx *Index) Close() error {
	idx.vectors = nil
	return nil
}
