package transform

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-sod/clamp/internal/geom"
	"github.com/go-sod/clamp/internal/logging"
	"golang.org/x/sync/errgroup"
)

var _ Transform = (*DistanceKernel)(nil)

type KernelOption func(*DistanceKernel)

// WithWindow sets the Sakoe-Chiba band of the DTW distance. Zero is unconstrained.
func WithWindow(w int) KernelOption {
	return func(k *DistanceKernel) {
		k.distFn = geom.DTWDistance(w)
	}
}

// WithWorkers bounds the precompute goroutines. Non-positive means GOMAXPROCS.
func WithWorkers(n int) KernelOption {
	return func(k *DistanceKernel) {
		k.workers = n
	}
}

func WithDistance(fn geom.DistanceFn) KernelOption {
	return func(k *DistanceKernel) {
		k.distFn = fn
	}
}

func NewDistanceKernel(opts ...KernelOption) *DistanceKernel {
	k := &DistanceKernel{distFn: geom.DTWDistance(0)}
	for _, opt := range opts {
		opt(k)
	}
	if k.workers < 1 {
		k.workers = runtime.GOMAXPROCS(0)
	}
	return k
}

// DistanceKernel represents a neighbor by its distances to the other
// neighbors and the query by its distances to the same neighbors, in
// neighbor order.
type DistanceKernel struct {
	distFn  geom.DistanceFn
	workers int
	train   [][]float64
	matrix  [][]float64
}

// Precompute fills the symmetric zero-diagonal distance matrix over train.
func (k *DistanceKernel) Precompute(ctx context.Context, train [][]float64) error {
	logger := logging.FromContext(ctx)
	start := time.Now()

	n := len(train)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(k.workers)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for j := i + 1; j < n; j++ {
				d, err := k.distFn(train[i], train[j])
				if err != nil {
					return fmt.Errorf("distance %d-%d: %w", i, j, err)
				}
				matrix[i][j] = d
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("precompute distance matrix: %w", err)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			matrix[j][i] = matrix[i][j]
		}
	}

	k.train = train
	k.matrix = matrix
	logger.Debugf("distance matrix %dx%d computed in %s", n, n, time.Since(start))
	return nil
}

// Distance returns the precomputed distance between two training positions.
func (k *DistanceKernel) Distance(i, j int) (float64, error) {
	if k.matrix == nil {
		return 0, ErrNotPrecomputed
	}
	if err := checkPositions([]int{i, j}, len(k.matrix)); err != nil {
		return 0, err
	}
	return k.matrix[i][j], nil
}

func (k *DistanceKernel) TrainingRows(positions []int) ([][]float64, error) {
	if k.matrix == nil {
		return nil, ErrNotPrecomputed
	}
	if err := checkPositions(positions, len(k.matrix)); err != nil {
		return nil, err
	}
	rows := make([][]float64, len(positions))
	for r, i := range positions {
		rows[r] = make([]float64, len(positions))
		for c, j := range positions {
			rows[r][c] = k.matrix[i][j]
		}
	}
	return rows, nil
}

func (k *DistanceKernel) QueryRow(query []float64, positions []int) ([]float64, error) {
	if k.matrix == nil {
		return nil, ErrNotPrecomputed
	}
	if err := checkPositions(positions, len(k.train)); err != nil {
		return nil, err
	}
	row := make([]float64, len(positions))
	for c, j := range positions {
		d, err := k.distFn(query, k.train[j])
		if err != nil {
			return nil, fmt.Errorf("query distance to %d: %w", j, err)
		}
		row[c] = d
	}
	return row, nil
}
