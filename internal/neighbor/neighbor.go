// Package neighbor defines the contract of the neighbor indexes: build once
// over the training vectors, then return the k closest training positions
// for a query, closest first.
package neighbor

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Index is built once over position-indexed training vectors. Query must be
// deterministic for identical inputs and index state.
type Index interface {
	Build(ctx context.Context, vectors [][]float64) error
	Query(ctx context.Context, vec []float64, k int) ([]int, error)
	Len() int
	Close() error
}

// ProvideFn returns a fresh index whose on-disk artifacts, if any, live in dir.
type ProvideFn func(dir string) (Index, error)

type AlgType string

const (
	AlgTypeBrute AlgType = "brute"
	AlgTypeKD    AlgType = "kd"
	AlgTypePSD   AlgType = "psd"
	AlgTypeRHP   AlgType = "rhp"
)

func ParseAlgType(s string) (AlgType, error) {
	switch a := AlgType(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgTypeBrute, AlgTypeKD, AlgTypePSD, AlgTypeRHP:
		return a, nil
	default:
		return "", fmt.Errorf("unknown neighbor backend %q, use psd, rhp, brute or kd", s)
	}
}

// Config selects the backend. Distance is the metric of the exact backends,
// brute and kd; the LSH families rank by their own metric.
type Config struct {
	Type     AlgType `envconfig:"CLAMP_NEIGHBOR_BACKEND" default:"psd" toml:"backend"`
	Distance string  `envconfig:"CLAMP_BRUTE_DISTANCE" default:"euclidean" toml:"distance"`
}

func (c Config) IndexType() AlgType {
	return c.Type
}

var (
	ErrEmptyIndex   = errors.New("no vectors to index")
	ErrDimNotEqual  = errors.New("vector dimension differs from the index")
	ErrInvalidK     = errors.New("k must be positive")
	ErrKTooLarge    = errors.New("k exceeds the indexed population")
	ErrNotBuilt     = errors.New("index is not built")
	ErrInvalidParam = errors.New("invalid index parameter")
)

// IndexBuildError reports a failed Build.
type IndexBuildError struct {
	Backend AlgType
	Err     error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("build %s index: %v", e.Backend, e.Err)
}

func (e *IndexBuildError) Unwrap() error {
	return e.Err
}

// QueryError reports a failed Query.
type QueryError struct {
	Backend AlgType
	K       int
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s index with k=%d: %v", e.Backend, e.K, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// ValidateVectors checks that vectors is non-empty and rectangular and
// returns its dimensionality.
func ValidateVectors(vectors [][]float64) (int, error) {
	if len(vectors) == 0 {
		return 0, ErrEmptyIndex
	}
	dim := len(vectors[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: zero dimensions", ErrInvalidParam)
	}
	for i := range vectors {
		if len(vectors[i]) != dim {
			return 0, fmt.Errorf("vector %d: %w", i, ErrDimNotEqual)
		}
	}
	return dim, nil
}

// ValidateQuery checks a query against an index of the given population and
// dimensionality.
func ValidateQuery(vec []float64, k, population, dim int) error {
	switch {
	case population == 0:
		return ErrNotBuilt
	case k < 1:
		return ErrInvalidK
	case k > population:
		return fmt.Errorf("%w: %d > %d", ErrKTooLarge, k, population)
	case len(vec) != dim:
		return fmt.Errorf("%w: %d != %d", ErrDimNotEqual, len(vec), dim)
	}
	return nil
}
