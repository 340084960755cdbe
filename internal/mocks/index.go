// Package mocks holds testify mocks of the run collaborators.
package mocks

import (
	"context"

	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/stretchr/testify/mock"
)

var _ neighbor.Index = (*Index)(nil)

type Index struct {
	mock.Mock
}

func (m *Index) Build(ctx context.Context, vectors [][]float64) error {
	args := m.Called(ctx, vectors)
	return args.Error(0)
}

func (m *Index) Query(ctx context.Context, vec []float64, k int) ([]int, error) {
	args := m.Called(ctx, vec, k)
	positions, _ := args.Get(0).([]int)
	return positions, args.Error(1)
}

func (m *Index) Len() int {
	args := m.Called()
	return args.Int(0)
}

func (m *Index) Close() error {
	args := m.Called()
	return args.Error(0)
}
