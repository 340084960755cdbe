package mocks

import (
	"context"

	"github.com/go-sod/clamp/internal/transform"
	"github.com/stretchr/testify/mock"
)

var _ transform.Transform = (*Transform)(nil)

type Transform struct {
	mock.Mock
}

func (m *Transform) Precompute(ctx context.Context, train [][]float64) error {
	args := m.Called(ctx, train)
	return args.Error(0)
}

func (m *Transform) TrainingRows(positions []int) ([][]float64, error) {
	args := m.Called(positions)
	rows, _ := args.Get(0).([][]float64)
	return rows, args.Error(1)
}

func (m *Transform) QueryRow(query []float64, positions []int) ([]float64, error) {
	args := m.Called(query, positions)
	row, _ := args.Get(0).([]float64)
	return row, args.Error(1)
}
