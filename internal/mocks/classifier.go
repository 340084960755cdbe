package mocks

import (
	"context"

	"github.com/go-sod/clamp/internal/classifier"
	"github.com/stretchr/testify/mock"
)

var (
	_ classifier.Classifier = (*Classifier)(nil)
	_ classifier.Model      = (*Model)(nil)
)

type Classifier struct {
	mock.Mock
}

func (m *Classifier) Train(ctx context.Context, labels []int, rows [][]float64) (classifier.Model, error) {
	args := m.Called(ctx, labels, rows)
	model, _ := args.Get(0).(classifier.Model)
	return model, args.Error(1)
}

type Model struct {
	mock.Mock
}

func (m *Model) Predict(ctx context.Context, row []float64) (int, error) {
	args := m.Called(ctx, row)
	return args.Int(0), args.Error(1)
}
