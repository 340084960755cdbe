// Package classifier defines the local classifier contract used on the eager
// path: a fresh model trained per query on the neighbor set.
package classifier

import (
	"context"
	"errors"
	"fmt"
)

type Classifier interface {
	Train(ctx context.Context, labels []int, rows [][]float64) (Model, error)
}

type Model interface {
	Predict(ctx context.Context, row []float64) (int, error)
}

// Inspector is implemented by models that can describe what they kept.
type Inspector interface {
	Classes() []int
	SupportVectors() int
}

type ProvideFn func() (Classifier, error)

type Config struct {
	Params string `envconfig:"CLAMP_SVM_PARAMS" default:"t:0" toml:"params"`
}

var (
	ErrNoSamples   = errors.New("no training samples")
	ErrMisaligned  = errors.New("labels and rows differ in length")
	ErrRaggedRows  = errors.New("training rows differ in dimension")
	ErrDimMismatch = errors.New("row dimension differs from the model")
)

type TrainError struct {
	Samples int
	Err     error
}

func (e *TrainError) Error() string {
	return fmt.Sprintf("train local classifier on %d samples: %v", e.Samples, e.Err)
}

func (e *TrainError) Unwrap() error {
	return e.Err
}

type PredictError struct {
	Err error
}

func (e *PredictError) Error() string {
	return fmt.Sprintf("local prediction: %v", e.Err)
}

func (e *PredictError) Unwrap() error {
	return e.Err
}

// ValidateTraining checks alignment of labels and rows and returns the row
// dimension.
func ValidateTraining(labels []int, rows [][]float64) (int, error) {
	if len(rows) == 0 {
		return 0, ErrNoSamples
	}
	if len(labels) != len(rows) {
		return 0, fmt.Errorf("%w: %d labels, %d rows", ErrMisaligned, len(labels), len(rows))
	}
	dim := len(rows[0])
	for i := range rows {
		if len(rows[i]) != dim {
			return 0, fmt.Errorf("%w: row %d", ErrRaggedRows, i)
		}
	}
	return dim, nil
}
