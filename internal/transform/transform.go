// Package transform produces the representation the local classifier is
// trained and queried on: the raw features, or elastic distances to the
// neighbor set.
package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Transform maps a neighbor set and a query into one feature space.
// Precompute runs once over the whole training set before the first query.
type Transform interface {
	Precompute(ctx context.Context, train [][]float64) error
	TrainingRows(positions []int) ([][]float64, error)
	QueryRow(query []float64, positions []int) ([]float64, error)
}

type ProvideFn func() (Transform, error)

type Mode string

const (
	ModeRaw Mode = "raw"
	ModeDTW Mode = "dtw"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRaw, ModeDTW:
		return m, nil
	default:
		return "", fmt.Errorf("unknown feature mode %q, use raw or dtw", s)
	}
}

type Config struct {
	Mode    Mode `envconfig:"CLAMP_FEATURE" default:"raw" toml:"mode"`
	Window  int  `envconfig:"CLAMP_DTW_WINDOW" default:"0" toml:"window"`
	Workers int  `envconfig:"CLAMP_DTW_WORKERS" default:"0" toml:"workers"`
}

var (
	ErrNotPrecomputed = errors.New("transform is not precomputed")
	ErrPosition       = errors.New("position out of range")
)

func checkPositions(positions []int, n int) error {
	for _, pos := range positions {
		if pos < 0 || pos >= n {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrPosition, pos, n)
		}
	}
	return nil
}
