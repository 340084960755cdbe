// Package engine decides per query between the lazy path, which copies the
// label the neighbors agree on, and the eager path, which trains a local
// classifier on the neighbor set.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-sod/clamp/internal/classifier"
	"github.com/go-sod/clamp/internal/logging"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/internal/transform"
)

type Path int

const (
	PathLazy Path = iota
	PathEager
)

func (p Path) String() string {
	if p == PathEager {
		return "eager"
	}
	return "lazy"
}

// Decision is the outcome of one query. Train and predict durations are zero
// on the lazy path.
type Decision struct {
	Label       int
	Path        Path
	Neighbors   []int
	TrainTime   time.Duration
	PredictTime time.Duration
}

var (
	ErrAgreement   = errors.New("agreement must be in (0.5, 1]")
	ErrInvalidK    = errors.New("k must be between 1 and the training set size")
	ErrNeighborSet = errors.New("neighbor index returned an invalid neighbor set")
)

type Option func(*Engine)

// WithAgreement sets the share of neighbors that must carry the same label
// for the lazy path. 1 requires all of them.
func WithAgreement(a float64) Option {
	return func(e *Engine) {
		e.agreement = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(index neighbor.Index, tf transform.Transform, clf classifier.Classifier, labels []int, k int, opts ...Option) (*Engine, error) {
	e := &Engine{
		index:     index,
		transform: tf,
		clf:       clf,
		labels:    labels,
		k:         k,
		agreement: 1,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if !(e.agreement > 0.5 && e.agreement <= 1) {
		return nil, fmt.Errorf("%w: %v", ErrAgreement, e.agreement)
	}
	if k < 1 || k > len(labels) {
		return nil, fmt.Errorf("%w: k=%d, n=%d", ErrInvalidK, k, len(labels))
	}
	e.quorum = int(math.Ceil(e.agreement*float64(k) - 1e-9))
	return e, nil
}

type Engine struct {
	index     neighbor.Index
	transform transform.Transform
	clf       classifier.Classifier
	labels    []int
	k         int
	agreement float64
	quorum    int
	now       func() time.Time
}

// Quorum is the number of agreeing neighbors that selects the lazy path.
func (e *Engine) Quorum() int {
	return e.quorum
}

// Decide runs one query through retrieval and the lazy/eager rule. Any
// collaborator failure is returned as is; there is no fallback between paths.
func (e *Engine) Decide(ctx context.Context, query []float64) (Decision, error) {
	positions, err := e.index.Query(ctx, query, e.k)
	if err != nil {
		return Decision{}, fmt.Errorf("retrieve neighbors: %w", err)
	}
	if len(positions) != e.k {
		return Decision{}, fmt.Errorf("%w: %d positions for k=%d", ErrNeighborSet, len(positions), e.k)
	}

	neighborLabels := make([]int, len(positions))
	for i, pos := range positions {
		if pos < 0 || pos >= len(e.labels) {
			return Decision{}, fmt.Errorf("%w: position %d", ErrNeighborSet, pos)
		}
		neighborLabels[i] = e.labels[pos]
	}

	if label, ok := e.agreed(neighborLabels); ok {
		return Decision{Label: label, Path: PathLazy, Neighbors: positions}, nil
	}

	start := e.now()
	rows, err := e.transform.TrainingRows(positions)
	if err != nil {
		return Decision{}, fmt.Errorf("build local training set: %w", err)
	}
	model, err := e.clf.Train(ctx, neighborLabels, rows)
	if err != nil {
		return Decision{}, err
	}
	trainTime := e.now().Sub(start)
	if in, ok := model.(classifier.Inspector); ok {
		logging.FromContext(ctx).Debugf("local model: %d classes, %d support vectors of %d neighbors",
			len(in.Classes()), in.SupportVectors(), len(positions))
	}

	start = e.now()
	row, err := e.transform.QueryRow(query, positions)
	if err != nil {
		return Decision{}, fmt.Errorf("build query representation: %w", err)
	}
	label, err := model.Predict(ctx, row)
	if err != nil {
		return Decision{}, err
	}
	predictTime := e.now().Sub(start)

	return Decision{
		Label:       label,
		Path:        PathEager,
		Neighbors:   positions,
		TrainTime:   trainTime,
		PredictTime: predictTime,
	}, nil
}

// agreed returns the label carried by at least quorum neighbors.
func (e *Engine) agreed(labels []int) (int, bool) {
	counts := make(map[int]int, len(labels))
	for _, l := range labels {
		counts[l]++
		if counts[l] >= e.quorum {
			return l, true
		}
	}
	return 0, false
}
