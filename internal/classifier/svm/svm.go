// Package svm is a C-support vector classifier trained by sequential minimal
// optimization, with one-vs-one voting for more than two classes.
package svm

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sod/clamp/internal/classifier"
)

var (
	_ classifier.Classifier = (*SVM)(nil)
	_ classifier.Model      = (*Model)(nil)
)

var ErrNoFeatures = errors.New("training rows have no features")

func New(params Params) (*SVM, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &SVM{params: params}, nil
}

// NewFromString parses params in the "t:0,c:1" form.
func NewFromString(s string) (*SVM, error) {
	params, err := ParseParams(s)
	if err != nil {
		return nil, err
	}
	return New(params)
}

type SVM struct {
	params Params
}

func (s *SVM) Params() Params {
	return s.params
}

// pairModel separates classes[a] (+1) from classes[b] (-1).
type pairModel struct {
	a, b int
	sv   []int
	coef []float64
	rho  float64
}

type Model struct {
	classes []int
	dim     int
	kernel  kernelFn
	vectors [][]float64
	pairs   []pairModel
}

// Train fits a model on rows. Classes are ordered by first appearance; a
// single class gives a model that always predicts it.
func (s *SVM) Train(ctx context.Context, labels []int, rows [][]float64) (classifier.Model, error) {
	dim, err := classifier.ValidateTraining(labels, rows)
	if err != nil {
		return nil, &classifier.TrainError{Samples: len(rows), Err: err}
	}
	if dim == 0 {
		return nil, &classifier.TrainError{Samples: len(rows), Err: ErrNoFeatures}
	}

	var classes []int
	members := map[int][]int{}
	for i, label := range labels {
		if _, ok := members[label]; !ok {
			classes = append(classes, label)
		}
		members[label] = append(members[label], i)
	}

	gamma := s.params.Gamma
	if gamma == 0 {
		gamma = 1 / float64(dim)
	}
	m := &Model{
		classes: classes,
		dim:     dim,
		kernel:  s.params.kernelFn(gamma),
		vectors: rows,
	}
	if len(classes) == 1 {
		return m, nil
	}

	g := newGram(m.kernel, rows)
	for a := 0; a < len(classes); a++ {
		for b := a + 1; b < len(classes); b++ {
			pos, neg := members[classes[a]], members[classes[b]]
			problem := &binaryProblem{
				gram: g,
				idx:  make([]int, 0, len(pos)+len(neg)),
				y:    make([]float64, 0, len(pos)+len(neg)),
				c:    s.params.C,
				eps:  s.params.Eps,
			}
			for _, i := range pos {
				problem.idx = append(problem.idx, i)
				problem.y = append(problem.y, 1)
			}
			for _, i := range neg {
				problem.idx = append(problem.idx, i)
				problem.y = append(problem.y, -1)
			}

			sol, err := problem.solve(ctx)
			if err != nil {
				return nil, &classifier.TrainError{
					Samples: len(rows),
					Err:     fmt.Errorf("classes %d vs %d: %w", classes[a], classes[b], err),
				}
			}
			pm := pairModel{a: a, b: b, rho: sol.rho}
			for t, c := range sol.coef {
				if c != 0 {
					pm.sv = append(pm.sv, problem.idx[t])
					pm.coef = append(pm.coef, c)
				}
			}
			m.pairs = append(m.pairs, pm)
		}
	}
	return m, nil
}

var _ classifier.Inspector = (*Model)(nil)

// Classes lists the labels in order of first appearance in training.
func (m *Model) Classes() []int {
	return m.classes
}

// SupportVectors counts the distinct training rows the model keeps.
func (m *Model) SupportVectors() int {
	seen := map[int]struct{}{}
	for _, p := range m.pairs {
		for _, i := range p.sv {
			seen[i] = struct{}{}
		}
	}
	return len(seen)
}

// Predict returns the class with the most pairwise votes; ties go to the
// class that appeared first in training.
func (m *Model) Predict(ctx context.Context, row []float64) (int, error) {
	if len(row) != m.dim {
		return 0, &classifier.PredictError{
			Err: fmt.Errorf("%w: %d != %d", classifier.ErrDimMismatch, len(row), m.dim),
		}
	}
	if len(m.classes) == 1 {
		return m.classes[0], nil
	}
	if err := ctx.Err(); err != nil {
		return 0, &classifier.PredictError{Err: err}
	}

	kv := make(map[int]float64)
	votes := make([]int, len(m.classes))
	for _, p := range m.pairs {
		if m.decision(p, row, kv) > 0 {
			votes[p.a]++
		} else {
			votes[p.b]++
		}
	}

	best := 0
	for c := 1; c < len(votes); c++ {
		if votes[c] > votes[best] {
			best = c
		}
	}
	return m.classes[best], nil
}

// decision is the raw value of one pair, positive for its first class.
// Kernel values are cached in kv by training row across pairs.
func (m *Model) decision(p pairModel, row []float64, kv map[int]float64) float64 {
	dec := -p.rho
	for t, i := range p.sv {
		k, ok := kv[i]
		if !ok {
			k = m.kernel(m.vectors[i], row)
			kv[i] = k
		}
		dec += p.coef[t] * k
	}
	return dec
}
