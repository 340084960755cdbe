package svm

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type kernelFn func(x, y []float64) float64

func (p Params) kernelFn(gamma float64) kernelFn {
	switch p.Kernel {
	case KernelPoly:
		return func(x, y []float64) float64 {
			return math.Pow(gamma*floats.Dot(x, y)+p.Coef0, float64(p.Degree))
		}
	case KernelRBF:
		return func(x, y []float64) float64 {
			d := floats.Distance(x, y, 2)
			return math.Exp(-gamma * d * d)
		}
	case KernelSigmoid:
		return func(x, y []float64) float64 {
			return math.Tanh(gamma*floats.Dot(x, y) + p.Coef0)
		}
	default:
		return func(x, y []float64) float64 {
			return floats.Dot(x, y)
		}
	}
}

// gram serves kernel rows over the training samples, computing each row on
// first use.
type gram struct {
	fn   kernelFn
	rows [][]float64
	data [][]float64
	diag []float64
}

func newGram(fn kernelFn, data [][]float64) *gram {
	g := &gram{
		fn:   fn,
		rows: make([][]float64, len(data)),
		data: data,
		diag: make([]float64, len(data)),
	}
	for i := range data {
		g.diag[i] = fn(data[i], data[i])
	}
	return g
}

func (g *gram) row(i int) []float64 {
	if g.rows[i] == nil {
		r := make([]float64, len(g.data))
		for j := range g.data {
			r[j] = g.fn(g.data[i], g.data[j])
		}
		g.rows[i] = r
	}
	return g.rows[i]
}
