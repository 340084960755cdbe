package svm

import (
	"context"
	"fmt"
	"math"
)

const tau = 1e-12

// binaryProblem is one two-class C-SVC subproblem over sample indexes idx of
// the shared gram matrix; y holds +1 or -1 per entry of idx.
type binaryProblem struct {
	gram *gram
	idx  []int
	y    []float64
	c    float64
	eps  float64
}

type binarySolution struct {
	// coef[t] is alpha[t]*y[t]; zero entries are not support vectors.
	coef []float64
	rho  float64
	iter int
}

// solve runs SMO with the maximal violating pair working set.
func (p *binaryProblem) solve(ctx context.Context) (binarySolution, error) {
	l := len(p.idx)
	alpha := make([]float64, l)
	grad := make([]float64, l)
	for t := range grad {
		grad[t] = -1
	}
	q := func(t, s int) float64 {
		return p.y[t] * p.y[s] * p.gram.row(p.idx[t])[p.idx[s]]
	}
	qd := func(t int) float64 {
		return p.gram.diag[p.idx[t]]
	}

	maxIter := max(10_000_000, 100*l)
	iter := 0
	for ; iter < maxIter; iter++ {
		if iter%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return binarySolution{}, err
			}
		}
		i, j, ok := p.selectPair(alpha, grad)
		if !ok {
			break
		}

		oldI, oldJ := alpha[i], alpha[j]
		qij := q(i, j)
		if p.y[i] != p.y[j] {
			quad := qd(i) + qd(j) + 2*qij
			if quad <= 0 {
				quad = tau
			}
			delta := (-grad[i] - grad[j]) / quad
			diff := alpha[i] - alpha[j]
			alpha[i] += delta
			alpha[j] += delta
			if diff > 0 {
				if alpha[j] < 0 {
					alpha[j] = 0
					alpha[i] = diff
				}
			} else if alpha[i] < 0 {
				alpha[i] = 0
				alpha[j] = -diff
			}
			if diff > 0 {
				if alpha[i] > p.c {
					alpha[i] = p.c
					alpha[j] = p.c - diff
				}
			} else if alpha[j] > p.c {
				alpha[j] = p.c
				alpha[i] = p.c + diff
			}
		} else {
			quad := qd(i) + qd(j) - 2*qij
			if quad <= 0 {
				quad = tau
			}
			delta := (grad[i] - grad[j]) / quad
			sum := alpha[i] + alpha[j]
			alpha[i] -= delta
			alpha[j] += delta
			if sum > p.c {
				if alpha[i] > p.c {
					alpha[i] = p.c
					alpha[j] = sum - p.c
				}
			} else if alpha[j] < 0 {
				alpha[j] = 0
				alpha[i] = sum
			}
			if sum > p.c {
				if alpha[j] > p.c {
					alpha[j] = p.c
					alpha[i] = sum - p.c
				}
			} else if alpha[i] < 0 {
				alpha[i] = 0
				alpha[j] = sum
			}
		}

		dI, dJ := alpha[i]-oldI, alpha[j]-oldJ
		for t := 0; t < l; t++ {
			grad[t] += q(i, t)*dI + q(j, t)*dJ
		}
	}
	if iter == maxIter {
		return binarySolution{}, fmt.Errorf("smo did not converge in %d iterations", maxIter)
	}

	coef := make([]float64, l)
	for t := range alpha {
		coef[t] = alpha[t] * p.y[t]
	}
	return binarySolution{coef: coef, rho: p.rho(alpha, grad), iter: iter}, nil
}

func (p *binaryProblem) upper(a float64) bool { return a >= p.c }
func (p *binaryProblem) lower(a float64) bool { return a <= 0 }

// selectPair returns the maximal violating pair, or ok=false once the KKT
// violation is below eps.
func (p *binaryProblem) selectPair(alpha, grad []float64) (i, j int, ok bool) {
	gmax, gmax2 := math.Inf(-1), math.Inf(-1)
	i, j = -1, -1
	for t := range alpha {
		if p.y[t] > 0 {
			if !p.upper(alpha[t]) && -grad[t] > gmax {
				gmax, i = -grad[t], t
			}
		} else if !p.lower(alpha[t]) && grad[t] > gmax {
			gmax, i = grad[t], t
		}
	}
	for t := range alpha {
		if p.y[t] > 0 {
			if !p.lower(alpha[t]) && grad[t] > gmax2 {
				gmax2, j = grad[t], t
			}
		} else if !p.upper(alpha[t]) && -grad[t] > gmax2 {
			gmax2, j = -grad[t], t
		}
	}
	if i < 0 || j < 0 || gmax+gmax2 < p.eps {
		return 0, 0, false
	}
	return i, j, true
}

func (p *binaryProblem) rho(alpha, grad []float64) float64 {
	ub, lb := math.Inf(1), math.Inf(-1)
	free, sumFree := 0, 0.0
	for t := range alpha {
		yg := p.y[t] * grad[t]
		switch {
		case p.upper(alpha[t]):
			if p.y[t] < 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		case p.lower(alpha[t]):
			if p.y[t] > 0 {
				ub = math.Min(ub, yg)
			} else {
				lb = math.Max(lb, yg)
			}
		default:
			free++
			sumFree += yg
		}
	}
	if free > 0 {
		return sumFree / float64(free)
	}
	return (ub + lb) / 2
}
