package lsh

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-sod/clamp/internal/util"
	"gonum.org/v1/gonum/floats"
)

// maxHyperplanes is the signature width of the random-hyperplane family;
// its sign bits are packed into a uint32 bucket key.
const maxHyperplanes = 32

// family maps a vector to one bucket per table.
type family interface {
	bucket(table int, vec []float64) uint32
}

// pStable is the Gaussian (2-stable) family for Euclidean distance:
// h(v) = floor((a.v + b) / w).
type pStable struct {
	proj    [][][]float64
	offset  [][]float64
	width   float64
	buckets uint32
}

func newPStable(rnd *rand.Rand, tables, hashes, dim, buckets int, width float64) (*pStable, error) {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return nil, fmt.Errorf("width %v must be a positive number", width)
	}
	f := &pStable{
		proj:    make([][][]float64, tables),
		offset:  make([][]float64, tables),
		width:   width,
		buckets: uint32(buckets),
	}
	for t := 0; t < tables; t++ {
		f.proj[t] = make([][]float64, hashes)
		f.offset[t] = make([]float64, hashes)
		for h := 0; h < hashes; h++ {
			f.proj[t][h] = gaussian(rnd, dim)
			f.offset[t][h] = rnd.Float64() * width
		}
	}
	return f, nil
}

func (f *pStable) bucket(table int, vec []float64) uint32 {
	sig := make([]int64, len(f.proj[table]))
	for h, a := range f.proj[table] {
		sig[h] = int64(math.Floor((floats.Dot(a, vec) + f.offset[table][h]) / f.width))
	}
	return util.HashSignature(sig, f.buckets)
}

// hyperplane is the random-hyperplane family for cosine similarity: one sign
// bit per hyperplane.
type hyperplane struct {
	planes  [][][]float64
	buckets uint32
}

func newHyperplane(rnd *rand.Rand, tables, hashes, dim, buckets int) (*hyperplane, error) {
	if hashes > maxHyperplanes {
		return nil, fmt.Errorf("%d hyperplanes do not fit a %d bit bucket key", hashes, maxHyperplanes)
	}
	f := &hyperplane{
		planes:  make([][][]float64, tables),
		buckets: uint32(buckets),
	}
	for t := 0; t < tables; t++ {
		f.planes[t] = make([][]float64, hashes)
		for h := 0; h < hashes; h++ {
			f.planes[t][h] = gaussian(rnd, dim)
		}
	}
	return f, nil
}

func (f *hyperplane) bucket(table int, vec []float64) uint32 {
	var bits uint32
	for h, a := range f.planes[table] {
		if floats.Dot(a, vec) >= 0 {
			bits |= 1 << uint(h)
		}
	}
	return bits % f.buckets
}

func gaussian(rnd *rand.Rand, dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = rnd.NormFloat64()
	}
	return v
}
