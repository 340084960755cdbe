// Package lsh implements locality-sensitive hashing indexes: a p-stable
// family for Euclidean distance and a random-hyperplane family for cosine
// similarity. Hash tables live in a bbolt file inside the run directory.
package lsh

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/go-sod/clamp/internal/database"
	"github.com/go-sod/clamp/internal/geom"
	"github.com/go-sod/clamp/internal/logging"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/pkg/pqueue"
)

var _ neighbor.Index = (*Index)(nil)

const (
	defaultBuckets = 521

	psdTables = 200
	psdHashes = 1
	psdWidth  = 5

	rhpTables = 5
	rhpHashes = 6
)

// NewPSD returns a p-stable index ranked by Euclidean distance. By default
// it hashes with 200 tables of one Gaussian projection each, width 5.
func NewPSD(dir string, opts ...Option) *Index {
	defaults := []Option{WithTables(psdTables), WithHashes(psdHashes), WithWidth(psdWidth)}
	return newIndex(neighbor.AlgTypePSD, dir, geom.EuclideanDistance, append(defaults, opts...)...)
}

// NewRHP returns a random-hyperplane index ranked by cosine distance. By
// default it hashes with 5 tables of 6 hyperplanes each.
func NewRHP(dir string, opts ...Option) *Index {
	defaults := []Option{WithTables(rhpTables), WithHashes(rhpHashes)}
	return newIndex(neighbor.AlgTypeRHP, dir, geom.CosineDistance, append(defaults, opts...)...)
}

func newIndex(alg neighbor.AlgType, dir string, distFn geom.DistanceFn, opts ...Option) *Index {
	idx := &Index{
		alg:     alg,
		dir:     dir,
		distFn:  distFn,
		buckets: defaultBuckets,
		width:   psdWidth,
		seed:    1,
		storeCfg: database.Config{
			FileName: "lsh.index",
			Timeout:  time.Second,
			NoSync:   true,
		},
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

type Index struct {
	alg      neighbor.AlgType
	dir      string
	distFn   geom.DistanceFn
	tables   int
	hashes   int
	buckets  int
	width    float64
	seed     int64
	storeCfg database.Config

	family  family
	store   *store
	vectors [][]float64
	dim     int
}

func (idx *Index) buildErr(err error) error {
	return &neighbor.IndexBuildError{Backend: idx.alg, Err: err}
}

func (idx *Index) queryErr(k int, err error) error {
	return &neighbor.QueryError{Backend: idx.alg, K: k, Err: err}
}

func (idx *Index) validate() error {
	switch {
	case idx.tables < 1:
		return fmt.Errorf("%w: tables %d", neighbor.ErrInvalidParam, idx.tables)
	case idx.hashes < 1:
		return fmt.Errorf("%w: hashes %d", neighbor.ErrInvalidParam, idx.hashes)
	case idx.buckets < 1:
		return fmt.Errorf("%w: buckets %d", neighbor.ErrInvalidParam, idx.buckets)
	case idx.dir == "":
		return fmt.Errorf("%w: no directory for the index file", neighbor.ErrInvalidParam)
	}
	return nil
}

// Build hashes every vector into each table and persists the tables. A
// repeated Build replaces the previous tables.
func (idx *Index) Build(ctx context.Context, vectors [][]float64) error {
	logger := logging.FromContext(ctx)

	dim, err := neighbor.ValidateVectors(vectors)
	if err != nil {
		return idx.buildErr(err)
	}
	if err := idx.validate(); err != nil {
		return idx.buildErr(err)
	}

	rnd := rand.New(rand.NewSource(idx.seed))
	var fam family
	switch idx.alg {
	case neighbor.AlgTypePSD:
		fam, err = newPStable(rnd, idx.tables, idx.hashes, dim, idx.buckets, idx.width)
	case neighbor.AlgTypeRHP:
		fam, err = newHyperplane(rnd, idx.tables, idx.hashes, dim, idx.buckets)
	default:
		err = fmt.Errorf("unsupported family %s", idx.alg)
	}
	if err != nil {
		return idx.buildErr(fmt.Errorf("%w: %v", neighbor.ErrInvalidParam, err))
	}

	tables := make([]map[uint32][]uint32, idx.tables)
	for t := range tables {
		tables[t] = make(map[uint32][]uint32)
	}
	for pos := range vectors {
		if pos%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return idx.buildErr(err)
			}
		}
		for t := range tables {
			b := fam.bucket(t, vectors[pos])
			tables[t][b] = append(tables[t][b], uint32(pos))
		}
	}

	if err := idx.store.close(ctx); err != nil {
		return idx.buildErr(err)
	}
	db, err := database.Open(ctx, idx.storeCfg.PathIn(idx.dir), idx.storeCfg)
	if err != nil {
		return idx.buildErr(err)
	}
	st := &store{db: db}
	if err := st.write(ctx, tables); err != nil {
		return errors.Join(idx.buildErr(fmt.Errorf("persist tables: %w", err)), st.close(ctx))
	}

	idx.family = fam
	idx.store = st
	idx.vectors = vectors
	idx.dim = dim

	used := 0
	for t := range tables {
		used += len(tables[t])
	}
	logger.Debugf("%s index: %d vectors, %d tables, %d occupied buckets", idx.alg, len(vectors), idx.tables, used)
	return nil
}

type ranked struct {
	pos  int
	dist float64
}

// Query returns exactly k positions closest first. Candidates come from the
// query's buckets; when they number fewer than k the remainder is the
// closest of the other vectors. Equal distances keep the lower position first.
func (idx *Index) Query(ctx context.Context, vec []float64, k int) ([]int, error) {
	if err := neighbor.ValidateQuery(vec, k, len(idx.vectors), idx.dim); err != nil {
		return nil, idx.queryErr(k, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, idx.queryErr(k, err)
	}

	buckets := make([]uint32, idx.tables)
	for t := range buckets {
		buckets[t] = idx.family.bucket(t, vec)
	}
	isCandidate := make([]bool, len(idx.vectors))
	if err := idx.store.read(buckets, func(pos int) {
		if pos < len(isCandidate) {
			isCandidate[pos] = true
		}
	}); err != nil {
		return nil, idx.queryErr(k, fmt.Errorf("read tables: %w", err))
	}

	candidates := 0
	for _, ok := range isCandidate {
		if ok {
			candidates++
		}
	}

	found, err := idx.nearest(vec, min(k, candidates), func(pos int) bool { return isCandidate[pos] })
	if err != nil {
		return nil, idx.queryErr(k, err)
	}
	if candidates < k {
		fill, err := idx.nearest(vec, k-candidates, func(pos int) bool { return !isCandidate[pos] })
		if err != nil {
			return nil, idx.queryErr(k, err)
		}
		found = append(found, fill...)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].pos < found[j].pos
	})
	positions := make([]int, len(found))
	for i := range found {
		positions[i] = found[i].pos
	}
	return positions, nil
}

// nearest ranks the positions accepted by keep in ascending position order
// and returns the n closest.
func (idx *Index) nearest(vec []float64, n int, keep func(pos int) bool) ([]ranked, error) {
	if n == 0 {
		return nil, nil
	}
	queue := pqueue.New(pqueue.WithCap[ranked](uint(n)))
	for pos := range idx.vectors {
		if !keep(pos) {
			continue
		}
		dist, err := idx.distFn(vec, idx.vectors[pos])
		if err != nil {
			return nil, fmt.Errorf("distance to %d: %w", pos, err)
		}
		queue.Push(ranked{pos: pos, dist: dist}, dist)
	}
	return queue.PopAll(), nil
}

func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Path is the location of the index file.
func (idx *Index) Path() string {
	return idx.storeCfg.PathIn(idx.dir)
}

func (idx *Index) Close() error {
	idx.vectors = nil
	idx.family = nil
	err := idx.store.close(context.Background())
	idx.store = nil
	return err
}
