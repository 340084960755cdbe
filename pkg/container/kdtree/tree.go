/*
 * Copyright 2020 Dennis Kuhnert
 * Copyright 2020 Ivanov Nikita
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */
package kdtree

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyTree = errors.New("tree is empty")
	ErrInvalidK  = errors.New("k must be positive")
)

type Point interface {
	Dim(idx int) float64
	Dimensions() int
	Points() []float64
}

type DistanceFn func(vec, vec1 []float64) (float64, error)

// Neighbor is a point found by KNN. Index is its offset in the Build input.
type Neighbor struct {
	Point    Point
	Index    int
	Distance float64
}

func New(distFn DistanceFn) *Tree {
	return &Tree{distFn: distFn}
}

type Tree struct {
	root   *node
	len    int
	distFn DistanceFn
}

// Build replaces the tree contents with a balanced tree over points.
// The input slice is not reordered.
func (t *Tree) Build(points ...Point) {
	items := make([]*node, len(points))
	for i, p := range points {
		items[i] = &node{Key: p, Index: i}
	}
	t.len = len(items)
	t.root = buildTreeRecursive(items, 0)
}

func (t *Tree) Len() int {
	return t.len
}

// KNN returns up to k points closest to p ordered by distance, equal
// distances by Build order. The distance function must be bounded below by
// the per-axis difference.
func (t *Tree) KNN(p Point, k int) ([]Neighbor, error) {
	if t.root == nil {
		return nil, ErrEmptyTree
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if p.Dimensions() != t.root.Key.Dimensions() {
		return nil, fmt.Errorf("query has %d dimensions, tree has %d", p.Dimensions(), t.root.Key.Dimensions())
	}

	s := &search{query: p, k: k, distFn: t.distFn, best: make([]Neighbor, 0, k)}
	if err := s.visit(t.root, 0); err != nil {
		return nil, err
	}
	return s.best, nil
}

type search struct {
	query  Point
	k      int
	distFn DistanceFn
	// best is sorted by (Distance, Index).
	best []Neighbor
}

func (s *search) visit(n *node, dim int) error {
	if n == nil {
		return nil
	}
	distance, err := s.distFn(s.query.Points(), n.Key.Points())
	if err != nil {
		return fmt.Errorf("compute knn distance: %w", err)
	}
	s.offer(Neighbor{Point: n.Key, Index: n.Index, Distance: distance})

	diff := s.query.Dim(dim) - n.Key.Dim(dim)
	near, far := n.Left, n.Right
	if diff >= 0 {
		near, far = n.Right, n.Left
	}
	next := (dim + 1) % s.query.Dimensions()
	if err := s.visit(near, next); err != nil {
		return err
	}
	if math.Abs(diff) <= s.bound() {
		return s.visit(far, next)
	}
	return nil
}

// bound is the distance a point has to beat to enter a full result.
func (s *search) bound() float64 {
	if len(s.best) < s.k {
		return math.Inf(1)
	}
	return s.best[len(s.best)-1].Distance
}

func (s *search) offer(nb Neighbor) {
	i := sort.Search(len(s.best), func(i int) bool {
		b := s.best[i]
		return nb.Distance < b.Distance || (nb.Distance == b.Distance && nb.Index < b.Index)
	})
	if i >= s.k {
		return
	}
	if len(s.best) < s.k {
		s.best = append(s.best, Neighbor{})
	}
	copy(s.best[i+1:], s.best[i:len(s.best)-1])
	s.best[i] = nb
}

func buildTreeRecursive(items []*node, dim int) *node {
	if len(items) == 0 {
		return nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Key.Dim(dim) < items[j].Key.Dim(dim)
	})
	mid := len(items) / 2
	root := items[mid]
	next := (dim + 1) % root.Key.Dimensions()
	root.Left = buildTreeRecursive(items[:mid], next)
	root.Right = buildTreeRecursive(items[mid+1:], next)
	return root
}
