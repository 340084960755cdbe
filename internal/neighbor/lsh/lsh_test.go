package lsh

import (
	"context"
	"encoding/binary"
	"math/rand"
	"os"
	"testing"

	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/internal/neighbor/brute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"
)

func randomVectors(seed int64, n, dim int) [][]float64 {
	rnd := rand.New(rand.NewSource(seed))
	vectors := make([][]float64, n)
	for i := range vectors {
		vectors[i] = make([]float64, dim)
		for j := range vectors[i] {
			vectors[i][j] = rnd.Float64()*2 - 1
		}
	}
	return vectors
}

func TestIndex_QueryReturnsExactlyK(t *testing.T) {
	t.Parallel()
	train := randomVectors(1, 300, 8)
	queries := randomVectors(2, 20, 8)

	tests := []struct {
		name string
		new  func(dir string) *Index
	}{
		{name: "psd", new: func(dir string) *Index { return NewPSD(dir) }},
		{name: "rhp", new: func(dir string) *Index { return NewRHP(dir) }},
		{name: "psd_sparse", new: func(dir string) *Index {
			return NewPSD(dir, WithTables(1), WithHashes(8), WithWidth(0.01))
		}},
		{name: "rhp_wide", new: func(dir string) *Index {
			return NewRHP(dir, WithTables(1), WithHashes(32), WithBuckets(1<<20))
		}},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			idx := test.new(t.TempDir())
			defer idx.Close()
			require.NoError(t, idx.Build(context.Background(), train))
			for _, k := range []int{1, 5, 60} {
				for _, q := range queries {
					got, err := idx.Query(context.Background(), q, k)
					require.NoError(t, err)
					assert.Len(t, got, k)
					seen := map[int]struct{}{}
					for _, pos := range got {
						assert.True(t, pos >= 0 && pos < len(train))
						seen[pos] = struct{}{}
					}
					assert.Len(t, seen, k)
				}
			}
		})
	}
}

func TestIndex_SingleBucketIsExact(t *testing.T) {
	train := randomVectors(3, 120, 4)
	ctx := context.Background()

	idx := NewPSD(t.TempDir(), WithBuckets(1))
	defer idx.Close()
	require.NoError(t, idx.Build(ctx, train))
	scan := brute.New()
	require.NoError(t, scan.Build(ctx, train))

	for _, q := range randomVectors(4, 10, 4) {
		got, err := idx.Query(ctx, q, 9)
		require.NoError(t, err)
		expected, err := scan.Query(ctx, q, 9)
		require.NoError(t, err)
		assert.Equal(t, expected, got)
	}
}

func TestIndex_OneDimension(t *testing.T) {
	ctx := context.Background()
	idx := NewPSD(t.TempDir())
	defer idx.Close()
	require.NoError(t, idx.Build(ctx, [][]float64{{0.0}, {1.0}, {5.0}, {6.0}}))

	got, err := idx.Query(ctx, []float64{5.5}, 4)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3}, got)

	got, err = idx.Query(ctx, []float64{5.5}, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestIndex_Deterministic(t *testing.T) {
	train := randomVectors(5, 200, 6)
	queries := randomVectors(6, 15, 6)
	ctx := context.Background()

	run := func() [][]int {
		idx := NewRHP(t.TempDir(), WithSeed(99))
		defer idx.Close()
		require.NoError(t, idx.Build(ctx, train))
		var out [][]int
		for _, q := range queries {
			got, err := idx.Query(ctx, q, 7)
			require.NoError(t, err)
			out = append(out, got)
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestIndex_PersistsTables(t *testing.T) {
	ctx := context.Background()
	idx := NewPSD(t.TempDir())
	require.NoError(t, idx.Build(ctx, randomVectors(7, 10, 3)))
	_, err := os.Stat(idx.Path())
	require.NoError(t, err)

	require.NoError(t, idx.Build(ctx, randomVectors(8, 12, 3)))
	assert.Equal(t, 12, idx.Len())
	require.NoError(t, idx.Close())
	assert.Equal(t, 0, idx.Len())
	assert.NoError(t, idx.Close())
}

func TestFamilyDefaults(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		idx      *Index
		tables   int
		hashes   int
		width    float64
		expected neighbor.AlgType
	}{
		{name: "psd", idx: NewPSD("dir"), tables: 200, hashes: 1, width: 5, expected: neighbor.AlgTypePSD},
		{name: "rhp", idx: NewRHP("dir"), tables: 5, hashes: 6, width: 5, expected: neighbor.AlgTypeRHP},
		{name: "psd_zero_config", idx: NewPSD("dir", OptionsFrom(Config{Buckets: 521, Seed: 1})...), tables: 200, hashes: 1, width: 5, expected: neighbor.AlgTypePSD},
		{name: "rhp_config", idx: NewRHP("dir", OptionsFrom(Config{Tables: 3, Hashes: 10, Buckets: 97})...), tables: 3, hashes: 10, width: 5, expected: neighbor.AlgTypeRHP},
		{name: "psd_width", idx: NewPSD("dir", WithWidth(0.5)), tables: 200, hashes: 1, width: 0.5, expected: neighbor.AlgTypePSD},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.expected, test.idx.alg)
			assert.Equal(t, test.tables, test.idx.tables)
			assert.Equal(t, test.hashes, test.idx.hashes)
			assert.Equal(t, test.width, test.idx.width)
		})
	}
}

func TestIndex_RebuildDropsPreviousTables(t *testing.T) {
	ctx := context.Background()
	first := randomVectors(11, 200, 4)
	second := randomVectors(12, 50, 4)
	queries := randomVectors(13, 100, 4)

	rebuilt := NewPSD(t.TempDir(), WithTables(1), WithHashes(1))
	defer rebuilt.Close()
	require.NoError(t, rebuilt.Build(ctx, first))
	require.NoError(t, rebuilt.Build(ctx, second))

	stored := 0
	err := rebuilt.store.db.DB.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			return b.ForEach(func(_, v []byte) error {
				for i := 0; i+4 <= len(v); i += 4 {
					pos := binary.BigEndian.Uint32(v[i:])
					assert.Less(t, int(pos), len(second), "table %s", name)
					stored++
				}
				return nil
			})
		})
	})
	require.NoError(t, err)
	assert.Equal(t, len(second), stored)

	fresh := NewPSD(t.TempDir(), WithTables(1), WithHashes(1))
	defer fresh.Close()
	require.NoError(t, fresh.Build(ctx, second))
	for _, q := range queries {
		got, err := rebuilt.Query(ctx, q, 3)
		require.NoError(t, err)
		expected, err := fresh.Query(ctx, q, 3)
		require.NoError(t, err)
		assert.Equal(t, expected, got, "got: %v, expected: %v", got, expected)
	}
}

func TestIndex_BuildErrors(t *testing.T) {
	t.Parallel()
	train := randomVectors(9, 10, 3)
	tests := []struct {
		name string
		idx  func(dir string) *Index
	}{
		{name: "zero_tables", idx: func(dir string) *Index { return NewPSD(dir, WithTables(0)) }},
		{name: "zero_hashes", idx: func(dir string) *Index { return NewRHP(dir, WithHashes(0)) }},
		{name: "zero_buckets", idx: func(dir string) *Index { return NewPSD(dir, WithBuckets(0)) }},
		{name: "zero_width", idx: func(dir string) *Index { return NewPSD(dir, WithWidth(0)) }},
		{name: "wide_rhp", idx: func(dir string) *Index { return NewRHP(dir, WithHashes(33)) }},
		{name: "no_dir", idx: func(string) *Index { return NewPSD("") }},
	}
	for _, test := range tests {
		err := test.idx(t.TempDir()).Build(context.Background(), train)
		var buildErr *neighbor.IndexBuildError
		assert.ErrorAs(t, err, &buildErr, test.name)
		assert.ErrorIs(t, err, neighbor.ErrInvalidParam, test.name)
	}

	var buildErr *neighbor.IndexBuildError
	assert.ErrorAs(t, NewPSD(t.TempDir()).Build(context.Background(), nil), &buildErr)
}

func TestIndex_QueryErrors(t *testing.T) {
	ctx := context.Background()
	idx := NewPSD(t.TempDir())
	defer idx.Close()

	_, err := idx.Query(ctx, []float64{1}, 1)
	assert.ErrorIs(t, err, neighbor.ErrNotBuilt)

	require.NoError(t, idx.Build(ctx, [][]float64{{1, 1}, {2, 2}, {3, 3}}))
	_, err = idx.Query(ctx, []float64{1, 1}, 4)
	var queryErr *neighbor.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, 4, queryErr.K)
	assert.ErrorIs(t, err, neighbor.ErrKTooLarge)

	_, err = idx.Query(ctx, []float64{1}, 1)
	assert.ErrorIs(t, err, neighbor.ErrDimNotEqual)
}
