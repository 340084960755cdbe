package setup

import (
	"context"
	"testing"

	"github.com/go-sod/clamp/internal/classifier"
	"github.com/go-sod/clamp/internal/classifier/svm"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/internal/neighbor/brute"
	"github.com/go-sod/clamp/internal/neighbor/kd"
	"github.com/go-sod/clamp/internal/neighbor/lsh"
	"github.com/go-sod/clamp/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	index      neighbor.Config
	lsh        lsh.Config
	transform  transform.Config
	classifier classifier.Config
	textfile   string
}

func (c *testConfig) IndexConfig() *neighbor.Config { return &c.index }
func (c *testConfig) LSHConfig() *lsh.Config { return &c.lsh }
func (c *testConfig) TransformConfig() *transform.Config { return &c.transform }
func (c *testConfig) ClassifierConfig() *classifier.Config { return &c.classifier }
func (c *testConfig) MetricsTextfile() string { return c.textfile }

func TestProvideIndexFor(t *testing.T) {
	t.Parallel()
	lshCfg := &lsh.Config{Tables: 2, Hashes: 4, Buckets: 31, Width: 2, Seed: 3}
	tests := []struct {
		alg      neighbor.AlgType
		expected interface{}
	}{
		{alg: neighbor.AlgTypeBrute, expected: &brute.Index{}},
		{alg: neighbor.AlgTypeKD, expected: &kd.Index{}},
		{alg: neighbor.AlgTypePSD, expected: &lsh.Index{}},
		{alg: "RHP", expected: &lsh.Index{}},
	}
	for _, test := range tests {
		provideFn, err := ProvideIndexFor(&neighbor.Config{Type: test.alg}, lshCfg)
		require.NoError(t, err)
		idx, err := provideFn(t.TempDir())
		require.NoError(t, err)
		assert.IsType(t, test.expected, idx)
		require.NoError(t, idx.Close())
	}

	_, err := ProvideIndexFor(&neighbor.Config{Type: "annoy"}, lshCfg)
	assert.Error(t, err)
}

func TestProvideIndexFor_UsesLSHConfig(t *testing.T) {
	lshCfg := &lsh.Config{Tables: -1, Hashes: 4, Buckets: 31, Width: 2}
	provideFn, err := ProvideIndexFor(&neighbor.Config{Type: neighbor.AlgTypePSD}, lshCfg)
	require.NoError(t, err)
	idx, err := provideFn(t.TempDir())
	require.NoError(t, err)

	err = idx.Build(context.Background(), [][]float64{{1}, {2}})
	var buildErr *neighbor.IndexBuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestProvideIndexFor_Distance(t *testing.T) {
	t.Parallel()
	train := [][]float64{{3, 0}, {2, 2}}
	lshCfg := &lsh.Config{Tables: 2, Hashes: 4, Buckets: 31, Width: 2, Seed: 3}
	tests := []struct {
		name     string
		cfg      neighbor.Config
		expected []int
		err      bool
	}{
		{name: "brute_euclidean", cfg: neighbor.Config{Type: neighbor.AlgTypeBrute, Distance: "euclidean"}, expected: []int{1}},
		{name: "brute_manhattan", cfg: neighbor.Config{Type: neighbor.AlgTypeBrute, Distance: "manhattan"}, expected: []int{0}},
		{name: "brute_chebyshev", cfg: neighbor.Config{Type: neighbor.AlgTypeBrute, Distance: "chebyshev"}, expected: []int{1}},
		{name: "kd_manhattan", cfg: neighbor.Config{Type: neighbor.AlgTypeKD, Distance: "manhattan"}, expected: []int{0}},
		{name: "psd_euclidean", cfg: neighbor.Config{Type: neighbor.AlgTypePSD, Distance: "euclidean"}},
		{name: "psd_manhattan", cfg: neighbor.Config{Type: neighbor.AlgTypePSD, Distance: "manhattan"}, err: true},
		{name: "unknown", cfg: neighbor.Config{Type: neighbor.AlgTypeBrute, Distance: "hamming"}, err: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			cfg := test.cfg
			provideFn, err := ProvideIndexFor(&cfg, lshCfg)
			if test.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			idx, err := provideFn(t.TempDir())
			require.NoError(t, err)
			defer idx.Close()

			ctx := context.Background()
			require.NoError(t, idx.Build(ctx, train))
			got, err := idx.Query(ctx, []float64{0, 0}, 1)
			require.NoError(t, err)
			if test.expected != nil {
				assert.Equal(t, test.expected, got, "got: %v, expected: %v", got, test.expected)
			}
		})
	}
}

func TestProvideTransformFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cfg      transform.Config
		expected interface{}
		err      bool
	}{
		{cfg: transform.Config{Mode: transform.ModeRaw}, expected: &transform.Identity{}},
		{cfg: transform.Config{Mode: transform.ModeDTW, Window: 3}, expected: &transform.DistanceKernel{}},
		{cfg: transform.Config{Mode: transform.ModeDTW, Window: -1}, err: true},
		{cfg: transform.Config{Mode: "shapelet"}, err: true},
	}
	for _, test := range tests {
		cfg := test.cfg
		provideFn, err := ProvideTransformFor(&cfg)
		if test.err {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		tf, err := provideFn()
		require.NoError(t, err)
		assert.IsType(t, test.expected, tf)
	}
}

func TestProvideClassifierFor(t *testing.T) {
	provideFn, err := ProvideClassifierFor(&classifier.Config{Params: "t:2,c:4"})
	require.NoError(t, err)
	clf, err := provideFn()
	require.NoError(t, err)
	require.IsType(t, &svm.SVM{}, clf)
	assert.Equal(t, svm.KernelRBF, clf.(*svm.SVM).Params().Kernel)
	assert.Equal(t, 4.0, clf.(*svm.SVM).Params().C)

	_, err = ProvideClassifierFor(&classifier.Config{Params: "t:0,z:1"})
	assert.ErrorIs(t, err, svm.ErrUnknownParam)
}

func TestSetup(t *testing.T) {
	cfg := &testConfig{
		index:      neighbor.Config{Type: neighbor.AlgTypeBrute},
		transform:  transform.Config{Mode: transform.ModeRaw},
		classifier: classifier.Config{Params: "t:0"},
	}
	env, err := Setup(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, env.ProvideIndex())
	assert.NotNil(t, env.ProvideTransform())
	assert.NotNil(t, env.ProvideClassifier())
	assert.Nil(t, env.Exporter())

	cfg.textfile = "clamp.prom"
	env, err = Setup(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, env.Exporter())

	cfg.classifier.Params = "t:7"
	_, err = Setup(context.Background(), cfg)
	assert.Error(t, err)
}

func TestSetup_PartialConfig(t *testing.T) {
	env, err := Setup(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Nil(t, env.ProvideIndex())
}
