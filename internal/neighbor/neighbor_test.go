package neighbor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAlgType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		expected AlgType
		err      bool
	}{
		{in: "psd", expected: AlgTypePSD},
		{in: "RHP", expected: AlgTypeRHP},
		{in: " brute ", expected: AlgTypeBrute},
		{in: "kd", expected: AlgTypeKD},
		{in: "hnsw", err: true},
	}
	for _, test := range tests {
		got, err := ParseAlgType(test.in)
		if test.err {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, test.expected, got)
	}
}

func TestValidateVectors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		vectors     [][]float64
		expectedDim int
		expectedErr error
	}{
		{name: "positive", vectors: [][]float64{{1, 2}, {3, 4}}, expectedDim: 2},
		{name: "empty", vectors: nil, expectedErr: ErrEmptyIndex},
		{name: "zero_dim", vectors: [][]float64{{}}, expectedErr: ErrInvalidParam},
		{name: "ragged", vectors: [][]float64{{1}, {1, 2}}, expectedErr: ErrDimNotEqual},
	}
	for _, test := range tests {
		dim, err := ValidateVectors(test.vectors)
		if test.expectedErr != nil {
			assert.ErrorIs(t, err, test.expectedErr, test.name)
			continue
		}
		require.NoError(t, err, test.name)
		assert.Equal(t, test.expectedDim, dim, test.name)
	}
}

func TestValidateQuery(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		vec         []float64
		k           int
		population  int
		expectedErr error
	}{
		{name: "positive", vec: []float64{1}, k: 3, population: 3},
		{name: "not_built", vec: []float64{1}, k: 1, population: 0, expectedErr: ErrNotBuilt},
		{name: "zero_k", vec: []float64{1}, k: 0, population: 3, expectedErr: ErrInvalidK},
		{name: "k_too_large", vec: []float64{1}, k: 4, population: 3, expectedErr: ErrKTooLarge},
		{name: "dim", vec: []float64{1, 2}, k: 1, population: 3, expectedErr: ErrDimNotEqual},
	}
	for _, test := range tests {
		err := ValidateQuery(test.vec, test.k, test.population, 1)
		if test.expectedErr == nil {
			assert.NoError(t, err, test.name)
			continue
		}
		assert.ErrorIs(t, err, test.expectedErr, test.name)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	buildErr := error(&IndexBuildError{Backend: AlgTypePSD, Err: ErrInvalidParam})
	var be *IndexBuildError
	assert.True(t, errors.As(buildErr, &be))
	assert.ErrorIs(t, buildErr, ErrInvalidParam)
	assert.Contains(t, buildErr.Error(), "psd")

	queryErr := error(&QueryError{Backend: AlgTypeKD, K: 9, Err: ErrKTooLarge})
	var qe *QueryError
	assert.True(t, errors.As(queryErr, &qe))
	assert.Equal(t, 9, qe.K)
	assert.ErrorIs(t, queryErr, ErrKTooLarge)
}
