package dataset

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name             string
		input            string
		opts             Options
		expectedLabels   []int
		expectedFeatures [][]float64
	}{
		{
			name:             "comma_labeled",
			input:            "1,0\n1,1\n0,10.5\n",
			opts:             Options{Delimiter: DelimiterComma, Labeled: true},
			expectedLabels:   []int{1, 1, 0},
			expectedFeatures: [][]float64{{0}, {1}, {10.5}},
		},
		{
			name:             "tab_labeled_integral_float_label",
			input:            "1.0\t0.5\t2\n-1\t3\t4\n",
			opts:             Options{Delimiter: DelimiterTab, Labeled: true},
			expectedLabels:   []int{1, -1},
			expectedFeatures: [][]float64{{0.5, 2}, {3, 4}},
		},
		{
			name:             "unlabeled",
			input:            "0.5,1\n2,3\n",
			opts:             Options{Delimiter: DelimiterComma},
			expectedFeatures: [][]float64{{0.5, 1}, {2, 3}},
		},
		{
			name:             "blank_lines_and_spaces",
			input:            "\n 2 , 1e1 \n\n3,-4\n",
			opts:             Options{Labeled: true},
			expectedLabels:   []int{2, 3},
			expectedFeatures: [][]float64{{10}, {-4}},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			set, err := Load(strings.NewReader(test.input), test.name, test.opts)
			require.NoError(t, err)
			assert.Equal(t, test.expectedLabels, set.Labels)
			assert.Equal(t, test.expectedFeatures, set.Features)
			assert.Equal(t, len(test.expectedFeatures), set.Len())
			assert.Equal(t, test.opts.Labeled, set.Labeled())
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		input         string
		opts          Options
		expectedRow   int
		expectedField int
		expectedErr   error
	}{
		{name: "empty", input: "", opts: Options{Labeled: true}, expectedField: -1, expectedErr: ErrEmptyInput},
		{name: "only_blank", input: "\n\n", opts: Options{Labeled: true}, expectedField: -1, expectedErr: ErrEmptyInput},
		{name: "non_numeric_feature", input: "1,0\n1,abc\n", opts: Options{Labeled: true}, expectedRow: 2, expectedField: 1},
		{name: "non_numeric_label", input: "x,0\n", opts: Options{Labeled: true}, expectedRow: 1, expectedField: 0},
		{name: "fractional_label", input: "1.5,0\n", opts: Options{Labeled: true}, expectedRow: 1, expectedField: 0, expectedErr: ErrLabelNotIntegral},
		{name: "no_features", input: "1\n", opts: Options{Labeled: true}, expectedRow: 1, expectedField: -1, expectedErr: ErrNoFeatures},
		{name: "ragged", input: "1,0,1\n1,0\n", opts: Options{Labeled: true}, expectedRow: 2, expectedField: -1, expectedErr: ErrDimNotEqual},
		{name: "nan_feature", input: "1,NaN\n", opts: Options{Labeled: true}, expectedRow: 1, expectedField: 1, expectedErr: ErrNotFinite},
		{name: "inf_feature", input: "1,0\n1,Inf\n", opts: Options{Labeled: true}, expectedRow: 2, expectedField: 1, expectedErr: ErrNotFinite},
		{name: "negative_inf_feature", input: "1,-inf,2\n", opts: Options{Labeled: true}, expectedRow: 1, expectedField: 1, expectedErr: ErrNotFinite},
		{name: "unlabeled_inf", input: "0.5,+Inf\n", opts: Options{}, expectedRow: 1, expectedField: 1, expectedErr: ErrNotFinite},
		{name: "nan_label", input: "nan,0\n", opts: Options{Labeled: true}, expectedRow: 1, expectedField: 0, expectedErr: ErrNotFinite},
		{name: "wrong_delimiter", input: "1\t0\n", opts: Options{Labeled: true}, expectedRow: 1, expectedField: 0},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			set, err := Load(strings.NewReader(test.input), "input", test.opts)
			require.Error(t, err)
			assert.Nil(t, set)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
			assert.Equal(t, test.expectedRow, parseErr.Row)
			assert.Equal(t, test.expectedField, parseErr.Field)
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte("1,0\n0,10\n"), 0o600))

	set, err := LoadFile(path, Options{Labeled: true})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 1, set.Dimensions())
	assert.Equal(t, 0, set.Label(1))
	assert.Equal(t, []float64{10}, set.Vector(1))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.Error(t, err)
}

func TestDelimiterFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		expected Delimiter
		err      bool
	}{
		{in: ",", expected: DelimiterComma},
		{in: "comma", expected: DelimiterComma},
		{in: "", expected: DelimiterComma},
		{in: "tab", expected: DelimiterTab},
		{in: "\t", expected: DelimiterTab},
		{in: ";", err: true},
	}
	for _, test := range tests {
		got, err := DelimiterFor(test.in)
		if test.err {
			assert.Error(t, err, test.in)
			continue
		}
		require.NoError(t, err, test.in)
		assert.Equal(t, test.expected, got, test.in)
	}
}

func TestWriteLIBSVM(t *testing.T) {
	set := &Set{Labels: []int{1, -1}, Features: [][]float64{{0.5, 0}, {2, 3.25}}}
	var buf bytes.Buffer
	require.NoError(t, WriteLIBSVM(&buf, set))
	assert.Equal(t, "1 1:0.5 2:0\n-1 1:2 2:3.25\n", buf.String())

	assert.Error(t, WriteLIBSVM(&buf, &Set{Features: [][]float64{{1}}}))
}
