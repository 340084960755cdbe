// Package dataset reads labeled feature rows into a position-indexed
// training set.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

type Delimiter rune

const (
	DelimiterComma Delimiter = ','
	DelimiterTab   Delimiter = '\t'
)

// DelimiterFor maps the configured delimiter name to a Delimiter.
func DelimiterFor(s string) (Delimiter, error) {
	switch strings.ToLower(s) {
	case ",", "comma", "csv", "":
		return DelimiterComma, nil
	case "\t", "\\t", "tab", "tsv":
		return DelimiterTab, nil
	default:
		return 0, fmt.Errorf("unknown delimiter %q, use comma or tab", s)
	}
}

// ParseError reports a malformed input row. Row is 1-based; Field is the
// 0-based field index or -1 when the row as a whole is rejected.
type ParseError struct {
	Source string
	Row    int
	Field  int
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row == 0:
		return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
	case e.Field < 0:
		return fmt.Sprintf("parse %s: row %d: %v", e.Source, e.Row, e.Err)
	default:
		return fmt.Sprintf("parse %s: row %d field %d: %v", e.Source, e.Row, e.Field, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	ErrEmptyInput       = fmt.Errorf("no data rows")
	ErrNoFeatures       = fmt.Errorf("row has no features")
	ErrDimNotEqual      = fmt.Errorf("row dimension differs from the first row")
	ErrLabelNotIntegral = fmt.Errorf("label is not an integer")
	ErrNotFinite        = fmt.Errorf("value is not a finite number")
)

// Set is an ordered, position-aligned collection of labels and features.
// Labels is nil for unlabeled query sets.
type Set struct {
	Labels   []int
	Features [][]float64
}

func (s *Set) Len() int {
	return len(s.Features)
}

// Dimensions of the rows, zero for an empty set.
func (s *Set) Dimensions() int {
	if len(s.Features) == 0 {
		return 0
	}
	return len(s.Features[0])
}

func (s *Set) Labeled() bool {
	return s.Labels != nil
}

// Label returns the label at position idx.
func (s *Set) Label(idx int) int {
	return s.Labels[idx]
}

// Vector returns the features at position idx.
func (s *Set) Vector(idx int) []float64 {
	return s.Features[idx]
}

type Options struct {
	Delimiter Delimiter
	// Labeled treats the first field of every row as the class label.
	Labeled bool
}

// LoadFile reads a data set from the named file.
func LoadFile(path string, opts Options) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data set: %w", err)
	}
	defer f.Close()

	return Load(f, path, opts)
}

// Load parses rows from r. Blank lines are skipped; any malformed row aborts
// with a *ParseError.
func Load(r io.Reader, source string, opts Options) (*Set, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = DelimiterComma
	}

	set := &Set{}
	if opts.Labeled {
		set.Labels = []int{}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	row := 0
	for scanner.Scan() {
		row++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		label, features, err := parseRow(line, opts)
		if err != nil {
			err.Source, err.Row = source, row
			return nil, err
		}
		if dim := set.Dimensions(); set.Len() > 0 && len(features) != dim {
			return nil, &ParseError{Source: source, Row: row, Field: -1, Err: ErrDimNotEqual}
		}
		if opts.Labeled {
			set.Labels = append(set.Labels, label)
		}
		set.Features = append(set.Features, features)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}

	if set.Len() == 0 {
		return nil, &ParseError{Source: source, Field: -1, Err: ErrEmptyInput}
	}

	return set, nil
}

func parseRow(line string, opts Options) (int, []float64, *ParseError) {
	fields := strings.Split(line, string(opts.Delimiter))
	var label int
	start := 0
	if opts.Labeled {
		l, err := parseLabel(strings.TrimSpace(fields[0]))
		if err != nil {
			return 0, nil, &ParseError{Field: 0, Err: err}
		}
		label, start = l, 1
	}

	if len(fields) <= start {
		return 0, nil, &ParseError{Field: -1, Err: ErrNoFeatures}
	}

	features := make([]float64, 0, len(fields)-start)
	for i := start; i < len(fields); i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return 0, nil, &ParseError{Field: i, Err: err}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil, &ParseError{Field: i, Err: ErrNotFinite}
		}
		features = append(features, v)
	}

	return label, features, nil
}

func parseLabel(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotFinite
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, ErrLabelNotIntegral
	}
	return int(f), nil
}
