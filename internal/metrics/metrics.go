// Package metrics accumulates the quality and timing figures of a run.
package metrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sod/clamp/internal/engine"
)

type Mode int

const (
	ModeMulticlass Mode = iota
	ModeBinary
)

// PositiveLabel is the positive class in binary mode.
const PositiveLabel = 1

func (m Mode) String() string {
	if m == ModeBinary {
		return "binary"
	}
	return "multiclass"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "multiclass":
		return ModeMulticlass, nil
	case "binary":
		return ModeBinary, nil
	default:
		return 0, fmt.Errorf("unknown metrics mode %q, use multiclass or binary", s)
	}
}

// PathGlobal labels baseline predictions in the exported query counter.
const PathGlobal = "global"

// State is the running tally of a run.
type State struct {
	Total     int
	Correct   int
	Positives int
	TP        int
	FP        int
	Lazy      int
	Eager     int
	// Global counts predictions of one model trained on the whole set.
	Global int

	Elapsed     time.Duration
	IndexTime   time.Duration
	TrainTime   time.Duration
	PredictTime time.Duration
}

type Option func(*Aggregator)

func WithExporter(e *Exporter) Option {
	return func(a *Aggregator) {
		a.exporter = e
	}
}

func New(mode Mode, opts ...Option) *Aggregator {
	a := &Aggregator{mode: mode}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregator is owned by a single run loop and is not safe for concurrent use.
type Aggregator struct {
	mode     Mode
	state    State
	exporter *Exporter
}

func (a *Aggregator) Mode() Mode {
	return a.mode
}

func (a *Aggregator) State() State {
	return a.state
}

func (a *Aggregator) AddIndexTime(d time.Duration) {
	a.state.IndexTime += d
	a.exporter.observeIndex(d)
}

// AddTrainTime adds training outside the per-query decisions.
func (a *Aggregator) AddTrainTime(d time.Duration) {
	a.state.TrainTime += d
	a.exporter.observeTrain(d)
}

func (a *Aggregator) SetElapsed(d time.Duration) {
	a.state.Elapsed = d
}

// Observe records the path and durations of one decision.
func (a *Aggregator) Observe(d engine.Decision) {
	if d.Path == engine.PathEager {
		a.state.Eager++
		a.state.TrainTime += d.TrainTime
		a.state.PredictTime += d.PredictTime
		a.exporter.observeTrain(d.TrainTime)
		a.exporter.observePredict(d.PredictTime)
	} else {
		a.state.Lazy++
	}
	a.exporter.observePath(d.Path.String())
}

// ObserveGlobal records one prediction of the global baseline model.
func (a *Aggregator) ObserveGlobal(predictTime time.Duration) {
	a.state.Global++
	a.state.PredictTime += predictTime
	a.exporter.observePredict(predictTime)
	a.exporter.observePath(PathGlobal)
}

// Score compares a prediction against its ground truth.
func (a *Aggregator) Score(predicted, truth int) {
	a.state.Total++
	correct := predicted == truth
	if correct {
		a.state.Correct++
	}
	if truth == PositiveLabel {
		a.state.Positives++
	}
	if predicted == PositiveLabel {
		if correct {
			a.state.TP++
		} else {
			a.state.FP++
		}
	}
	a.exporter.observeScore(correct)
}

// Summary is the evaluation result of a run.
type Summary struct {
	Mode      Mode
	State     State
	Accuracy  Ratio
	Precision Ratio
	Recall    Ratio
	F1        Ratio
}

func (a *Aggregator) Summary() Summary {
	s := Summary{
		Mode:     a.mode,
		State:    a.state,
		Accuracy: NewRatio(float64(a.state.Correct), float64(a.state.Total)),
	}
	if a.mode == ModeBinary {
		s.Precision = NewRatio(float64(a.state.TP), float64(a.state.TP+a.state.FP))
		s.Recall = NewRatio(float64(a.state.TP), float64(a.state.Positives))
		s.F1 = F1(s.Precision, s.Recall)
	}
	return s
}
