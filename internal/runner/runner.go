// Package runner executes one classification run: load, index, decide every
// query, then report.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-sod/clamp/internal/classifier"
	"github.com/go-sod/clamp/internal/dataset"
	"github.com/go-sod/clamp/internal/engine"
	"github.com/go-sod/clamp/internal/logging"
	"github.com/go-sod/clamp/internal/metrics"
	"github.com/go-sod/clamp/internal/report"
	"github.com/go-sod/clamp/internal/resource"
	"github.com/go-sod/clamp/internal/runenv"
)

// StderrTextfile as the metrics textfile prints the metrics to stderr.
const StderrTextfile = "-"

var ErrKTooLarge = errors.New("k exceeds the training set size")

// Run classifies every query of cfg.QueryPath against cfg.TrainPath. Output
// is written to out only after the last query succeeds; a failed run writes
// nothing. The run directory is released on every path.
func Run(ctx context.Context, env *runenv.Env, cfg Config, out io.Writer) (summary metrics.Summary, err error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return metrics.Summary{}, fmt.Errorf("invalid run config: %w", err)
	}
	delim, _ := dataset.DelimiterFor(cfg.Delimiter)
	mode, _ := metrics.ParseMode(cfg.Metrics)

	train, err := dataset.LoadFile(cfg.TrainPath, dataset.Options{Delimiter: delim, Labeled: true})
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("load training set: %w", err)
	}
	k := ResolveK(cfg.K, train.Len())
	if k > train.Len() {
		return metrics.Summary{}, fmt.Errorf("%w: k=%d, n=%d", ErrKTooLarge, k, train.Len())
	}
	logger.Infof("training set %s: %d rows, %d features", cfg.TrainPath, train.Len(), train.Dimensions())
	logger.Infof("number of nearest neighbours (k): %d, agreement: %v", k, cfg.Agreement)

	scope, err := resource.Acquire(ctx, cfg.Resource.BaseDir)
	if err != nil {
		return metrics.Summary{}, err
	}
	defer func() {
		if rerr := scope.Release(ctx); rerr != nil {
			logger.Errorf("release run directory: %v", rerr)
			err = errors.Join(err, rerr)
		}
	}()

	agg := metrics.New(mode, metrics.WithExporter(env.Exporter()))

	indexStart := time.Now()
	index, err := env.ProvideIndex()(scope.Dir())
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("create neighbor index: %w", err)
	}
	scope.Track(index)
	if err := index.Build(ctx, train.Features); err != nil {
		return metrics.Summary{}, err
	}
	tf, err := env.ProvideTransform()()
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("create feature transform: %w", err)
	}
	if err := tf.Precompute(ctx, train.Features); err != nil {
		return metrics.Summary{}, err
	}
	agg.AddIndexTime(time.Since(indexStart))
	logger.Infof("index built in %s", agg.State().IndexTime)

	queries, err := loadQueries(cfg, delim)
	if err != nil {
		return metrics.Summary{}, err
	}

	clf, err := env.ProvideClassifier()()
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("create local classifier: %w", err)
	}
	eng, err := engine.New(index, tf, clf, train.Labels, k, engine.WithAgreement(cfg.Agreement))
	if err != nil {
		return metrics.Summary{}, err
	}
	logger.Infof("lazy path when %d of %d neighbours agree", eng.Quorum(), k)

	var buf bytes.Buffer
	w := report.New(&buf)
	for i := 0; i < queries.Len(); i++ {
		query := queries.Vector(i)
		if err := ctx.Err(); err != nil {
			return metrics.Summary{}, fmt.Errorf("query %d: %w", i+1, err)
		}
		d, err := eng.Decide(ctx, query)
		if err != nil {
			return metrics.Summary{}, fmt.Errorf("query %d: %w", i+1, err)
		}
		agg.Observe(d)
		if err := score(ctx, agg, w, queries, i, d.Label, d.Path.String()); err != nil {
			return metrics.Summary{}, err
		}
	}

	return finish(ctx, env, cfg, agg, w, &buf, out, start)
}

// Baseline trains one classifier on the whole training set and predicts
// every query with it.
func Baseline(ctx context.Context, env *runenv.Env, cfg Config, out io.Writer) (metrics.Summary, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	if err := cfg.Validate(); err != nil {
		return metrics.Summary{}, fmt.Errorf("invalid run config: %w", err)
	}
	delim, _ := dataset.DelimiterFor(cfg.Delimiter)
	mode, _ := metrics.ParseMode(cfg.Metrics)

	train, err := dataset.LoadFile(cfg.TrainPath, dataset.Options{Delimiter: delim, Labeled: true})
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("load training set: %w", err)
	}
	queries, err := loadQueries(cfg, delim)
	if err != nil {
		return metrics.Summary{}, err
	}
	logger.Infof("baseline on %d training rows, %d queries", train.Len(), queries.Len())

	agg := metrics.New(mode, metrics.WithExporter(env.Exporter()))
	clf, err := env.ProvideClassifier()()
	if err != nil {
		return metrics.Summary{}, fmt.Errorf("create classifier: %w", err)
	}

	trainStart := time.Now()
	model, err := clf.Train(ctx, train.Labels, train.Features)
	if err != nil {
		return metrics.Summary{}, err
	}
	agg.AddTrainTime(time.Since(trainStart))
	if in, ok := model.(classifier.Inspector); ok {
		logger.Infof("global model: %d classes, %d support vectors", len(in.Classes()), in.SupportVectors())
	}

	var buf bytes.Buffer
	w := report.New(&buf)
	for i := 0; i < queries.Len(); i++ {
		query := queries.Vector(i)
		if err := ctx.Err(); err != nil {
			return metrics.Summary{}, fmt.Errorf("query %d: %w", i+1, err)
		}
		predictStart := time.Now()
		label, err := model.Predict(ctx, query)
		if err != nil {
			return metrics.Summary{}, fmt.Errorf("query %d: %w", i+1, err)
		}
		agg.ObserveGlobal(time.Since(predictStart))
		if err := score(ctx, agg, w, queries, i, label, metrics.PathGlobal); err != nil {
			return metrics.Summary{}, err
		}
	}

	return finish(ctx, env, cfg, agg, w, &buf, out, start)
}

func loadQueries(cfg Config, delim dataset.Delimiter) (*dataset.Set, error) {
	queries, err := dataset.LoadFile(cfg.QueryPath, dataset.Options{Delimiter: delim, Labeled: !cfg.Prediction})
	if err != nil {
		return nil, fmt.Errorf("load query set: %w", err)
	}
	return queries, nil
}

// score records a prediction against its truth, or writes it out when the
// queries carry no labels.
func score(ctx context.Context, agg *metrics.Aggregator, w *report.Writer, queries *dataset.Set, i, label int, path string) error {
	logger := logging.FromContext(ctx)
	if !queries.Labeled() {
		logger.Debugf("query %d: %s, predicted %d", i+1, path, label)
		return w.Prediction(label)
	}
	truth := queries.Label(i)
	agg.Score(label, truth)
	logger.Debugf("query %d: %s, predicted %d, truth %d, correct %t", i+1, path, label, truth, label == truth)
	return nil
}

func finish(ctx context.Context, env *runenv.Env, cfg Config, agg *metrics.Aggregator, w *report.Writer, buf *bytes.Buffer, out io.Writer, start time.Time) (metrics.Summary, error) {
	logger := logging.FromContext(ctx)

	agg.SetElapsed(time.Since(start))
	summary := agg.Summary()
	st := summary.State
	if !cfg.Prediction {
		logger.Infof("test cases: %d, correct: %d, accuracy: %s", st.Total, st.Correct, summary.Accuracy)
		if err := w.Summary(summary); err != nil {
			return metrics.Summary{}, err
		}
	}
	if st.Global > 0 {
		logger.Infof("global: %d", st.Global)
	} else {
		logger.Infof("lazy: %d, eager: %d", st.Lazy, st.Eager)
	}
	if err := w.Flush(); err != nil {
		return metrics.Summary{}, err
	}
	if _, err := buf.WriteTo(out); err != nil {
		return metrics.Summary{}, fmt.Errorf("write output: %w", err)
	}

	if exporter := env.Exporter(); exporter != nil {
		switch cfg.MetricsTextfile {
		case "":
		case StderrTextfile:
			if err := exporter.WriteText(os.Stderr); err != nil {
				return metrics.Summary{}, err
			}
		default:
			if err := exporter.WriteTextfile(cfg.MetricsTextfile); err != nil {
				return metrics.Summary{}, err
			}
		}
	}
	return summary, nil
}
