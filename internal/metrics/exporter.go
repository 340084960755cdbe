package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/go-sod/clamp/internal/engine"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "clamp"

// Exporter mirrors the aggregator into a Prometheus registry that can be
// written as a node-exporter textfile. A nil Exporter ignores observations.
type Exporter struct {
	registry *prometheus.Registry
	queries  *prometheus.CounterVec
	correct  prometheus.Counter
	scored   prometheus.Counter
	index    prometheus.Gauge
	train    prometheus.Histogram
	predict  prometheus.Histogram
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries decided, by path.",
		}, []string{"path"}),
		correct: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "correct_total",
			Help:      "Predictions equal to the ground truth.",
		}),
		scored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scored_total",
			Help:      "Predictions compared with a ground truth.",
		}),
		index: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_seconds",
			Help:      "Time spent building the neighbor index and precomputing features.",
		}),
		train: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "local_train_seconds",
			Help:      "Local classifier training time.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		predict: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "local_predict_seconds",
			Help:      "Local classifier prediction time.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
	e.registry.MustRegister(e.queries, e.correct, e.scored, e.index, e.train, e.predict)
	for _, p := range []engine.Path{engine.PathLazy, engine.PathEager} {
		e.queries.WithLabelValues(p.String())
	}
	return e
}

func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// WriteTextfile writes the registry atomically to path.
func (e *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, e.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

// WriteText renders the registry in the text exposition format.
func (e *Exporter) WriteText(w io.Writer) error {
	families, err := e.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func (e *Exporter) observePath(path string) {
	if e == nil {
		return
	}
	e.queries.WithLabelValues(path).Inc()
}

func (e *Exporter) observeScore(correct bool) {
	if e == nil {
		return
	}
	e.scored.Inc()
	if correct {
		e.correct.Inc()
	}
}

func (e *Exporter) observeIndex(d time.Duration) {
	if e == nil {
		return
	}
	e.index.Add(d.Seconds())
}

func (e *Exporter) observeTrain(d time.Duration) {
	if e == nil {
		return
	}
	e.train.Observe(d.Seconds())
}

func (e *Exporter) observePredict(d time.Duration) {
	if e == nil {
		return
	}
	e.predict.Observe(d.Seconds())
}
