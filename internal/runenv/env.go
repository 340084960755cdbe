// Package runenv carries the collaborator providers a run is assembled from.
package runenv

import (
	"github.com/go-sod/clamp/internal/classifier"
	"github.com/go-sod/clamp/internal/metrics"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/internal/transform"
)

type Option func(*Env) *Env

func New(opts ...Option) *Env {
	env := &Env{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type Env struct {
	index      neighbor.ProvideFn
	transform  transform.ProvideFn
	classifier classifier.ProvideFn
	exporter   *metrics.Exporter
}

func (e *Env) ProvideIndex() neighbor.ProvideFn {
	return e.index
}

func (e *Env) ProvideTransform() transform.ProvideFn {
	return e.transform
}

func (e *Env) ProvideClassifier() classifier.ProvideFn {
	return e.classifier
}

// Exporter is nil when metrics are not exported.
func (e *Env) Exporter() *metrics.Exporter {
	return e.exporter
}

func WithIndex(fn neighbor.ProvideFn) Option {
	return func(e *Env) *Env {
		e.index = fn
		return e
	}
}

func WithTransform(fn transform.ProvideFn) Option {
	return func(e *Env) *Env {
		e.transform = fn
		return e
	}
}

func WithClassifier(fn classifier.ProvideFn) Option {
	return func(e *Env) *Env {
		e.classifier = fn
		return e
	}
}

func WithExporter(exporter *metrics.Exporter) Option {
	return func(e *Env) *Env {
		e.exporter = exporter
		return e
	}
}
