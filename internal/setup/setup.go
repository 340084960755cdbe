// Package setup turns configuration into the collaborator providers of a run.
package setup

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sod/clamp/internal/classifier"
	"github.com/go-sod/clamp/internal/classifier/svm"
	"github.com/go-sod/clamp/internal/geom"
	"github.com/go-sod/clamp/internal/logging"
	"github.com/go-sod/clamp/internal/metrics"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/internal/neighbor/brute"
	"github.com/go-sod/clamp/internal/neighbor/kd"
	"github.com/go-sod/clamp/internal/neighbor/lsh"
	"github.com/go-sod/clamp/internal/runenv"
	"github.com/go-sod/clamp/internal/transform"
)

type IndexConfigProvider interface {
	IndexConfig() *neighbor.Config
	LSHConfig() *lsh.Config
}

type TransformConfigProvider interface {
	TransformConfig() *transform.Config
}

type ClassifierConfigProvider interface {
	ClassifierConfig() *classifier.Config
}

type MetricsConfigProvider interface {
	MetricsTextfile() string
}

// Setup resolves every provider config implements. Strategies are chosen
// here once and never re-dispatched per query.
func Setup(ctx context.Context, config interface{}) (*runenv.Env, error) {
	logger := logging.FromContext(ctx)
	var envOpts []runenv.Option

	if provider, ok := config.(IndexConfigProvider); ok {
		cfg := provider.IndexConfig()
		logger.Infof("neighbor backend: %s", cfg.Type)
		provideFn, err := ProvideIndexFor(cfg, provider.LSHConfig())
		if err != nil {
			return nil, fmt.Errorf("unable create index provide function: %w", err)
		}
		envOpts = append(envOpts, runenv.WithIndex(provideFn))
	}

	if provider, ok := config.(TransformConfigProvider); ok {
		cfg := provider.TransformConfig()
		logger.Infof("features used: %s", cfg.Mode)
		provideFn, err := ProvideTransformFor(cfg)
		if err != nil {
			return nil, fmt.Errorf("unable create transform provide function: %w", err)
		}
		envOpts = append(envOpts, runenv.WithTransform(provideFn))
	}

	if provider, ok := config.(ClassifierConfigProvider); ok {
		cfg := provider.ClassifierConfig()
		logger.Infof("svm parameters: %s", cfg.Params)
		provideFn, err := ProvideClassifierFor(cfg)
		if err != nil {
			return nil, fmt.Errorf("unable create classifier provide function: %w", err)
		}
		envOpts = append(envOpts, runenv.WithClassifier(provideFn))
	}

	if provider, ok := config.(MetricsConfigProvider); ok && provider.MetricsTextfile() != "" {
		envOpts = append(envOpts, runenv.WithExporter(metrics.NewExporter()))
	}

	return runenv.New(envOpts...), nil
}

func ProvideIndexFor(cfg *neighbor.Config, lshCfg *lsh.Config) (neighbor.ProvideFn, error) {
	alg, err := neighbor.ParseAlgType(string(cfg.Type))
	if err != nil {
		return nil, err
	}
	distFn, err := geom.DistanceFor(cfg.Distance)
	if err != nil {
		return nil, err
	}
	exact := alg == neighbor.AlgTypeBrute || alg == neighbor.AlgTypeKD
	if !exact && !isEuclidean(cfg.Distance) {
		return nil, fmt.Errorf("distance %s needs the brute or kd backend, %s ranks by its own metric", cfg.Distance, alg)
	}

	switch alg {
	case neighbor.AlgTypeBrute:
		return func(string) (neighbor.Index, error) {
			return brute.New(brute.WithDistance(distFn)), nil
		}, nil
	case neighbor.AlgTypeKD:
		return func(string) (neighbor.Index, error) {
			return kd.New(kd.WithDistance(distFn)), nil
		}, nil
	case neighbor.AlgTypePSD:
		return func(dir string) (neighbor.Index, error) {
			return lsh.NewPSD(dir, lsh.OptionsFrom(*lshCfg)...), nil
		}, nil
	case neighbor.AlgTypeRHP:
		return func(dir string) (neighbor.Index, error) {
			return lsh.NewRHP(dir, lsh.OptionsFrom(*lshCfg)...), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown neighbor backend: %s", cfg.Type)
	}
}

func isEuclidean(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return name == "" || name == geom.DistanceEuclidean
}

func ProvideTransformFor(cfg *transform.Config) (transform.ProvideFn, error) {
	mode, err := transform.ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	switch mode {
	case transform.ModeDTW:
		if cfg.Window < 0 {
			return nil, fmt.Errorf("dtw window %d is negative", cfg.Window)
		}
		return func() (transform.Transform, error) {
			return transform.NewDistanceKernel(
				transform.WithWindow(cfg.Window),
				transform.WithWorkers(cfg.Workers),
			), nil
		}, nil
	default:
		return func() (transform.Transform, error) {
			return transform.NewIdentity(), nil
		}, nil
	}
}

// ProvideClassifierFor parses the parameters up front so a malformed string
// fails configuration rather than the first eager query.
func ProvideClassifierFor(cfg *classifier.Config) (classifier.ProvideFn, error) {
	params, err := svm.ParseParams(cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("parse svm parameters %q: %w", cfg.Params, err)
	}
	return func() (classifier.Classifier, error) {
		return svm.New(params)
	}, nil
}
