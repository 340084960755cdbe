package runner

import (
	"errors"
	"fmt"

	"github.com/go-sod/clamp/internal/dataset"
	"github.com/go-sod/clamp/internal/metrics"
	"github.com/go-sod/clamp/internal/resource"
)

const (
	maxDefaultK      = 100
	defaultKFraction = 0.2
)

type Config struct {
	TrainPath string `envconfig:"CLAMP_TRAIN" toml:"train"`
	QueryPath string `envconfig:"CLAMP_QUERY" toml:"query"`
	OutPath   string `envconfig:"CLAMP_OUT" toml:"out"`
	// K <= 0 picks min(20% of the training set, 100).
	K          int     `envconfig:"CLAMP_K" default:"-1" toml:"k"`
	Agreement  float64 `envconfig:"CLAMP_AGREEMENT" default:"1" toml:"agreement"`
	Prediction bool    `envconfig:"CLAMP_PREDICTION" toml:"prediction"`
	Metrics    string  `envconfig:"CLAMP_METRICS_MODE" default:"multiclass" toml:"metrics"`
	Delimiter  string  `envconfig:"CLAMP_DELIMITER" default:"comma" toml:"delimiter"`
	// MetricsTextfile, when set, receives the Prometheus metrics of the run;
	// "-" prints them to stderr.
	MetricsTextfile string          `envconfig:"CLAMP_METRICS_TEXTFILE" toml:"metrics_textfile"`
	Resource        resource.Config `toml:"resource"`
}

var (
	ErrNoTrainingSet = errors.New("no training set given")
	ErrNoQuerySet    = errors.New("no query set given")
)

func (c Config) Validate() error {
	if c.TrainPath == "" {
		return ErrNoTrainingSet
	}
	if c.QueryPath == "" {
		return ErrNoQuerySet
	}
	if _, err := dataset.DelimiterFor(c.Delimiter); err != nil {
		return err
	}
	if _, err := metrics.ParseMode(c.Metrics); err != nil {
		return err
	}
	if !(c.Agreement > 0.5 && c.Agreement <= 1) {
		return fmt.Errorf("agreement %v must be in (0.5, 1]", c.Agreement)
	}
	return nil
}

// ResolveK returns k, or the default neighbor count for n training rows when
// k is not positive.
func ResolveK(k, n int) int {
	if k > 0 {
		return k
	}
	return max(1, min(int(defaultKFraction*float64(n)), maxDefaultK))
}
