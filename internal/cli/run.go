package cli

import (
	"github.com/go-sod/clamp/internal/classifier"
	"github.com/go-sod/clamp/internal/config"
	"github.com/go-sod/clamp/internal/metrics"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/internal/runner"
	"github.com/go-sod/clamp/internal/setup"
	"github.com/go-sod/clamp/internal/transform"
	"github.com/go-sod/clamp/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// runFlags mirror config fields; only flags set on the command line
// override the loaded config.
type runFlags struct {
	train      string
	query      string
	out        string
	k          int
	backend    string
	distance   string
	feature    string
	svmParams  string
	prediction bool
	agreement  float64
	binary     bool
	delimiter  string
	tmpDir     string
	textfile   string
	window     int
}

func (f *runFlags) register(fs *pflag.FlagSet, lamp bool) {
	fs.StringVarP(&f.train, "database", "d", "", "training set, first column is the class label")
	fs.StringVarP(&f.query, "query", "q", "", "query set")
	fs.StringVarP(&f.out, "outfile", "o", "", "output file [stdout]")
	fs.BoolVar(&f.prediction, "prediction", false, "queries carry no label column; print one predicted label per line")
	fs.BoolVar(&f.binary, "binary", false, "report precision, recall and F1 for positive class 1")
	fs.StringVar(&f.delimiter, "delimiter", "comma", "field delimiter: comma or tab")
	fs.StringVar(&f.textfile, "metrics-textfile", "", "write Prometheus metrics of the run to this file, - for stderr")
	fs.StringVarP(&f.svmParams, "svm-params", "s", "t:0", "SVM parameters (key:value,...): t kernel, c cost, g gamma, d degree, r coef0, e tolerance")
	if !lamp {
		return
	}
	fs.IntVarP(&f.k, "num-nearest-neighbors", "k", -1, "number of nearest neighbours [min(20% of training, 100)]")
	fs.StringVarP(&f.backend, "lsh-method", "l", "psd", "neighbour backend: psd (Euclidean), rhp (cosine), brute or kd")
	fs.StringVar(&f.distance, "distance", "euclidean", "metric of the brute and kd backends: euclidean, manhattan or chebyshev")
	fs.StringVarP(&f.feature, "feature", "f", "raw", "features for the local model: raw or dtw")
	fs.Float64Var(&f.agreement, "agreement", 1, "share of neighbours that must agree to assign a label lazily, in (0.5, 1]")
	fs.StringVar(&f.tmpDir, "tmp-dir", "", "parent of the run directory [/dev/shm or the OS temp dir]")
	fs.IntVar(&f.window, "dtw-window", 0, "Sakoe-Chiba window for DTW, 0 for none")
}

func (f *runFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("database") {
		cfg.Run.TrainPath = f.train
	}
	if fs.Changed("query") {
		cfg.Run.QueryPath = f.query
	}
	if fs.Changed("outfile") {
		cfg.Run.OutPath = f.out
	}
	if fs.Changed("prediction") {
		cfg.Run.Prediction = f.prediction
	}
	if fs.Changed("binary") {
		cfg.Run.Metrics = metrics.ModeMulticlass.String()
		if f.binary {
			cfg.Run.Metrics = metrics.ModeBinary.String()
		}
	}
	if fs.Changed("delimiter") {
		cfg.Run.Delimiter = f.delimiter
	}
	if fs.Changed("metrics-textfile") {
		cfg.Run.MetricsTextfile = f.textfile
	}
	if fs.Changed("svm-params") {
		cfg.Classifier = classifier.Config{Params: f.svmParams}
	}
	if fs.Changed("num-nearest-neighbors") {
		cfg.Run.K = f.k
	}
	if fs.Changed("lsh-method") {
		cfg.Neighbor.Type = neighbor.AlgType(f.backend)
	}
	if fs.Changed("distance") {
		cfg.Neighbor.Distance = f.distance
	}
	if fs.Changed("feature") {
		cfg.Transform.Mode = transform.Mode(f.feature)
	}
	if fs.Changed("agreement") {
		cfg.Run.Agreement = f.agreement
	}
	if fs.Changed("tmp-dir") {
		cfg.Run.Resource.BaseDir = f.tmpDir
	}
	if fs.Changed("dtw-window") {
		cfg.Transform.Window = f.window
	}
}

func newRunCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify queries with lazy neighbour agreement or a local SVM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)

			ctx := cmd.Context()
			env, err := setup.Setup(ctx, cfg)
			if err != nil {
				return err
			}
			buf := util.GetBytesBuffer()
			defer util.PutBytesBuffer(buf)
			if _, err := runner.Run(ctx, env, cfg.Run, buf); err != nil {
				return err
			}
			return writeOutput(cmd, cfg.Run.OutPath, buf)
		},
	}
	flags.register(cmd.Flags(), true)
	return cmd
}

func newBaselineCmd() *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Classify queries with one SVM trained on the whole training set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)

			ctx := cmd.Context()
			env, err := setup.Setup(ctx, &baselineConfig{cfg})
			if err != nil {
				return err
			}
			buf := util.GetBytesBuffer()
			defer util.PutBytesBuffer(buf)
			if _, err := runner.Baseline(ctx, env, cfg.Run, buf); err != nil {
				return err
			}
			return writeOutput(cmd, cfg.Run.OutPath, buf)
		},
	}
	flags.register(cmd.Flags(), false)
	return cmd
}

// baselineConfig exposes only the classifier and metrics to setup; the
// baseline builds no index.
type baselineConfig struct {
	cfg *config.Config
}

func (b *baselineConfig) ClassifierConfig() *classifier.Config {
	return b.cfg.ClassifierConfig()
}

func (b *baselineConfig) MetricsTextfile() string {
	return b.cfg.MetricsTextfile()
}
