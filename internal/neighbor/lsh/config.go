package lsh

import "github.com/go-sod/clamp/internal/database"

// Config tunes the hash families. Zero Tables, Hashes or Width keeps the
// family default: 200 tables of one projection with width 5 for psd, 5
// tables of 6 hyperplanes for rhp.
type Config struct {
	Tables  int             `envconfig:"CLAMP_LSH_TABLES" default:"0" toml:"tables"`
	Hashes  int             `envconfig:"CLAMP_LSH_HASHES" default:"0" toml:"hashes"`
	Buckets int             `envconfig:"CLAMP_LSH_BUCKETS" default:"521" toml:"buckets"`
	Width   float64         `envconfig:"CLAMP_LSH_WIDTH" default:"0" toml:"width"`
	Seed    int64           `envconfig:"CLAMP_LSH_SEED" default:"1" toml:"seed"`
	Store   database.Config `toml:"store"`
}

type Option func(*Index)

func WithTables(n int) Option {
	return func(idx *Index) {
		idx.tables = n
	}
}

func WithHashes(n int) Option {
	return func(idx *Index) {
		idx.hashes = n
	}
}

func WithBuckets(n int) Option {
	return func(idx *Index) {
		idx.buckets = n
	}
}

// WithWidth sets the quantization width of the p-stable family.
func WithWidth(w float64) Option {
	return func(idx *Index) {
		idx.width = w
	}
}

func WithSeed(seed int64) Option {
	return func(idx *Index) {
		idx.seed = seed
	}
}

func WithStore(cfg database.Config) Option {
	return func(idx *Index) {
		idx.storeCfg = cfg
	}
}

// OptionsFrom maps a Config onto index options.
func OptionsFrom(cfg Config) []Option {
	opts := []Option{
		WithBuckets(cfg.Buckets),
		WithSeed(cfg.Seed),
		WithStore(cfg.Store),
	}
	if cfg.Tables != 0 {
		opts = append(opts, WithTables(cfg.Tables))
	}
	if cfg.Hashes != 0 {
		opts = append(opts, WithHashes(cfg.Hashes))
	}
	if cfg.Width != 0 {
		opts = append(opts, WithWidth(cfg.Width))
	}
	return opts
}
