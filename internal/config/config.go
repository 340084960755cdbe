// Package config aggregates the per-package configuration of a run. Values
// come from the environment and defaults, then an optional TOML file, then
// explicitly set command line flags.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-sod/clamp/internal/classifier"
	"github.com/go-sod/clamp/internal/neighbor"
	"github.com/go-sod/clamp/internal/neighbor/lsh"
	"github.com/go-sod/clamp/internal/runner"
	"github.com/go-sod/clamp/internal/setup"
	"github.com/go-sod/clamp/internal/transform"
	"github.com/kelseyhightower/envconfig"
)

var (
	_ setup.IndexConfigProvider      = (*Config)(nil)
	_ setup.TransformConfigProvider  = (*Config)(nil)
	_ setup.ClassifierConfigProvider = (*Config)(nil)
	_ setup.MetricsConfigProvider    = (*Config)(nil)
)

type Config struct {
	LogLevel   string            `envconfig:"CLAMP_LOG_LEVEL" default:"info" toml:"log_level"`
	Run        runner.Config     `toml:"run"`
	Neighbor   neighbor.Config   `toml:"neighbor"`
	LSH        lsh.Config        `toml:"lsh"`
	Transform  transform.Config  `toml:"transform"`
	Classifier classifier.Config `toml:"classifier"`
}

// Load reads the environment and, when path is not empty, the TOML file at
// path on top of it.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s: unknown keys %v", path, undecoded)
	}
	return cfg, nil
}

func (c *Config) IndexConfig() *neighbor.Config {
	return &c.Neighbor
}

func (c *Config) LSHConfig() *lsh.Config {
	return &c.LSH
}

func (c *Config) TransformConfig() *transform.Config {
	return &c.Transform
}

func (c *Config) ClassifierConfig() *classifier.Config {
	return &c.Classifier
}

func (c *Config) MetricsTextfile() string {
	return c.Run.MetricsTextfile
}
