// Package cli wires the clamp commands.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-sod/clamp/internal/buildinfo"
	"github.com/go-sod/clamp/internal/config"
	"github.com/go-sod/clamp/internal/logging"
	"github.com/spf13/cobra"
)

type configKey struct{}

type rootOptions struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the command tree. Configuration is loaded once before
// any subcommand runs and travels in the command context with the logger.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "clamp",
		Short: "Time series classification with locally adaptive model prediction",
		Long: "clamp classifies each query from its approximate nearest neighbours: a label the\n" +
			"neighbours agree on is copied, otherwise a local SVM is trained on them.",
		Version: buildinfo.Info.String(),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "TOML config file, applied over CLAMP_* environment variables")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRunCmd(),
		newBaselineCmd(),
		newConvertCmd(),
		newVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, logging.NewLogger(cfg.LogLevel))
	cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))
	return nil
}

func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey{}).(*config.Config)
	if !ok {
		return nil, errors.New("configuration is not loaded")
	}
	return cfg, nil
}

// writeOutput sends a finished run's output to path, or to the command's
// stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, buf *bytes.Buffer) error {
	if path == "" {
		_, err := buf.WriteTo(cmd.OutOrStdout())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
