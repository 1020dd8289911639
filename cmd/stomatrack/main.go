package main

import (
	"fmt"
	"os"

	"stomatrack/internal/config"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Version = "dev"

type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "stomatrack",
		Short:         "Stoma health tracking API with AI-assisted entry analysis",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "configs/config.yml", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable development logging")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// setup loads the config and builds the logger shared by every command.
func setup(opts *rootOptions) (*config.Config, *zap.Logger, error) {
	logger, err := newLogger(opts.debug)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		logger.Sync()
		return nil, nil, err
	}
	return cfg, logger, nil
}
