package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kosench/shortlink/internal/app"
	"github.com/Kosench/shortlink/internal/config"
	"github.com/Kosench/shortlink/internal/logging"
)

var (
	configPath string

	cfg    *config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:          "shortlink",
	Short:        "URL shortener service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logging.New(logging.Options{
			File:       cfg.Log.File,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default configs/config.yaml)")

	rootCmd.AddCommand(serveCmd, createCmd, statsCmd, migrateCmd)
}

// openApp wires the application and runs schema migrations for SQL stores.
func openApp(cmd *cobra.Command) (*app.App, error) {
	a, err := app.New(cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := a.Migrate(cmd.Context()); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return a, nil
}
