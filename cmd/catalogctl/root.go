package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/config"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "End-to-end scenario driver for a metadata catalog",
	Long: `catalogctl creates, patches and deletes catalog fixtures through the REST
API, drives the settings UI through Chrome, and follows ingestion pipeline
runs. A stub catalog server is included for local runs.

Quick start:
  catalogctl stub serve          # Start the stub catalog
  catalogctl entity lifecycle    # Create, patch and delete a search index
  catalogctl sweep               # Delete services left behind by earlier runs`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")
}

// loadConfig reads the config file, falling back to the environment when the
// file does not exist.
func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, bootstrap.SetupLogger(cfg.Logging, os.Stderr), nil
}
