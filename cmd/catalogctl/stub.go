package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/config"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run the in-memory stub catalog",
}

var stubServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stub catalog REST API",
	Long: `Serve an in-memory catalog that answers the REST calls catalogctl makes.

Pipelines listed under stub.pipelines run for run_polls status reads and
end in their configured outcome. With --watch, edits to the config file
(or SIGHUP) re-seed pipelines without a restart.

Examples:
  catalogctl stub serve
  catalogctl stub serve --watch --config stub.yaml`,
	RunE: runStubServe,
}

var stubWatch bool

func init() {
	rootCmd.AddCommand(stubCmd)
	stubCmd.AddCommand(stubServeCmd)

	stubServeCmd.Flags().BoolVar(&stubWatch, "watch", false, "reload stub.pipelines when the config file changes")
}

func runStubServe(cmd *cobra.Command, args []string) error {
	if !stubWatch {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		stub, err := bootstrap.NewStub(cfg, logger, bootstrap.StubOptions{})
		if err != nil {
			return err
		}
		return stub.Run(cmd.Context())
	}

	if _, err := os.Stat(cfgFile); err != nil {
		return fmt.Errorf("--watch needs a config file: %w", err)
	}
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	holder, err := config.NewHolder(cfgFile, logger)
	if err != nil {
		return err
	}
	defer holder.Stop()

	stub, err := bootstrap.NewStub(cfg, logger, bootstrap.StubOptions{})
	if err != nil {
		return err
	}
	stub.Watch(holder)
	if err := holder.WatchFile(); err != nil {
		return err
	}
	holder.WatchSignals()
	logger.Info().Strs("reloadable", config.ReloadableFields()).Msg("watching config file")

	return stub.Run(cmd.Context())
}
