package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/adapters/clock"
	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/bootstrap"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Trigger ingestion pipelines",
}

var pipelineRunCmd = &cobra.Command{
	Use:   "run <pipeline-id>",
	Short: "Trigger a pipeline and optionally wait for the run to finish",
	Long: `Trigger an ingestion pipeline.

With --wait the run is polled every ingestion.poll_interval until it ends
or ingestion.timeout passes. A failed run exits non-zero.

Examples:
  catalogctl pipeline run 4f1c...
  catalogctl pipeline run 4f1c... --wait`,
	Args: cobra.ExactArgs(1),
	RunE: runPipelineRun,
}

var pipelineWait bool

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)

	pipelineRunCmd.Flags().BoolVar(&pipelineWait, "wait", false, "wait for the run to finish")
}

func runPipelineRun(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := bootstrap.NewCatalog(cmd.Context(), cfg.Server, logger, nil)
	if err != nil {
		return err
	}

	runner := app.NewPipelineRunner(client, clock.Real{}, logger)
	run, err := runner.Run(cmd.Context(), args[0], bootstrap.RunConfig(cfg.Ingestion, pipelineWait))
	if err != nil {
		return err
	}

	if !run.Waited {
		fmt.Fprintf(cmd.OutOrStdout(), "%s triggered %s\n", checkMark, run.PipelineID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s finished: %s after %d polls (%s)\n",
		checkMark, run.PipelineID, run.State, run.Polls, run.Elapsed.Round(time.Millisecond))
	return nil
}
