package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/adapters/clock"
	"github.com/artpar/catalogctl/app"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete services left behind by interrupted runs",
	Long: `Hard-delete every service the journal still lists as pending.

Services already gone on the server are marked deleted. Failures stay
pending for the next sweep and make the command exit non-zero.`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	env, err := openScenarioEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := app.NewSweeper(env.journal, env.client, clock.Real{}, env.logger).Sweep(cmd.Context())
	if err != nil {
		return err
	}

	if result.Total() == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sweep.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tSCENARIO\tRESULT")
	for _, e := range result.Deleted {
		fmt.Fprintf(w, "%s\t%s\tdeleted\n", e.ServiceFQN, e.ScenarioID)
	}
	for _, e := range result.Missing {
		fmt.Fprintf(w, "%s\t%s\tmissing\n", e.ServiceFQN, e.ScenarioID)
	}
	failed := make([]string, 0, len(result.Failed))
	for fqn := range result.Failed {
		failed = append(failed, fqn)
	}
	sort.Strings(failed)
	for _, fqn := range failed {
		fmt.Fprintf(w, "%s\t\tfailed: %v\n", fqn, result.Failed[fqn])
	}
	w.Flush()

	if len(failed) > 0 {
		return fmt.Errorf("%d services could not be deleted", len(failed))
	}
	return nil
}
