package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/adapters/idgen"
	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/patch"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Drive catalog fixtures through the REST API",
	Long: `Create search index fixtures and run them through their lifecycle.

Every created service is recorded in the journal so that "catalogctl sweep"
can delete it if the run is interrupted.

Examples:
  catalogctl entity create
  catalogctl entity lifecycle --description "patched"
  catalogctl entity lifecycle --visit`,
}

var entityCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a search service and index and keep them",
	RunE:  runEntityCreate,
}

var entityLifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Create, patch, optionally visit, and delete a search index",
	RunE:  runEntityLifecycle,
}

var (
	entityScenario    string
	entityDescription string
	entityVisit       bool
)

func init() {
	rootCmd.AddCommand(entityCmd)

	entityCmd.AddCommand(entityCreateCmd)
	entityCmd.AddCommand(entityLifecycleCmd)

	entityCmd.PersistentFlags().StringVar(&entityScenario, "scenario", "", "scenario id recorded in the journal (default: generated)")
	entityLifecycleCmd.Flags().StringVar(&entityDescription, "description", "Updated description", "description set by the patch step")
	entityLifecycleCmd.Flags().BoolVar(&entityVisit, "visit", false, "open the entity page in the browser before deleting")
}

// newSearchIndex loads config, opens the journal and builds a catalog client
// and a search index fixture bound to both.
func newSearchIndex(cmd *cobra.Command) (*app.EntityObject, *scenarioEnv, error) {
	env, err := openScenarioEnv(cmd)
	if err != nil {
		return nil, nil, err
	}
	scenario := entityScenario
	if scenario == "" {
		scenario = idgen.UUID{}.New()
	}
	e := app.NewSearchIndex(idgen.Short{},
		app.WithJournal(env.journal, scenario),
		app.WithLogger(env.logger),
	)
	return e, env, nil
}

func runEntityCreate(cmd *cobra.Command, args []string) error {
	e, env, err := newSearchIndex(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if _, err := e.Create(cmd.Context(), env.client); err != nil {
		return err
	}
	snap := e.Get()
	fmt.Fprintf(cmd.OutOrStdout(), "service: %s\n", snap.Service.FQN())
	fmt.Fprintf(cmd.OutOrStdout(), "entity:  %s\n", snap.Entity.FQN())
	return nil
}

func runEntityLifecycle(cmd *cobra.Command, args []string) error {
	e, env, err := newSearchIndex(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if _, err := e.Create(ctx, env.client); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s created %s\n", checkMark, e.Get().Entity.FQN())

	patched, err := e.Patch(ctx, env.client, patch.Patch{patch.Replace("/description", entityDescription)})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s patched description to %q\n", checkMark, patched.Description())

	if entityVisit {
		b, err := bootstrap.LaunchBrowser(env.cfg.UI, env.logger)
		if err != nil {
			return err
		}
		defer b.Close()

		page := b.Page()
		if err := page.Navigate(ctx, "/"); err != nil {
			return err
		}
		if err := e.Visit(ctx, page); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s visited entity page\n", checkMark)
	}

	deleted, err := e.Delete(ctx, env.client)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s deleted %s\n", checkMark, e.Get().Service.FQN())
	return printJSON(cmd, deleted.Entity)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseCategory accepts either a category ("search") or its endpoint
// ("searchServices").
func parseCategory(s string) (catalog.Category, error) {
	if c := catalog.Category(s); c.IsKnown() {
		return c, nil
	}
	if c, ok := catalog.CategoryForEndpoint(s); ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown service category %q", s)
}
