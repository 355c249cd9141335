package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/domain/navigation"
)

var navCmd = &cobra.Command{
	Use:   "nav",
	Short: "Inspect the application shell and sidebar navigation",
}

var navSelectedCmd = &cobra.Command{
	Use:   "selected <path>",
	Short: "Print the sidebar keys highlighted for a location path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sidebar := app.NewSidebar(nil, app.SidebarConfig{})
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(sidebar.SelectedKeys(args[0]), " "))
		return nil
	},
}

var navShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Load a session's configuration and print its layout and sidebar",
	Long: `Fetch the limits and lineage settings for a session, resolve the
persona navigation, and print the resulting layout and sidebar tree.

Examples:
  catalogctl nav show --user u1
  catalogctl nav show --user u1 --persona DataSteward --language pr-PR`,
	RunE: runNavShow,
}

var (
	navUserID   string
	navPersona  string
	navLanguage string
)

func init() {
	rootCmd.AddCommand(navCmd)

	navCmd.AddCommand(navSelectedCmd)
	navCmd.AddCommand(navShowCmd)

	navShowCmd.Flags().StringVar(&navUserID, "user", "cli", "session user id")
	navShowCmd.Flags().StringVar(&navPersona, "persona", "", "persona fully qualified name")
	navShowCmd.Flags().StringVar(&navLanguage, "language", "en-US", "UI language")
}

type navReport struct {
	Config  appconfig.Config  `json:"config"`
	Layout  appconfig.Layout  `json:"layout"`
	Sidebar []navigation.Item `json:"sidebar"`
	Lower   []navigation.Item `json:"lower"`
}

func runNavShow(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := bootstrap.NewCatalog(cmd.Context(), cfg.Server, logger, nil)
	if err != nil {
		return err
	}

	sidebar := app.NewSidebar(client, app.SidebarConfig{Logger: logger})
	shell := app.NewShell(client, sidebar, logger)
	shell.OnSession(cmd.Context(), appconfig.User{
		ID:         navUserID,
		PersonaFQN: navPersona,
		Language:   navLanguage,
	})

	return printJSON(cmd, navReport{
		Config:  shell.Config(),
		Layout:  shell.Layout(),
		Sidebar: sidebar.Items(),
		Lower:   sidebar.LowerItems(),
	})
}
