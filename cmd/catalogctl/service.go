package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/adapters/browser"
	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/config"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Drive service settings through the browser UI",
	Long: `Drive the service settings pages in Chrome.

Examples:
  catalogctl service delete search pw-search-service-1a2b3c
  catalogctl service test-connection --path /settings/services/databases/add-service`,
}

var serviceDeleteCmd = &cobra.Command{
	Use:   "delete <category> <service-name>",
	Short: "Hard-delete a service through the settings UI",
	Args:  cobra.ExactArgs(2),
	RunE:  runServiceDelete,
}

var serviceTestConnectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Run the connection test on an open service form",
	RunE:  runServiceTestConnection,
}

var (
	servicePath       string
	connectionTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(serviceCmd)

	serviceCmd.AddCommand(serviceDeleteCmd)
	serviceCmd.AddCommand(serviceTestConnectionCmd)

	serviceCmd.PersistentFlags().StringVar(&servicePath, "path", "", "page to open first (default: the category's service list)")
	serviceTestConnectionCmd.Flags().DurationVar(&connectionTimeout, "timeout", 0, "override ui.connection_timeout")
}

func openPage(cmd *cobra.Command, path string) (*browser.Browser, *config.Config, zerolog.Logger, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, nil, logger, err
	}
	b, err := bootstrap.LaunchBrowser(cfg.UI, logger)
	if err != nil {
		return nil, nil, logger, err
	}
	if path != "" {
		if err := b.Page().Navigate(cmd.Context(), path); err != nil {
			b.Close()
			return nil, nil, logger, err
		}
	}
	return b, cfg, logger, nil
}

func runServiceDelete(cmd *cobra.Command, args []string) error {
	category, err := parseCategory(args[0])
	if err != nil {
		return err
	}
	name := args[1]

	path := servicePath
	if path == "" {
		path = "/settings/services/" + string(category)
	}
	b, cfg, logger, err := openPage(cmd, path)
	if err != nil {
		return err
	}
	defer b.Close()

	deleter := app.NewServiceDeleter(b.Page(), bootstrap.UIConfig(cfg.UI, logger, nil))
	if err := deleter.DeleteService(cmd.Context(), category, name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", checkMark, app.DeletedToast(name))
	return nil
}

func runServiceTestConnection(cmd *cobra.Command, args []string) error {
	b, cfg, logger, err := openPage(cmd, servicePath)
	if err != nil {
		return err
	}
	defer b.Close()

	timeout := cfg.UI.ConnectionTimeout
	if connectionTimeout > 0 {
		timeout = connectionTimeout
	}
	tester := app.NewConnectionTester(b.Page(), timeout, bootstrap.UIConfig(cfg.UI, logger, nil))
	result, err := tester.Test(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s connection test: %s\n", checkMark, result)
	return nil
}
