package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration before a run",
	Long: `Validate the catalogctl configuration file.

Checks:
  - YAML syntax is valid
  - URLs, durations and enums are valid
  - Catalog server is reachable (optional)
  - Journal is writable (optional)

Examples:
  catalogctl validate
  catalogctl validate --config ci.yaml --check-server`,
	RunE: runValidate,
}

var (
	validateCheckServer  bool
	validateCheckJournal bool
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateCheckServer, "check-server", false, "check if the catalog server is reachable")
	validateCmd.Flags().BoolVar(&validateCheckJournal, "check-journal", false, "check if the journal opens and migrates")
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config syntax valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config syntax valid\n", checkMark)

	fmt.Fprintf(out, "  %s Server: %s\n", checkMark, cfg.Server.BaseURL)
	fmt.Fprintf(out, "  %s UI: %s (headless=%t)\n", checkMark, cfg.UI.BaseURL, cfg.UI.Headless)
	fmt.Fprintf(out, "  %s Journal: %s (%s)\n", checkMark, cfg.Journal.DSN, cfg.Journal.Driver)
	fmt.Fprintf(out, "  %s Stub pipelines: %d\n", checkMark, len(cfg.Stub.Pipelines))

	if validateCheckServer {
		if err := checkServerReachable(cmd.Context(), cfg.Server.BaseURL); err != nil {
			fmt.Fprintf(out, "  %s Server reachable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Server reachable\n", checkMark)
		}
	}

	if validateCheckJournal {
		if err := checkJournal(cmd.Context(), cfg.Journal); err != nil {
			fmt.Fprintf(out, "  %s Journal writable\n", crossMark)
			fmt.Fprintf(out, "      Error: %v\n", err)
		} else {
			fmt.Fprintf(out, "  %s Journal writable\n", checkMark)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration is valid.")
	return nil
}

func checkServerReachable(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func checkJournal(ctx context.Context, cfg config.JournalConfig) error {
	j, err := bootstrap.OpenJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer j.Close()
	_, err = j.Pending(ctx)
	return err
}

const (
	checkMark = "\033[32m✓\033[0m"
	crossMark = "\033[31m✗\033[0m"
)
