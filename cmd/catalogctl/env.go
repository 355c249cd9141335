package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/artpar/catalogctl/adapters/remote"
	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/config"
)

// scenarioEnv is what API-driven commands share: config, logger, an
// authenticated catalog client and the journal.
type scenarioEnv struct {
	cfg     *config.Config
	logger  zerolog.Logger
	client  *remote.Catalog
	journal bootstrap.Journal
}

func openScenarioEnv(cmd *cobra.Command) (*scenarioEnv, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	client, err := bootstrap.NewCatalog(cmd.Context(), cfg.Server, logger, nil)
	if err != nil {
		return nil, err
	}
	j, err := bootstrap.OpenJournal(cmd.Context(), cfg.Journal)
	if err != nil {
		return nil, err
	}
	return &scenarioEnv{cfg: cfg, logger: logger, client: client, journal: j}, nil
}

func (e *scenarioEnv) Close() error {
	return e.journal.Close()
}
