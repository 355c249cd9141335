// Package bootstrap wires configuration into adapters and app services.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/catalogctl/adapters/auth"
	"github.com/artpar/catalogctl/adapters/browser"
	"github.com/artpar/catalogctl/adapters/clock"
	stubhttp "github.com/artpar/catalogctl/adapters/http"
	"github.com/artpar/catalogctl/adapters/idgen"
	"github.com/artpar/catalogctl/adapters/memory"
	"github.com/artpar/catalogctl/adapters/metrics"
	"github.com/artpar/catalogctl/adapters/remote"
	"github.com/artpar/catalogctl/adapters/sqlite"
	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/config"
	"github.com/artpar/catalogctl/domain/appconfig"
	"github.com/artpar/catalogctl/domain/ingestion"
	"github.com/artpar/catalogctl/ports"
)

// SetupLogger builds the process logger from the logging config.
func SetupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// NewCatalog creates a catalog API client. It logs in with the configured
// credentials when no token is set.
func NewCatalog(ctx context.Context, cfg config.ServerConfig, logger zerolog.Logger, m *metrics.Collector) (*remote.Catalog, error) {
	client := remote.NewClient(remote.ClientConfig{
		BaseURL: cfg.BaseURL,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
		Headers: cfg.Headers,
		Logger:  logger,
		Metrics: m,
	})
	if cfg.Token == "" && cfg.Email != "" {
		if err := client.Login(ctx, cfg.Email, cfg.Password); err != nil {
			return nil, err
		}
	}
	return remote.NewCatalog(client), nil
}

// Journal is a scenario journal and its closer.
type Journal struct {
	ports.Journal
	close func() error
}

// Close releases the journal storage.
func (j Journal) Close() error {
	if j.close == nil {
		return nil
	}
	return j.close()
}

// OpenJournal opens the configured journal, migrating sqlite storage.
func OpenJournal(ctx context.Context, cfg config.JournalConfig) (Journal, error) {
	switch cfg.Driver {
	case "memory":
		return Journal{Journal: memory.NewJournal()}, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return Journal{}, fmt.Errorf("open journal: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return Journal{}, fmt.Errorf("migrate journal: %w", err)
		}
		return Journal{Journal: sqlite.NewJournalStore(db), close: db.Close}, nil
	default:
		return Journal{}, fmt.Errorf("unknown journal driver %q", cfg.Driver)
	}
}

// LaunchBrowser starts Chrome for the UI workflows.
func LaunchBrowser(cfg config.UIConfig, logger zerolog.Logger) (*browser.Browser, error) {
	return browser.Launch(browser.Options{
		BaseURL:  cfg.BaseURL,
		Headless: cfg.Headless,
		ExecPath: cfg.ChromePath,
		Width:    cfg.Width,
		Height:   cfg.Height,
		Logger:   logger,
	})
}

// UIConfig derives the app workflow settings.
func UIConfig(cfg config.UIConfig, logger zerolog.Logger, m *metrics.Collector) app.UIConfig {
	ui := app.UIConfig{StepTimeout: cfg.StepTimeout, Logger: logger}
	if m != nil {
		ui.Metrics = m
	}
	return ui
}

// RunConfig derives pipeline run settings.
func RunConfig(cfg config.IngestionConfig, wait bool) ingestion.RunConfig {
	return ingestion.RunConfig{
		WaitForCompletion: wait,
		Timeout:           cfg.Timeout,
		PollInterval:      cfg.PollInterval,
	}
}

// -----------------------------------------------------------------------------
// Stub server
// -----------------------------------------------------------------------------

// Stub is a running stub catalog server.
type Stub struct {
	Logger     zerolog.Logger
	Store      *memory.Catalog
	Metrics    *metrics.Collector
	HTTPServer *http.Server
}

// StubOptions tunes NewStub for embedding and tests.
type StubOptions struct {
	Metrics  *metrics.Collector // overrides cfg.Metrics.Enabled
	Handler  http.Handler       // metrics handler, defaults to promhttp.Handler
	HashCost int                // bcrypt cost, 0 for the default
}

// NewStub builds the stub catalog server from cfg.
func NewStub(cfg *config.Config, logger zerolog.Logger, opts StubOptions) (*Stub, error) {
	s := &Stub{
		Logger:  logger,
		Store:   memory.NewCatalog(idgen.UUID{}, clock.Real{}),
		Metrics: opts.Metrics,
	}
	if s.Metrics == nil && cfg.Metrics.Enabled {
		s.Metrics = metrics.New()
	}

	s.Store.SetLimits(appconfig.Limits{Enable: false})
	s.Store.SetSetting(appconfig.SettingLineage, appconfig.LineageSettings{
		UpstreamDepth:   2,
		DownstreamDepth: 2,
		LineageLayer:    "EntityLineage",
	})
	s.SeedPipelines(cfg.Stub.Pipelines)

	routerCfg := stubhttp.StubConfig{
		Store:   s.Store,
		Metrics: s.Metrics,
		Logger:  logger,
		Timeout: cfg.Stub.WriteTimeout,
	}
	if s.Metrics != nil {
		routerCfg.MetricsHandler = opts.Handler
		if routerCfg.MetricsHandler == nil {
			routerCfg.MetricsHandler = promhttp.Handler()
		}
	}
	if !cfg.Stub.DisableAuth {
		creds := auth.NewCredentials(auth.NewBcrypt(opts.HashCost))
		admin := auth.Account{ID: "admin", Email: cfg.Stub.AdminEmail, Name: "admin", IsAdmin: true}
		if err := creds.Add(admin, cfg.Stub.AdminPassword); err != nil {
			return nil, fmt.Errorf("add stub admin: %w", err)
		}
		routerCfg.Accounts = creds
		routerCfg.Tokens = auth.NewTokenService(cfg.Stub.JWTSecret, cfg.Stub.TokenExpiry)
	}

	s.HTTPServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Stub.Host, strconv.Itoa(cfg.Stub.Port)),
		Handler:      stubhttp.NewStubRouter(routerCfg),
		ReadTimeout:  cfg.Stub.ReadTimeout,
		WriteTimeout: cfg.Stub.WriteTimeout,
	}
	return s, nil
}

// SeedPipelines registers the configured pipelines, replacing runs in progress.
func (s *Stub) SeedPipelines(pipelines []config.StubPipelineConfig) {
	for _, p := range pipelines {
		s.Store.PutPipeline(p.ID, p.Service, ingestion.State(p.Outcome), p.RunPolls)
	}
	if len(pipelines) > 0 {
		s.Logger.Info().Int("count", len(pipelines)).Msg("stub pipelines seeded")
	}
}

// Watch applies reloadable settings from h.
func (s *Stub) Watch(h *config.Holder) {
	h.OnChange(func(cfg *config.Config) {
		s.SeedPipelines(cfg.Stub.Pipelines)
	})
	if s.Metrics != nil {
		h.OnReload(s.Metrics.ConfigReloaded)
	}
}

// Run serves until ctx is done or the process is interrupted.
func (s *Stub) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", s.HTTPServer.Addr).Msg("starting stub catalog server")
		if err := s.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.Logger.Info().Msg("shutting down")
	}
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Stub) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.HTTPServer.Shutdown(ctx); err != nil {
		s.Logger.Error().Err(err).Msg("http server shutdown error")
		return err
	}
	s.Logger.Info().Msg("shutdown complete")
	return nil
}
