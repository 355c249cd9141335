package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/artpar/catalogctl/adapters/clock"
	"github.com/artpar/catalogctl/adapters/metrics"
	"github.com/artpar/catalogctl/app"
	"github.com/artpar/catalogctl/bootstrap"
	"github.com/artpar/catalogctl/config"
	"github.com/artpar/catalogctl/domain/catalog"
	"github.com/artpar/catalogctl/domain/ingestion"
	"github.com/artpar/catalogctl/domain/journal"
)

const stubConfig = `
stub:
  admin_email: "admin@open-metadata.org"
  admin_password: "admin"
  jwt_secret: "test-secret"
  pipelines:
    - id: "pipe-ok"
      service: "svc-1"
      run_polls: 1
journal:
  driver: "memory"
ingestion:
  timeout: 5s
  poll_interval: 10ms
`

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := bootstrap.SetupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info().Msg("dropped")
	logger.Warn().Str("k", "v").Msg("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info line written at warn level: %s", out)
	}
	var line map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &line); err != nil {
		t.Fatalf("json output: %v (%s)", err, out)
	}
	if line["message"] != "kept" || line["k"] != "v" {
		t.Errorf("line = %v", line)
	}
}

func TestSetupLogger_BadLevelDefaultsToInfo(t *testing.T) {
	logger := bootstrap.SetupLogger(config.LoggingConfig{Level: "loud", Format: "console"}, &bytes.Buffer{})
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
}

func TestOpenJournal(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "journal.db")

	for _, cfg := range []config.JournalConfig{
		{Driver: "memory"},
		{Driver: "sqlite", DSN: dsn},
	} {
		t.Run(cfg.Driver, func(t *testing.T) {
			j, err := bootstrap.OpenJournal(ctx, cfg)
			if err != nil {
				t.Fatalf("OpenJournal error: %v", err)
			}
			defer j.Close()

			if err := j.Record(ctx, journal.Entry{ScenarioID: "s1", Category: catalog.CategorySearch, ServiceFQN: "svc-1", CreatedAt: time.Now()}); err != nil {
				t.Fatalf("Record error: %v", err)
			}
			pending, err := j.Pending(ctx)
			if err != nil {
				t.Fatalf("Pending error: %v", err)
			}
			if len(pending) != 1 || pending[0].ServiceFQN != "svc-1" {
				t.Errorf("Pending = %+v", pending)
			}
		})
	}
}

func TestOpenJournal_UnknownDriver(t *testing.T) {
	if _, err := bootstrap.OpenJournal(context.Background(), config.JournalConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRunConfig(t *testing.T) {
	got := bootstrap.RunConfig(config.IngestionConfig{Timeout: time.Minute, PollInterval: time.Second}, true)
	want := ingestion.RunConfig{WaitForCompletion: true, Timeout: time.Minute, PollInterval: time.Second}
	if got != want {
		t.Errorf("RunConfig = %+v, want %+v", got, want)
	}
}

func TestStub_LoginAndRunPipeline(t *testing.T) {
	cfg := loadConfig(t, stubConfig)
	stub, err := bootstrap.NewStub(cfg, zerolog.Nop(), bootstrap.StubOptions{HashCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewStub error: %v", err)
	}
	srv := httptest.NewServer(stub.HTTPServer.Handler)
	defer srv.Close()

	ctx := context.Background()
	server := config.ServerConfig{BaseURL: srv.URL, Email: "admin@open-metadata.org", Password: "admin", Timeout: 5 * time.Second}
	client, err := bootstrap.NewCatalog(ctx, server, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("NewCatalog error: %v", err)
	}
	if client.Client().Token() == "" {
		t.Fatal("no token after login")
	}

	runner := app.NewPipelineRunner(client, clock.Real{}, zerolog.Nop())
	run, err := runner.Run(ctx, "pipe-ok", bootstrap.RunConfig(cfg.Ingestion, true))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if run.State != ingestion.StateSuccess {
		t.Errorf("State = %s, want success", run.State)
	}
}

func TestStub_WrongPassword(t *testing.T) {
	cfg := loadConfig(t, stubConfig)
	stub, err := bootstrap.NewStub(cfg, zerolog.Nop(), bootstrap.StubOptions{HashCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewStub error: %v", err)
	}
	srv := httptest.NewServer(stub.HTTPServer.Handler)
	defer srv.Close()

	server := config.ServerConfig{BaseURL: srv.URL, Email: "admin@open-metadata.org", Password: "nope"}
	if _, err := bootstrap.NewCatalog(context.Background(), server, zerolog.Nop(), nil); err == nil {
		t.Error("expected login error")
	}
}

func TestStub_MetricsEndpoint(t *testing.T) {
	cfg := loadConfig(t, stubConfig)
	reg := prometheus.NewRegistry()
	stub, err := bootstrap.NewStub(cfg, zerolog.Nop(), bootstrap.StubOptions{
		Metrics:  metrics.NewWithRegistry(reg),
		Handler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HashCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("NewStub error: %v", err)
	}

	rec := httptest.NewRecorder()
	stub.HTTPServer.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("GET /metrics = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "catalogctl_config_reloads_total") {
		t.Errorf("metrics body missing catalogctl series:\n%s", rec.Body.String())
	}
}

func TestStub_WatchReseedsPipelines(t *testing.T) {
	path := writeConfig(t, stubConfig)
	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewHolder error: %v", err)
	}
	defer h.Stop()

	stub, err := bootstrap.NewStub(h.Get(), zerolog.Nop(), bootstrap.StubOptions{HashCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewStub error: %v", err)
	}
	stub.Watch(h)

	if _, err := stub.Store.PipelineStatus("pipe-new"); err == nil {
		t.Fatal("pipe-new should not exist before reload")
	}

	updated := strings.Replace(stubConfig, `"pipe-ok"`, `"pipe-new"`, 1)
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if _, err := stub.Store.PipelineStatus("pipe-new"); err != nil {
		t.Errorf("pipe-new after reload: %v", err)
	}
}

func TestStub_RunStopsOnCancel(t *testing.T) {
	cfg := loadConfig(t, stubConfig)
	stub, err := bootstrap.NewStub(cfg, zerolog.Nop(), bootstrap.StubOptions{HashCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewStub error: %v", err)
	}
	stub.HTTPServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- stub.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func loadConfig(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := config.Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalogctl.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
