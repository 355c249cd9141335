// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "catalogctl.yaml"

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Stub      StubConfig      `yaml:"stub"`
	Journal   JournalConfig   `yaml:"journal"`
	UI        UIConfig        `yaml:"ui"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures access to the catalog API.
type ServerConfig struct {
	BaseURL  string            `yaml:"base_url"`
	Timeout  time.Duration     `yaml:"timeout"`
	Token    string            `yaml:"token,omitempty"`    // used as is when set
	Email    string            `yaml:"email,omitempty"`    // login when no token is set
	Password string            `yaml:"password,omitempty"` // plain text, encoded on login
	Headers  map[string]string `yaml:"headers,omitempty"`
}

// StubConfig configures the stub catalog server.
type StubConfig struct {
	Host          string               `yaml:"host"`
	Port          int                  `yaml:"port"`
	ReadTimeout   time.Duration        `yaml:"read_timeout"`
	WriteTimeout  time.Duration        `yaml:"write_timeout"`
	AdminEmail    string               `yaml:"admin_email"`
	AdminPassword string               `yaml:"admin_password"`
	JWTSecret     string               `yaml:"jwt_secret,omitempty"` // random per process when empty
	TokenExpiry   time.Duration        `yaml:"token_expiry"`
	DisableAuth   bool                 `yaml:"disable_auth"`
	Pipelines     []StubPipelineConfig `yaml:"pipelines,omitempty"`
}

// StubPipelineConfig seeds an ingestion pipeline into the stub.
type StubPipelineConfig struct {
	ID       string `yaml:"id"`
	Service  string `yaml:"service"`
	Outcome  string `yaml:"outcome"`   // terminal state reported when the run ends
	RunPolls int    `yaml:"run_polls"` // status reads spent running
}

// JournalConfig configures the scenario journal.
type JournalConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "memory"
	DSN    string `yaml:"dsn"`
}

// UIConfig configures the browser driven workflows.
type UIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Headless          bool          `yaml:"headless"`
	ChromePath        string        `yaml:"chrome_path,omitempty"`
	Width             int           `yaml:"width"`
	Height            int           `yaml:"height"`
	StepTimeout       time.Duration `yaml:"step_timeout"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

// IngestionConfig configures pipeline runs.
type IngestionConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
//
// Environment variables:
//
//	CATALOGCTL_SERVER_URL        - Catalog API URL (default: http://localhost:8585)
//	CATALOGCTL_SERVER_TOKEN      - Bearer token for the catalog API
//	CATALOGCTL_SERVER_EMAIL      - Login email when no token is set
//	CATALOGCTL_SERVER_PASSWORD   - Login password
//	CATALOGCTL_STUB_HOST         - Stub server host (default: 127.0.0.1)
//	CATALOGCTL_STUB_PORT         - Stub server port (default: 8585)
//	CATALOGCTL_STUB_JWT_SECRET   - Stub token signing secret
//	CATALOGCTL_JOURNAL_DRIVER    - Journal driver: sqlite or memory (default: sqlite)
//	CATALOGCTL_JOURNAL_DSN       - Journal database path (default: catalogctl.db)
//	CATALOGCTL_UI_URL            - Catalog UI URL (default: server URL)
//	CATALOGCTL_UI_HEADLESS       - Run the browser headless (default: true)
//	CATALOGCTL_UI_STEP_TIMEOUT   - Timeout per UI step (default: 30s)
//	CATALOGCTL_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
//	CATALOGCTL_LOG_FORMAT        - Log format: json or console (default: console)
//	CATALOGCTL_METRICS_ENABLED   - Enable /metrics on the stub (default: false)
func LoadFromEnv() (*Config, error) {
	cfg := Config{UI: UIConfig{Headless: true}}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback loads path when it exists and the environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return LoadFromEnv()
}

// applyEnvOverrides applies CATALOGCTL_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Server configuration
	if v := os.Getenv("CATALOGCTL_SERVER_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("CATALOGCTL_SERVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.Timeout = d
		}
	}
	if v := os.Getenv("CATALOGCTL_SERVER_TOKEN"); v != "" {
		cfg.Server.Token = v
	}
	if v := os.Getenv("CATALOGCTL_SERVER_EMAIL"); v != "" {
		cfg.Server.Email = v
	}
	if v := os.Getenv("CATALOGCTL_SERVER_PASSWORD"); v != "" {
		cfg.Server.Password = v
	}

	// Stub configuration
	if v := os.Getenv("CATALOGCTL_STUB_HOST"); v != "" {
		cfg.Stub.Host = v
	}
	if v := os.Getenv("CATALOGCTL_STUB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Stub.Port = port
		}
	}
	if v := os.Getenv("CATALOGCTL_STUB_JWT_SECRET"); v != "" {
		cfg.Stub.JWTSecret = v
	}
	if v := os.Getenv("CATALOGCTL_STUB_ADMIN_EMAIL"); v != "" {
		cfg.Stub.AdminEmail = v
	}
	if v := os.Getenv("CATALOGCTL_STUB_ADMIN_PASSWORD"); v != "" {
		cfg.Stub.AdminPassword = v
	}
	if v := os.Getenv("CATALOGCTL_STUB_DISABLE_AUTH"); v != "" {
		cfg.Stub.DisableAuth = parseBool(v)
	}

	// Journal configuration
	if v := os.Getenv("CATALOGCTL_JOURNAL_DRIVER"); v != "" {
		cfg.Journal.Driver = v
	}
	if v := os.Getenv("CATALOGCTL_JOURNAL_DSN"); v != "" {
		cfg.Journal.DSN = v
	}

	// UI configuration
	if v := os.Getenv("CATALOGCTL_UI_URL"); v != "" {
		cfg.UI.BaseURL = v
	}
	if v := os.Getenv("CATALOGCTL_UI_HEADLESS"); v != "" {
		cfg.UI.Headless = parseBool(v)
	}
	if v := os.Getenv("CATALOGCTL_UI_CHROME_PATH"); v != "" {
		cfg.UI.ChromePath = v
	}
	if v := os.Getenv("CATALOGCTL_UI_STEP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.UI.StepTimeout = d
		}
	}
	if v := os.Getenv("CATALOGCTL_UI_CONNECTION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.UI.ConnectionTimeout = d
		}
	}

	// Logging configuration
	if v := os.Getenv("CATALOGCTL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("CATALOGCTL_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("CATALOGCTL_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("CATALOGCTL_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8585"
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	if cfg.Stub.Host == "" {
		cfg.Stub.Host = "127.0.0.1"
	}
	if cfg.Stub.Port == 0 {
		cfg.Stub.Port = 8585
	}
	if cfg.Stub.ReadTimeout == 0 {
		cfg.Stub.ReadTimeout = 30 * time.Second
	}
	if cfg.Stub.WriteTimeout == 0 {
		cfg.Stub.WriteTimeout = 60 * time.Second
	}
	if cfg.Stub.AdminEmail == "" {
		cfg.Stub.AdminEmail = "admin@open-metadata.org"
	}
	if cfg.Stub.AdminPassword == "" {
		cfg.Stub.AdminPassword = "admin"
	}
	if cfg.Stub.TokenExpiry == 0 {
		cfg.Stub.TokenExpiry = time.Hour
	}
	for i := range cfg.Stub.Pipelines {
		if cfg.Stub.Pipelines[i].Outcome == "" {
			cfg.Stub.Pipelines[i].Outcome = "success"
		}
	}

	if cfg.Journal.Driver == "" {
		cfg.Journal.Driver = "sqlite"
	}
	if cfg.Journal.DSN == "" {
		cfg.Journal.DSN = "catalogctl.db"
	}

	if cfg.UI.BaseURL == "" {
		cfg.UI.BaseURL = cfg.Server.BaseURL
	}
	if cfg.UI.Width == 0 {
		cfg.UI.Width = 1280
	}
	if cfg.UI.Height == 0 {
		cfg.UI.Height = 720
	}
	if cfg.UI.StepTimeout == 0 {
		cfg.UI.StepTimeout = 30 * time.Second
	}
	if cfg.UI.ConnectionTimeout == 0 {
		cfg.UI.ConnectionTimeout = 150 * time.Second
	}

	if cfg.Ingestion.Timeout == 0 {
		cfg.Ingestion.Timeout = time.Hour
	}
	if cfg.Ingestion.PollInterval == 0 {
		cfg.Ingestion.PollInterval = 10 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	if err := validateURL("server.base_url", cfg.Server.BaseURL); err != nil {
		return err
	}
	if err := validateURL("ui.base_url", cfg.UI.BaseURL); err != nil {
		return err
	}

	if cfg.Stub.Port < 0 || cfg.Stub.Port > 65535 {
		return fmt.Errorf("stub.port must be between 0 and 65535, got %d", cfg.Stub.Port)
	}
	validOutcomes := map[string]bool{"success": true, "failed": true, "partialSuccess": true}
	for i, p := range cfg.Stub.Pipelines {
		if p.ID == "" {
			return fmt.Errorf("stub.pipelines[%d].id is required", i)
		}
		if !validOutcomes[p.Outcome] {
			return fmt.Errorf("stub.pipelines[%d].outcome must be success, failed or partialSuccess, got %q", i, p.Outcome)
		}
	}

	validDrivers := map[string]bool{"sqlite": true, "memory": true}
	if !validDrivers[cfg.Journal.Driver] {
		return fmt.Errorf("journal.driver must be 'sqlite' or 'memory', got %q", cfg.Journal.Driver)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if cfg.Ingestion.PollInterval > cfg.Ingestion.Timeout {
		return fmt.Errorf("ingestion.poll_interval must not exceed ingestion.timeout")
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}
