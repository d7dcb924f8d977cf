// Package config loads the cookbook service configuration from config.toml,
// an optional config.<env>.toml overlay, and COOKBOOK_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/cookbook/pkg/database"
	"github.com/JaimeStill/cookbook/pkg/docstore"
	"github.com/JaimeStill/cookbook/pkg/events"
	"github.com/JaimeStill/cookbook/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCookbookEnv             = "COOKBOOK_ENV"
	EnvCookbookShutdownTimeout = "COOKBOOK_SHUTDOWN_TIMEOUT"
	EnvCookbookVersion         = "COOKBOOK_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "COOKBOOK_DB_HOST",
	Port:            "COOKBOOK_DB_PORT",
	Name:            "COOKBOOK_DB_NAME",
	User:            "COOKBOOK_DB_USER",
	Password:        "COOKBOOK_DB_PASSWORD",
	SSLMode:         "COOKBOOK_DB_SSL_MODE",
	MaxOpenConns:    "COOKBOOK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "COOKBOOK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "COOKBOOK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "COOKBOOK_DB_CONN_TIMEOUT",
}

var documentsEnv = &docstore.Env{
	Driver: "COOKBOOK_DOCUMENTS_DRIVER",
}

var eventsEnv = &events.Env{
	URL: "COOKBOOK_EVENTS_URL",
}

var storageEnv = &storage.Env{
	Provider:              "COOKBOOK_STORAGE_PROVIDER",
	PublicURL:             "COOKBOOK_STORAGE_PUBLIC_URL",
	AzureContainerName:    "COOKBOOK_STORAGE_CONTAINER_NAME",
	AzureConnectionString: "COOKBOOK_STORAGE_CONNECTION_STRING",
	AzureAccountURL:       "COOKBOOK_STORAGE_ACCOUNT_URL",
	S3Bucket:              "COOKBOOK_STORAGE_S3_BUCKET",
	S3Region:              "COOKBOOK_STORAGE_S3_REGION",
	S3Endpoint:            "COOKBOOK_STORAGE_S3_ENDPOINT",
}

// Config is the root configuration for the cookbook service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Documents       docstore.Config `toml:"documents"`
	Events          events.Config   `toml:"events"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the COOKBOOK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCookbookEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// UsesDatabase reports whether the configured document driver needs PostgreSQL.
func (c *Config) UsesDatabase() bool {
	return c.Documents.Driver == docstore.DriverPostgres
}

// Load reads config.toml when present, merges the COOKBOOK_ENV overlay, and
// finalizes every section. Without config files, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Documents.Merge(&overlay.Documents)
	c.Events.Merge(&overlay.Events)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides, and validation to every
// section. Database settings are only validated when the postgres driver is selected.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Documents.Finalize(documentsEnv); err != nil {
		return fmt.Errorf("documents: %w", err)
	}
	if c.UsesDatabase() {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Events.Finalize(eventsEnv); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCookbookShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCookbookVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvCookbookEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
