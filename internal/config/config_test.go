package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/cookbook/internal/config"
	"github.com/JaimeStill/cookbook/pkg/docstore"
	"github.com/JaimeStill/cookbook/pkg/storage"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080

[database]
host = "localhost"
port = 5432
name = "cookbook"
user = "cookbook"
password = "cookbook"

[documents]
driver = "postgres"

[events]
url = ""

[storage]
provider = "s3"

[storage.s3]
bucket = "recipe-images"
region = "us-east-1"

[api]
base_path = "/api"
max_upload_size = "5MB"

[api.pagination]
default_page_size = 3
max_page_size = 50
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "db.staging"

[events]
url = "nats://nats.staging:4222"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Documents.Driver != docstore.DriverPostgres {
		t.Errorf("documents driver: got %s", cfg.Documents.Driver)
	}
	if cfg.Storage.Provider != storage.ProviderS3 || cfg.Storage.S3.Bucket != "recipe-images" {
		t.Errorf("storage: got %+v", cfg.Storage)
	}
	if cfg.API.MaxUploadSizeBytes() != 5<<20 {
		t.Errorf("max upload: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 3 || cfg.API.Pagination.MaxPageSize != 50 {
		t.Errorf("pagination: got %+v", cfg.API.Pagination)
	}
	if cfg.Events.URL != "" {
		t.Errorf("events url: got %q, want in-process bus", cfg.Events.URL)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.staging.toml", overlayConfig)
	t.Chdir(dir)
	t.Setenv(config.EnvCookbookEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "staging" {
		t.Errorf("env: got %s", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090 from overlay", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.staging" || cfg.Database.Port != 5432 {
		t.Errorf("database: got %s:%d", cfg.Database.Host, cfg.Database.Port)
	}
	if cfg.Events.URL != "nats://nats.staging:4222" {
		t.Errorf("events url: got %q", cfg.Events.URL)
	}
}

func TestLoadEnvVarOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	t.Chdir(dir)

	t.Setenv("COOKBOOK_VERSION", "2.0.0")
	t.Setenv("COOKBOOK_SERVER_PORT", "3000")
	t.Setenv("COOKBOOK_API_AUTH_TOKEN", "secret")
	t.Setenv("COOKBOOK_PAGINATION_DEFAULT_PAGE_SIZE", "10")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s", cfg.Version)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("server port: got %d", cfg.Server.Port)
	}
	if cfg.API.AuthToken != "secret" {
		t.Errorf("auth token: got %q", cfg.API.AuthToken)
	}
	if cfg.API.Pagination.DefaultPageSize != 10 {
		t.Errorf("default page size: got %d", cfg.API.Pagination.DefaultPageSize)
	}
}

func TestLoadMemoryDriverWithoutFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("COOKBOOK_DOCUMENTS_DRIVER", "memory")
	t.Setenv("COOKBOOK_STORAGE_PROVIDER", "none")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.UsesDatabase() {
		t.Error("memory driver should not require the database")
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.WriteTimeoutDuration() != 0 {
		t.Errorf("write timeout: got %v, want disabled", cfg.Server.WriteTimeoutDuration())
	}
	if cfg.API.Pagination.DefaultPageSize != 3 {
		t.Errorf("default page size: got %d, want 3", cfg.API.Pagination.DefaultPageSize)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres without database name",
			env:     map[string]string{"COOKBOOK_STORAGE_PROVIDER": "none"},
			wantErr: "database",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"COOKBOOK_DOCUMENTS_DRIVER": "mongo", "COOKBOOK_STORAGE_PROVIDER": "none"},
			wantErr: "documents",
		},
		{
			name:    "bad upload size",
			env:     map[string]string{"COOKBOOK_DOCUMENTS_DRIVER": "memory", "COOKBOOK_STORAGE_PROVIDER": "none", "COOKBOOK_API_MAX_UPLOAD_SIZE": "lots"},
			wantErr: "max_upload_size",
		},
		{
			name:    "bad shutdown timeout",
			env:     map[string]string{"COOKBOOK_SHUTDOWN_TIMEOUT": "soon"},
			wantErr: "shutdown_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
