package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/cookbook/pkg/formatting"
	"github.com/JaimeStill/cookbook/pkg/middleware"
	"github.com/JaimeStill/cookbook/pkg/pagination"
)

const (
	EnvAPIBasePath      = "COOKBOOK_API_BASE_PATH"
	EnvAPIMaxUploadSize = "COOKBOOK_API_MAX_UPLOAD_SIZE"
	EnvAPIAuthToken     = "COOKBOOK_API_AUTH_TOKEN"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "COOKBOOK_CORS_ENABLED",
	Origins:          "COOKBOOK_CORS_ORIGINS",
	AllowedMethods:   "COOKBOOK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "COOKBOOK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "COOKBOOK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "COOKBOOK_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "COOKBOOK_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "COOKBOOK_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, auth, CORS, and pagination settings.
// An empty AuthToken signs in every caller.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	AuthToken     string                `toml:"auth_token"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.AuthToken != "" {
		c.AuthToken = overlay.AuthToken
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv(EnvAPIAuthToken); v != "" {
		c.AuthToken = v
	}
}
