package storage

import (
	"fmt"
	"os"
)

const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
	ProviderNone  = "none"
)

// Config selects and configures the blob storage provider.
// PublicURL, when set, replaces the provider endpoint in object URLs.
type Config struct {
	Provider  string      `toml:"provider"`
	PublicURL string      `toml:"public_url"`
	Azure     AzureConfig `toml:"azure"`
	S3        S3Config    `toml:"s3"`
}

// AzureConfig holds Azure Blob Storage connection parameters.
// ConnectionString takes precedence; otherwise AccountURL is used with
// the default Azure credential chain.
type AzureConfig struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// S3Config holds S3 bucket parameters. A non-empty Endpoint enables
// path-style addressing for S3-compatible servers.
type S3Config struct {
	Bucket   string `toml:"bucket"`
	Region   string `toml:"region"`
	Endpoint string `toml:"endpoint"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider              string
	PublicURL             string
	AzureContainerName    string
	AzureConnectionString string
	AzureAccountURL       string
	S3Bucket              string
	S3Region              string
	S3Endpoint            string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.PublicURL != "" {
		c.PublicURL = overlay.PublicURL
	}
	if overlay.Azure.ContainerName != "" {
		c.Azure.ContainerName = overlay.Azure.ContainerName
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.AccountURL != "" {
		c.Azure.AccountURL = overlay.Azure.AccountURL
	}
	if overlay.S3.Bucket != "" {
		c.S3.Bucket = overlay.S3.Bucket
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.Azure.ContainerName == "" {
		c.Azure.ContainerName = "images"
	}
	if c.S3.Bucket == "" {
		c.S3.Bucket = "images"
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	set := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	set(env.Provider, &c.Provider)
	set(env.PublicURL, &c.PublicURL)
	set(env.AzureContainerName, &c.Azure.ContainerName)
	set(env.AzureConnectionString, &c.Azure.ConnectionString)
	set(env.AzureAccountURL, &c.Azure.AccountURL)
	set(env.S3Bucket, &c.S3.Bucket)
	set(env.S3Region, &c.S3.Region)
	set(env.S3Endpoint, &c.S3.Endpoint)
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderAzure:
		if c.Azure.ConnectionString == "" && c.Azure.AccountURL == "" {
			return fmt.Errorf("azure: connection_string or account_url required")
		}
	case ProviderS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("s3: bucket required")
		}
	case ProviderNone:
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	return nil
}
