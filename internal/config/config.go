// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible object storage (DigitalOcean Spaces). When the
	// endpoint or credentials are empty the app falls back to local
	// filesystem storage under DataDir.
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3CDNURL    string

	// Local data layout (used by the filesystem storage backend and as
	// the scratch area for uploads).
	DataDir string

	// Directory for the legacy WordPress snapshot files
	// (categories-<mainKey>.json / products-<mainKey>.json). Overrides the
	// default DataDir/legacy-json location of the local backend. Optional.
	LegacyCacheDir string

	// PublicBaseURL prefixes generated asset URLs when set (e.g. a CDN
	// or the storefront's reverse proxy origin).
	PublicBaseURL string

	// CORSOrigins restricts cross-origin access when set. Empty means
	// reflect any origin, which matches how the storefront consumes the
	// exported JSON today.
	CORSOrigins []string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8788"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "partspress"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "partspress"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		S3Endpoint:  os.Getenv("SPACES_ENDPOINT"),
		S3Region:    envOrDefault("SPACES_REGION", "fra1"),
		S3AccessKey: os.Getenv("SPACES_KEY"),
		S3SecretKey: os.Getenv("SPACES_SECRET"),
		S3Bucket:    os.Getenv("SPACES_BUCKET"),
		S3CDNURL:    os.Getenv("SPACES_CDN_URL"),

		DataDir:        envOrDefault("MANAGER_DATA_DIR", "data"),
		LegacyCacheDir: os.Getenv("MANAGER_WP_CACHE_DIR"),
		PublicBaseURL:  os.Getenv("MANAGER_PUBLIC_BASE_URL"),
		CORSOrigins:    splitList(os.Getenv("MANAGER_CORS_ORIGINS")),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// HasS3 reports whether object storage is fully configured.
func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != "" && c.S3Bucket != ""
}

// splitList parses a comma-separated environment value into a slice,
// trimming whitespace and dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
