// Package file provides TOML-backed configuration for the Veritas
// service. Secrets (database DSN, credentials path) can be overridden by
// environment variables so the TOML file stays checkable-in.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/veritas/internal/core/domain"
)

// Environment override variables.
const (
	EnvDatabaseURL     = "DATABASE_URL"
	EnvCredentialsFile = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Config is the full service configuration.
type Config struct {
	// Server configures the HTTP surface.
	Server ServerConfig `toml:"server"`

	// Database configures the Postgres connection.
	Database DatabaseConfig `toml:"database"`

	// ML configures the external model endpoints and credentials.
	ML MLConfig `toml:"ml"`

	// Retrieval configures similarity search.
	Retrieval RetrievalConfig `toml:"retrieval"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// Listen is the address to bind (default: ":8080").
	Listen string `toml:"listen"`

	// RequestTimeoutSeconds is the per-request deadline imposed on the
	// pipeline by the HTTP layer (default: 30).
	RequestTimeoutSeconds int `toml:"request_timeout_seconds"`
}

// RequestTimeout returns the per-request deadline as a duration.
func (c ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// DatabaseConfig configures the Postgres connection.
type DatabaseConfig struct {
	// DSN is the connection string. Overridden by DATABASE_URL.
	DSN string `toml:"dsn"`
}

// MLConfig configures the external ML API.
type MLConfig struct {
	// CredentialsFile is the service-account key path. Overridden by
	// GOOGLE_APPLICATION_CREDENTIALS.
	CredentialsFile string `toml:"credentials_file"`

	// BaseURL is the publisher models base URL shared by the embedding
	// and generation endpoints.
	BaseURL string `toml:"base_url"`

	// EmbeddingModel is the embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// GenerativeModel is the generative model name.
	GenerativeModel string `toml:"generative_model"`
}

// RetrievalConfig configures similarity search.
type RetrievalConfig struct {
	// Threshold is the minimum similarity, exclusive (default: 0.5).
	Threshold float64 `toml:"threshold"`

	// TopK bounds evidence snippet count (default: 8).
	TopK int `toml:"top_k"`

	// Namespaces are the corpus partitions to search (default: default).
	Namespaces []string `toml:"namespaces"`
}

// DefaultPath returns the default config location, ~/.veritas/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".veritas", "config.toml"), nil
}

// Load reads the TOML file at path, applies defaults for unset fields,
// and then applies environment overrides. A missing file is not an
// error: a fully env-configured deployment carries no file at all.
func Load(path string) (Config, error) {
	var cfg Config

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults plus environment only.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		c.Server.RequestTimeoutSeconds = 30
	}
	if c.Retrieval.Threshold == 0 {
		c.Retrieval.Threshold = 0.5
	}
	if c.Retrieval.TopK <= 0 {
		c.Retrieval.TopK = 8
	}
	if len(c.Retrieval.Namespaces) == 0 {
		c.Retrieval.Namespaces = []string{domain.DefaultNamespace}
	}
}

func (c *Config) applyEnv() {
	if dsn := os.Getenv(EnvDatabaseURL); dsn != "" {
		c.Database.DSN = dsn
	}
	if creds := os.Getenv(EnvCredentialsFile); creds != "" {
		c.ML.CredentialsFile = creds
	}
}
