// Package config loads Evidex configuration from a TOML file, a .env
// file and EVIDEX_* environment variables, in increasing order of
// precedence. Credentials only ever come from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/evidex/internal/segmenter"
)

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// DefaultPort is the HTTP API port when none is configured.
const DefaultPort = 8000

// Config is the full service configuration.
type Config struct {
	// Store selects the vector store backend: "sqlite" or "postgres".
	Store string `toml:"store"`

	// Port is the HTTP API listen port.
	Port int `toml:"port"`

	// DataDir is the sqlite data directory. Empty means ~/.evidex/data.
	DataDir string `toml:"data_dir"`

	DB        DBConfig        `toml:"db"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Chunking  ChunkingConfig  `toml:"chunking"`
}

// DBConfig holds Postgres connection parameters.
type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"-"` // environment only, never written to disk
	SSLMode  string `toml:"sslmode"`
}

// DSN renders the connection string for database/sql.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + c.SSLMode
	}
	return u.String()
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider       string  `toml:"provider"`
	Model          string  `toml:"model"`
	BaseURL        string  `toml:"base_url"`
	APIKey         string  `toml:"-"` // environment only
	Dimensions     int     `toml:"dimensions"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// ChunkingConfig tunes the text segmenter.
type ChunkingConfig struct {
	WindowSize       int `toml:"window_size"`
	OverlapSentences int `toml:"overlap_sentences"`
}

// Load builds the configuration. The TOML file at path is optional when
// path is empty (the default location is used if present); a named path
// that does not exist is an error.
func Load(path string) (*Config, error) {
	// A .env file in the working directory supplies environment
	// variables without shadowing ones already set.
	_ = godotenv.Load()

	cfg := &Config{
		Store: StoreSQLite,
		Port:  DefaultPort,
		DB: DBConfig{
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Chunking: ChunkingConfig{
			WindowSize:       segmenter.DefaultWindowSize,
			OverlapSentences: segmenter.DefaultOverlapSentences,
		},
	}

	explicit := path != ""
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".evidex", "config.toml")
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// No config file is fine; environment carries everything.
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays EVIDEX_* environment variables.
func (c *Config) applyEnv() error {
	setString(&c.Store, "EVIDEX_STORE")
	setString(&c.DataDir, "EVIDEX_SQLITE_PATH")
	if err := setInt(&c.Port, "EVIDEX_PORT"); err != nil {
		return err
	}

	setString(&c.DB.Host, "EVIDEX_DB_HOST")
	setString(&c.DB.Name, "EVIDEX_DB_NAME")
	setString(&c.DB.User, "EVIDEX_DB_USER")
	setString(&c.DB.Password, "EVIDEX_DB_PASSWORD")
	setString(&c.DB.SSLMode, "EVIDEX_DB_SSLMODE")
	if err := setInt(&c.DB.Port, "EVIDEX_DB_PORT"); err != nil {
		return err
	}

	setString(&c.Embedding.Provider, "EVIDEX_EMBEDDING_PROVIDER")
	setString(&c.Embedding.Model, "EVIDEX_EMBEDDING_MODEL")
	setString(&c.Embedding.BaseURL, "EVIDEX_EMBEDDING_BASE_URL")
	setString(&c.Embedding.APIKey, "EVIDEX_EMBEDDING_API_KEY")
	if err := setInt(&c.Embedding.Dimensions, "EVIDEX_EMBEDDING_DIMENSIONS"); err != nil {
		return err
	}

	if err := setInt(&c.Chunking.WindowSize, "EVIDEX_CHUNK_WINDOW"); err != nil {
		return err
	}
	if err := setInt(&c.Chunking.OverlapSentences, "EVIDEX_CHUNK_OVERLAP"); err != nil {
		return err
	}
	return nil
}

// Validate checks that every required value is present. Violations are
// fatal at startup and name the variable to set.
func (c *Config) Validate() error {
	if c.Store != StoreSQLite && c.Store != StorePostgres {
		return fmt.Errorf("EVIDEX_STORE must be %q or %q, got %q", StoreSQLite, StorePostgres, c.Store)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("EVIDEX_PORT must be a valid port, got %d", c.Port)
	}
	if c.Embedding.Provider == "" {
		return fmt.Errorf("EVIDEX_EMBEDDING_PROVIDER is required")
	}
	if c.Chunking.WindowSize < 1 {
		return fmt.Errorf("EVIDEX_CHUNK_WINDOW must be at least 1, got %d", c.Chunking.WindowSize)
	}
	if c.Chunking.OverlapSentences < 0 {
		return fmt.Errorf("EVIDEX_CHUNK_OVERLAP must not be negative, got %d", c.Chunking.OverlapSentences)
	}

	if c.Store == StorePostgres {
		if c.DB.Name == "" {
			return fmt.Errorf("EVIDEX_DB_NAME is required for the postgres store")
		}
		if c.DB.User == "" {
			return fmt.Errorf("EVIDEX_DB_USER is required for the postgres store")
		}
		if c.DB.Password == "" {
			return fmt.Errorf("EVIDEX_DB_PASSWORD is required for the postgres store")
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	*dst = n
	return nil
}
