package config

import (
	"os"
	"strconv"

	"gometa/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	Data     DataConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
	APIPort string // read-only results API
}

// AnalysisConfig holds analysis engine settings
type AnalysisConfig struct {
	MaxConcurrent int64 // simultaneous pooled analyses across all sessions
}

// DataConfig holds data import settings
type DataConfig struct {
	ImportDir string
	DemoData  bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:    envOr("PORT", "8080"),
			GinMode: envOr("GIN_MODE", "release"),
			APIPort: envOr("API_PORT", "8081"),
		},
		Analysis: AnalysisConfig{
			MaxConcurrent: envInt64Or("ANALYSIS_MAX_CONCURRENT", 4),
		},
		Data: DataConfig{
			ImportDir: envOr("IMPORT_DIR", "./data"),
			DemoData:  os.Getenv("DEMO_DATA") == "true",
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if c.Analysis.MaxConcurrent < 1 {
		return errors.ConfigInvalid("ANALYSIS_MAX_CONCURRENT must be at least 1")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
