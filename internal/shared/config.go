package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Auth     AuthConfig     `toml:"auth"`
	Upload   UploadConfig   `toml:"upload"`
	Database DatabaseConfig `toml:"database"`
}

// APIConfig contains the media API endpoints and request tuning.
type APIConfig struct {
	UploadURL       string  `toml:"upload_url"`
	SearchURL       string  `toml:"search_url"`
	ThumbSearchURL  string  `toml:"thumb_search_url"`
	TagsURL         string  `toml:"tags_url"`
	DeleteURL       string  `toml:"delete_url"`
	SettingsURL     string  `toml:"settings_url"`
	TimeoutSeconds  int     `toml:"timeout_seconds"`
	RequestsPerSec  float64 `toml:"requests_per_sec"`
	RequestBurst    int     `toml:"request_burst"`
	SpeciesCacheMin int     `toml:"species_cache_minutes"`
}

// AuthConfig contains the Cognito user pool settings.
type AuthConfig struct {
	Region   string `toml:"region"`
	ClientID string `toml:"client_id"`
}

// UploadConfig contains upload restrictions.
type UploadConfig struct {
	MaxSizeMB int64 `toml:"max_size_mb"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Timeout returns the configured API request timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SpeciesCacheTTL returns how long a cached species list stays fresh.
func (c APIConfig) SpeciesCacheTTL() time.Duration {
	if c.SpeciesCacheMin <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.SpeciesCacheMin) * time.Minute
}

// MaxSize returns the upload ceiling in bytes.
func (c UploadConfig) MaxSize() int64 {
	if c.MaxSizeMB <= 0 {
		return 50 << 20
	}
	return c.MaxSizeMB << 20
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
