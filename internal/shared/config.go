package shared

import (
	"encoding/base64"
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
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Sync        SyncConfig        `toml:"sync"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectBase string `toml:"redirect_base"`
}

// AuthHeader returns the Basic auth payload for the Spotify token endpoint,
// base64(client_id:client_secret).
func (s SpotifyConfig) AuthHeader() string {
	return base64.StdEncoding.EncodeToString([]byte(s.ClientID + ":" + s.ClientSecret))
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// SyncConfig contains the tracked artist set and the background cycle settings.
type SyncConfig struct {
	Artists           []string `toml:"artists"`
	ArtistIntervalSec int      `toml:"artist_interval_seconds"`
	TokenIntervalSec  int      `toml:"token_interval_seconds"`
	RequestTimeoutSec int      `toml:"request_timeout_seconds"`
}

// ArtistInterval returns how often tracked artists are refreshed from the catalog.
func (s SyncConfig) ArtistInterval() time.Duration {
	if s.ArtistIntervalSec <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(s.ArtistIntervalSec) * time.Second
}

// TokenInterval returns how often the stored credential is checked for expiry.
func (s SyncConfig) TokenInterval() time.Duration {
	if s.TokenIntervalSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.TokenIntervalSec) * time.Second
}

// RequestTimeout returns the bound applied to any single provider call.
func (s SyncConfig) RequestTimeout() time.Duration {
	if s.RequestTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(s.RequestTimeoutSec) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
