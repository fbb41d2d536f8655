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
	Credentials CredentialsConfig `toml:"credentials"`
	Playlists   PlaylistsConfig   `toml:"playlists"`
	Sync        SyncConfig        `toml:"sync"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials.
//
// RefreshToken is minted by `spindle auth login` and lets the daemon
// authenticate without user interaction.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	RefreshToken string `toml:"refresh_token"`
}

// Map converts the Spotify credentials to the map form consumed by the
// services package.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"refresh_token": s.RefreshToken,
	}
}

// PlaylistsConfig identifies the two playlists under management.
type PlaylistsConfig struct {
	SourceID string `toml:"source_id"`
	MirrorID string `toml:"mirror_id"`
}

// SyncConfig contains reconciliation tuning knobs.
type SyncConfig struct {
	IntervalMinutes    int `toml:"interval_minutes"`
	RetentionDays      int `toml:"retention_days"`
	CooldownDays       int `toml:"cooldown_days"`
	MaxHistoryEvents   int `toml:"max_history_events"`
	MaxHistoryRequests int `toml:"max_history_requests"`
}

// Interval returns the scheduler interval between reconciliation passes.
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// RetentionWindow returns the maximum age since added-at for a source
// entry to stay eligible.
func (s SyncConfig) RetentionWindow() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

// CooldownWindow returns the minimum time since the last play before an
// item becomes eligible again.
func (s SyncConfig) CooldownWindow() time.Duration {
	return time.Duration(s.CooldownDays) * 24 * time.Hour
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes the configuration back to disk as TOML.
//
// Used by the auth flow to persist a freshly minted refresh token.
func SaveConfig(path string, config *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// Validate checks that every value the daemon needs at runtime is present.
// A missing value here is a fatal startup error, never a runtime error of
// the sync engine.
func (c *Config) Validate() error {
	sp := c.Credentials.Spotify
	if sp.ClientID == "" || sp.ClientSecret == "" {
		return fmt.Errorf("%w: missing spotify client credentials", ErrFatalConfig)
	}
	if sp.RefreshToken == "" {
		return fmt.Errorf("%w: run 'spindle auth login' first", ErrNoRefreshToken)
	}
	if c.Playlists.SourceID == "" {
		return fmt.Errorf("%w: playlists.source_id is required", ErrFatalConfig)
	}
	if c.Playlists.MirrorID == "" {
		return fmt.Errorf("%w: playlists.mirror_id is required", ErrFatalConfig)
	}
	if c.Sync.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: sync.interval_minutes must be positive", ErrFatalConfig)
	}
	if c.Sync.RetentionDays <= 0 || c.Sync.CooldownDays < 0 {
		return fmt.Errorf("%w: invalid sync windows", ErrFatalConfig)
	}
	return nil
}
