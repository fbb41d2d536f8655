package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate, for tests to break one
// field at a time.
func validConfig() *Config {
	config := DefaultConfig()
	config.Credentials.Spotify.ClientID = "test_client_id"
	config.Credentials.Spotify.ClientSecret = "test_secret"
	config.Credentials.Spotify.RefreshToken = "test_refresh_token"
	config.Playlists.SourceID = "source123"
	config.Playlists.MirrorID = "mirror456"
	return config
}

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "spindle.db" {
			t.Errorf("expected database path spindle.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Sync.IntervalMinutes != 30 {
			t.Errorf("expected interval 30 minutes, got %d", config.Sync.IntervalMinutes)
		}

		if config.Sync.RetentionDays != 365 {
			t.Errorf("expected retention 365 days, got %d", config.Sync.RetentionDays)
		}

		if config.Sync.CooldownDays != 5 {
			t.Errorf("expected cooldown 5 days, got %d", config.Sync.CooldownDays)
		}
	})

	t.Run("Window Conversions", func(t *testing.T) {
		sync := SyncConfig{IntervalMinutes: 30, RetentionDays: 365, CooldownDays: 5}

		if sync.Interval() != 30*time.Minute {
			t.Errorf("Interval() = %v", sync.Interval())
		}
		if sync.RetentionWindow() != 365*24*time.Hour {
			t.Errorf("RetentionWindow() = %v", sync.RetentionWindow())
		}
		if sync.CooldownWindow() != 5*24*time.Hour {
			t.Errorf("CooldownWindow() = %v", sync.CooldownWindow())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"
refresh_token = "test_refresh_token"

[playlists]
source_id = "source123"
mirror_id = "mirror456"

[sync]
interval_minutes = 15
retention_days = 180
cooldown_days = 3
max_history_events = 50
max_history_requests = 2

[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Sync.RetentionDays != 180 {
			t.Errorf("expected retention 180 days, got %d", config.Sync.RetentionDays)
		}

		if config.Playlists.SourceID != "source123" {
			t.Errorf("expected source_id source123, got %s", config.Playlists.SourceID)
		}
	})

	t.Run("SaveConfig Round Trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		config := validConfig()
		config.Credentials.Spotify.RefreshToken = "minted_token"

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}

		if loaded.Credentials.Spotify.RefreshToken != "minted_token" {
			t.Errorf("refresh token not persisted, got %q", loaded.Credentials.Spotify.RefreshToken)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(*Config)
			wantErr error
		}{
			{"valid", func(c *Config) {}, nil},
			{"missing client credentials", func(c *Config) { c.Credentials.Spotify.ClientID = "" }, ErrFatalConfig},
			{"missing refresh token", func(c *Config) { c.Credentials.Spotify.RefreshToken = "" }, ErrNoRefreshToken},
			{"missing source playlist", func(c *Config) { c.Playlists.SourceID = "" }, ErrFatalConfig},
			{"missing mirror playlist", func(c *Config) { c.Playlists.MirrorID = "" }, ErrFatalConfig},
			{"zero interval", func(c *Config) { c.Sync.IntervalMinutes = 0 }, ErrFatalConfig},
			{"negative retention", func(c *Config) { c.Sync.RetentionDays = -1 }, ErrFatalConfig},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				config := validConfig()
				tt.mutate(config)

				err := config.Validate()
				if tt.wantErr == nil {
					if err != nil {
						t.Errorf("Validate() error = %v, want nil", err)
					}
					return
				}
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	})

	t.Run("Credentials Map", func(t *testing.T) {
		spotify := SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
			RedirectURI:  "http://localhost:3000/callback",
			RefreshToken: "token",
		}

		m := spotify.Map()
		if m["client_id"] != "id" || m["refresh_token"] != "token" {
			t.Errorf("Map() = %v", m)
		}
	})
}
