package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var library services.Library
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if lib, err := services.NewSpotifyLibrary(
			config.Credentials.Spotify.Map(),
			config.Playlists.SourceID,
			config.Playlists.MirrorID,
		); err == nil {
			library = lib
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Library: library,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "spindle",
		Usage:    "Keep a mirror playlist in sync with a source playlist",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
