package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/spindle/internal/server"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs the OAuth2 authorization-code flow for Spotify.
//
// Starts a local HTTP server, opens the browser for user authorization, and
// saves the minted refresh token back to the config file. After this the
// daemon authenticates unattended.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, statErr := os.Stat(configPath); statErr == nil {
		loaded, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warnf("failed to load config, using current settings %v", err)
		} else {
			config = loaded
		}
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set in %s", shared.ErrFatalConfig, configPath)
	}

	library, err := services.NewSpotifyLibrary(
		config.Credentials.Spotify.Map(),
		config.Playlists.SourceID,
		config.Playlists.MirrorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create spotify accessor: %w", err)
	}

	token, err := r.doOAuth(config, library)
	if err != nil {
		return err
	}

	if token.RefreshToken == "" {
		return fmt.Errorf("%w: provider returned no refresh token", shared.ErrNoRefreshToken)
	}

	config.Credentials.Spotify.RefreshToken = token.RefreshToken
	if err := shared.SaveConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Refresh token saved to %s\n\n", configPath)
	r.writePlain("You can now use: spindle sync run\n")

	return nil
}

// AuthStatus verifies the stored credentials with a cheap authenticated read.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.prepareSync(ctx); err != nil {
		if errors.Is(err, shared.ErrNoRefreshToken) {
			r.writePlain("✗ Not authenticated. Run: spindle auth login\n")
			return nil
		}
		return err
	}

	entries, err := r.library.FetchMirror(ctx)
	if err != nil {
		return fmt.Errorf("credential check failed: %w", err)
	}

	r.writePlain("✓ Authenticated with %s\n", r.library.Name())
	r.writePlain("✓ Mirror playlist reachable (%d tracks)\n", len(entries))
	return nil
}

// doOAuth runs the browser-based authorization dance against a local
// callback server and returns the exchanged token.
func (r *Runner) doOAuth(config *shared.Config, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// authCommand handles Spotify credential management.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize spindle and save a refresh token",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path to config file",
						Value: "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check whether stored credentials still work",
				Action: r.AuthStatus,
			},
		},
	}
}
