package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/riff/internal/server"
	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, exchanges
// the auth code for tokens, and persists them to the key-value store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if config == nil {
		var err error
		if _, statErr := os.Stat(configPath); statErr == nil {
			config, err = shared.LoadConfig(configPath)
			if err != nil {
				r.logger.Warnf("failed to load config, using defaults %v", err)
				config = shared.DefaultConfig()
			}
		} else {
			config = shared.DefaultConfig()
		}
	}

	if config.Credentials.Spotify.ClientID == "" || config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingConfig)
	}

	spotify := r.spotify
	if spotify == nil {
		svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map())
		if err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
		spotify = svc
		r.spotify = svc
	}

	token, err := r.doOAuth(config, spotify)
	if err != nil {
		return err
	}

	if err := r.saveToken(token); err != nil {
		return err
	}

	if err := spotify.Authenticate(ctx, token.AccessToken); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Token saved\n\n")
	r.writePlain("You can now use: riff data init\n")

	return nil
}

// AuthStatus reports whether a stored token exists and whether it still works.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	token, err := r.loadToken()
	if err != nil {
		r.writePlain("✗ Not authenticated\n")
		r.writePlain("Run 'riff auth login' to connect your Spotify account.\n")
		return nil
	}

	r.writePlain("✓ Token stored\n")
	if !token.Valid() {
		if token.RefreshToken != "" {
			r.writePlain("Access token expired; it will be refreshed on next use.\n")
		} else {
			r.writePlain("✗ Token expired. Run 'riff auth login' to reauthorize.\n")
		}
		return nil
	}

	if spotify, ok := r.spotify.(*services.SpotifyService); ok {
		if err := spotify.Authenticate(ctx, token.AccessToken); err == nil {
			if user, err := spotify.UserProfile(ctx); err == nil {
				r.writePlain("Logged in as: %s (%s)\n", user.DisplayName, user.Product)
			}
		}
	}

	return nil
}

// AuthLogout removes the persisted token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.store.Delete(tokenKey); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return r.writePlain("✓ Logged out\n")
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(config *shared.Config, oauthSrv services.OAuthService) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.Logging(r.logger))
	router.Handler(oauthHandler)

	callback := server.NewCallbackServer(config.Server.Host, config.Server.Port, router, r.logger)
	r.logger.Infof("starting OAuth callback server at %s:%d", config.Server.Host, config.Server.Port)
	callback.Start()

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
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := callback.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}
