package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/riff/internal/services"
	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	configPath := "config.toml"
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.OAuthService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			spotifyService = svc
		}
	}

	var roasterService services.RoastGenerator
	if config.Credentials.Roaster.APIKey != "" {
		if svc, err := services.NewRoasterService(
			config.Credentials.Roaster.APIKey,
			config.Credentials.Roaster.BaseURL,
			config.Credentials.Roaster.Model,
		); err == nil {
			roasterService = svc
		}
	}

	var kv store.KV
	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if sqliteStore, err := store.NewSQLiteStore(db, 0); err == nil {
			kv = sqliteStore
		}
	}
	if kv == nil {
		logger.Warn("database unavailable, caching to memory for this session")
		kv = store.NewMemoryStore()
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Store:      kv,
		Spotify:    spotifyService,
		Roaster:    roasterService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "riff",
		Usage:    "Cache your Spotify listening history, surface insights, get roasted",
		Version:  "2.0.0",
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
