package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/riff/internal/shared"
	"github.com/desertthunder/riff/internal/store"
	"github.com/urfave/cli/v3"
)

// Setup initializes the configuration file and the local SQLite store.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if _, err := store.NewSQLiteStore(db, 0); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)

	r.writePlain("✓ Setup complete\n")
	r.writePlainln("Next steps:")
	r.writePlain("1. Add your Spotify client_id and client_secret to %s\n", configPath)
	r.writePlain("2. Run 'riff auth login' to connect your Spotify account\n")
	r.writePlain("3. Run 'riff data init' to fetch your listening history\n")

	return nil
}
