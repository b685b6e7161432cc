package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mbb-dev/birdtag/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadOrCreateConfig(cmd.String("config"))

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupRollback rolls back the most recent migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	config := r.loadOrCreateConfig(cmd.String("config"))

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	r.logger.Info("rolling back latest migration", "path", config.Database.Path)
	if err := shared.RollbackMigration(db); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}

	return r.writePlain("✓ Rolled back latest migration\n")
}

// SetupConfig writes the embedded config template for editing.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Edit the [auth] section with your user pool region and client ID,\n")
	r.writePlain("then run 'birdtag auth signup' to create an account.\n")
	return nil
}

// loadOrCreateConfig loads the config at path, creating it from the
// embedded template when missing. Falls back to defaults on any failure.
func (r *Runner) loadOrCreateConfig(path string) *shared.Config {
	if _, err := os.Stat(path); err == nil {
		config, err := shared.LoadConfig(path)
		if err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			return shared.DefaultConfig()
		}
		return config
	}

	r.logger.Info("config file not found, creating from template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		r.logger.Warn("failed to create config file, using defaults", "error", err)
		return shared.DefaultConfig()
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load created config, using defaults", "error", err)
		return shared.DefaultConfig()
	}
	return config
}
