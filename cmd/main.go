package main

import (
	"context"
	"errors"
	"os"

	"github.com/mbb-dev/birdtag/internal/auth"
	"github.com/mbb-dev/birdtag/internal/repositories"
	"github.com/mbb-dev/birdtag/internal/session"
	"github.com/mbb-dev/birdtag/internal/shared"
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

	db, err := shared.OpenDatabase(config.Database)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var gateway *auth.Gateway
	if config.Auth.ClientID != "" {
		sessions := session.NewStore(repositories.NewKVRepository(db, repositories.SessionTable))
		if gateway, err = auth.NewGateway(context.Background(), config.Auth, sessions, logger); err != nil {
			logger.Warn("failed to initialize auth gateway", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		DB:      db,
		Gateway: gateway,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "birdtag",
		Usage:    "Tag, search and manage bird media collections",
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
