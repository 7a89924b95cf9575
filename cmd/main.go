package main

import (
	"context"
	"os"
	"time"

	"github.com/desertthunder/crate/internal/outbox"
	"github.com/desertthunder/crate/internal/remote"
	"github.com/desertthunder/crate/internal/session"
	"github.com/desertthunder/crate/internal/shared"
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

	// The outbox falls back to process memory until setup has created the
	// journal database.
	var journal outbox.Journal = outbox.NewMemory()
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err := shared.NewDatabase(config.Database.Path); err == nil {
			shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
			journal = outbox.NewRepository(db)
			defer db.Close()
		}
	}

	client := remote.NewHTTPClient(remote.HTTPClientOpts{
		BaseURL:   config.Remote.BaseURL,
		RateLimit: config.Remote.RateLimit,
	})

	controller := session.NewController(session.ControllerOpts{
		Remote:        client,
		Journal:       journal,
		Logger:        logger,
		QueueSize:     config.Sync.QueueSize,
		RetryAttempts: config.Sync.RetryAttempts,
		RetryBackoff:  time.Duration(config.Sync.RetryBackoffMS) * time.Millisecond,
	})

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Controller: controller,
		Journal:    journal,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "crate",
		Usage:    "Catalog, rate, and playlist your music library",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
