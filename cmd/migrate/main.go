package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-widget/internal/config"
	"github.com/Rrens/chat-widget/internal/logging"
	"github.com/Rrens/chat-widget/internal/repository/postgres"
)

func main() {
	source := flag.String("source", "", "migration source URL (defaults to storage.postgres.migrations_path)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	closer, err := logging.Setup(cfg.Logging, cfg.Server.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	sourceURL := *source
	if sourceURL == "" {
		sourceURL = cfg.Storage.Postgres.MigrationsPath
	}
	if sourceURL == "" {
		sourceURL = "file://migrations"
	}

	pg := cfg.Storage.Postgres
	log.Info().
		Str("host", pg.Host).
		Int("port", pg.Port).
		Str("source", sourceURL).
		Msg("Applying migrations")

	if err := postgres.RunMigrations(pg.DSN(), sourceURL); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
