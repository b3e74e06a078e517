// Package cli holds the initialization steps shared by cmd/frugal and
// cmd/frugal-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"frugal/internal/config"
	"frugal/internal/storage"
)

// SetupLogger installs the default text logger.
func SetupLogger() *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadEnv reads .env for local development. Missing files are fine in
// production and docker.
func LoadEnv() {
	_ = godotenv.Load()
}

// MustLoadConfig loads and validates configuration, exiting on error.
func MustLoadConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// MustOpenRepository opens the SQLite store and runs migrations,
// exiting on error.
func MustOpenRepository(logger *slog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
