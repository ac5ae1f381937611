package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/example/gym-dashboard/internal/config"
	"github.com/example/gym-dashboard/internal/logging"
	"github.com/example/gym-dashboard/internal/persistence/migration"
)

func main() {
	direction := flag.String("direction", string(migration.Up), "migration direction: up or down")
	flag.Parse()

	logger := logging.New(os.Stdout, "info")
	if err := run(*direction, logger); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
}

func run(rawDirection string, logger *slog.Logger) error {
	direction, err := migration.ParseDirection(rawDirection)
	if err != nil {
		return err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	return migration.Run(cfg.Database, direction, logging.New(os.Stdout, cfg.LogLevel))
}
