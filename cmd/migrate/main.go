// AngelaMos | 2026
// main.go

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func main() {
	source := flag.String(
		"source", "file://migrations", "migration source URL",
	)
	flag.Parse()

	if err := run(*source, flag.Args()); err != nil {
		slog.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(source string, args []string) error {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL is required")
	}

	if len(args) < 1 {
		return errors.New("usage: migrate [-source URL] <up|down|version|force>")
	}

	m, err := migrate.New(source, dsn)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply migrations: %w", err)
		}
		slog.Info("migrations applied")

	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("rollback migration: %w", err)
		}
		slog.Info("migration rolled back")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		slog.Info("migration state", "version", version, "dirty", dirty)

	case "force":
		if len(args) < 2 {
			return errors.New("usage: migrate force <version>")
		}
		var version int
		if _, err := fmt.Sscanf(args[1], "%d", &version); err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version: %w", err)
		}
		slog.Info("version forced", "version", version)

	default:
		return fmt.Errorf("unknown command %q", args[0])
	}

	return nil
}
