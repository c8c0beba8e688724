package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"

	"github.com/fuuti/storefront-api/migrations"
)

// runMigrations applies any pending schema migrations from the embedded
// migration set.
func runMigrations(db *sql.DB, appLogger *slog.Logger) error {
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	appLogger.Info("Database migrations applied", "version", version)
	return nil
}
