package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/mnemo-app/mnemo-api/internal/config"
	"github.com/mnemo-app/mnemo-api/migrations"
)

// migrationTableName is the table goose uses to track applied migrations.
const migrationTableName = "schema_migrations"

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error("goose fatal", "message", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info("goose", "message", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// runMigrations applies all pending migrations from the embedded filesystem
// against the given connection.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: logger})
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(migrationTableName)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// runMigrationsForConfig opens a short-lived connection, applies migrations,
// and closes it. Used by the -migrate flag.
func runMigrationsForConfig(cfg *config.Config, logger *slog.Logger) error {
	db, err := setupAppDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeQuietly(db, logger)

	return runMigrations(db, logger)
}
