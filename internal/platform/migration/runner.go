// Copyright (c) 2026 Mavun. All rights reserved.

// Package migration wraps golang-migrate so schema migrations run as part of
// application startup: the server refuses traffic until the database matches
// the version it was built against.
package migration

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// pgx5 driver registers the "pgx5" scheme for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	// file source reads .sql files from disk.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// RunUp applies all pending UP migrations. A dirty database (a previous run
// died mid-migration) is refused outright rather than repaired automatically.
func RunUp(dsn string, migrationsPath string, logger *slog.Logger) error {
	migrator, err := migrate.New("file://"+migrationsPath, pgx5DSN(dsn))
	if err != nil {
		return fmt.Errorf("migration: failed to initialize: %w", err)
	}
	defer func() {
		sourceErr, dbErr := migrator.Close()
		if sourceErr != nil {
			logger.Error("migration_source_close_failed", slog.Any("error", sourceErr))
		}
		if dbErr != nil {
			logger.Error("migration_db_close_failed", slog.Any("error", dbErr))
		}
	}()

	migrator.Log = &migrateLogger{logger: logger}

	version, dirty, err := migrator.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration: failed to get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("migration: database is in a dirty state at version %d (manual intervention required)", version)
	}

	logger.Info("migration_started", slog.Int("current_version", int(version)))

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("migration_already_up_to_date")
			return nil
		}
		return fmt.Errorf("migration: up failed: %w", err)
	}

	applied, _, _ := migrator.Version()
	logger.Info("migration_successful",
		slog.Int("from_version", int(version)),
		slog.Int("to_version", int(applied)),
	)

	return nil
}

// pgx5DSN rewrites a postgres:// DSN onto the pgx5:// scheme golang-migrate's
// pgx/v5 driver registers under.
func pgx5DSN(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

// migrateLogger bridges golang-migrate's logger interface onto slog.
type migrateLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (l *migrateLogger) Printf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *migrateLogger) Verbose() bool {
	return l.verbose
}
