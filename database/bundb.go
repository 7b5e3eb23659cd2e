package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	trackingmigrations "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/infrastructure/repositories/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	_ "modernc.org/sqlite"
)

// OpenBun opens a pooled bun.DB. postgres:// and postgresql:// DSNs use
// pgdriver; anything else is handed to the pure-Go SQLite driver
// (for example "file:elo.db" or "file::memory:").
func OpenBun(ctx context.Context, dsn string, logger *slog.Logger) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	if isPostgres(dsn) {
		sqldb, err := pgConn(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.InfoContext(ctx, "Connected to Postgres")
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}

	sqldb, err := sqliteConn(ctx, strings.TrimPrefix(dsn, "sqlite://"))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	logger.InfoContext(ctx, "Opened SQLite database")
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func pgConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}

func sqliteConn(ctx context.Context, dsn string) (*sql.DB, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite serializes writers; one connection also keeps in-memory
	// databases alive for the life of the pool.
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}
	return sqldb, nil
}

// Migrator returns the migrator for the tracking schema.
func Migrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, trackingmigrations.Migrations)
}

// Migrate creates the migration tables if needed and applies every pending
// migration.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	migrator := Migrator(db)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if group.IsZero() {
		logger.InfoContext(ctx, "No new migrations to run")
		return nil
	}
	logger.InfoContext(ctx, "Migrated database", slog.String("group", group.String()))
	return nil
}
