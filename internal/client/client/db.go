package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/campusroutine/internal/client/migrations"
	"github.com/dmitrijs2005/campusroutine/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/campusroutine/internal/client/repositories/schedules"
	"github.com/dmitrijs2005/campusroutine/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

type Repositories struct {
	Metadata  metadata.Repository
	Schedules *schedules.SQLiteRepository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Metadata:  metadata.NewSQLiteRepository(db),
		Schedules: schedules.NewSQLiteRepository(db),
	}
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite file at dsn and applies migrations.
// SQLite has a single writer, so the pool is capped at one connection.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	if err := filex.EnsureParentDir(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
