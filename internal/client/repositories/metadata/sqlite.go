package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) LastKnownVersion(ctx context.Context, department string) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx,
		`SELECT metadata_version FROM sync_state WHERE department = ?`, department).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get metadata version of %s: %w", department, err)
	}
	return v, nil
}

func (r *SQLiteRepository) SetLastKnownVersion(ctx context.Context, department string, v int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state (department, metadata_version) VALUES (?, ?)
		ON CONFLICT(department) DO UPDATE SET metadata_version = excluded.metadata_version
	`, department, v)
	if err != nil {
		return fmt.Errorf("failed to set metadata version of %s: %w", department, err)
	}
	return nil
}

func (r *SQLiteRepository) LastSync(ctx context.Context, department string) (time.Time, error) {
	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT last_sync FROM sync_state WHERE department = ?`, department).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && ms == 0) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync of %s: %w", department, err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func (r *SQLiteRepository) SetLastSync(ctx context.Context, department string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_state (department, last_sync) VALUES (?, ?)
		ON CONFLICT(department) DO UPDATE SET last_sync = excluded.last_sync
	`, department, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to set last sync of %s: %w", department, err)
	}
	return nil
}

func (r *SQLiteRepository) ForgetDepartment(ctx context.Context, department string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sync_state WHERE department = ?`, department)
	if err != nil {
		return fmt.Errorf("failed to forget %s: %w", department, err)
	}
	return nil
}
