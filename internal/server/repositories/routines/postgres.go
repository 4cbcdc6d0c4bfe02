package routines

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/dbx"
	"github.com/dmitrijs2005/campusroutine/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, department string) (*models.Schedule, error) {
	query :=
		`SELECT id, department, semester, effective_from, entries, version, created_at, updated_at
		 FROM routines WHERE department = $1`

	s := &models.Schedule{}
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, department).
		Scan(&s.ID, &s.Department, &s.Semester, &s.EffectiveFrom, &raw, &s.Version, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(raw, &s.Entries); err != nil {
		return nil, fmt.Errorf("%w: entries of %s: %v", common.ErrMalformedSchedule, department, err)
	}
	if s.Entries == nil {
		s.Entries = []models.Entry{}
	}

	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Schedule) error {
	entries := s.Entries
	if entries == nil {
		entries = []models.Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	query :=
		`INSERT INTO routines (department, id, semester, effective_from, entries, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (department) DO UPDATE SET
		   id = EXCLUDED.id,
		   semester = EXCLUDED.semester,
		   effective_from = EXCLUDED.effective_from,
		   entries = EXCLUDED.entries,
		   version = EXCLUDED.version,
		   updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		s.Department, s.ID, s.Semester, s.EffectiveFrom, raw, s.Version, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, department string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM routines WHERE department = $1`, department)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *PostgresRepository) Version(ctx context.Context, department string) (int64, error) {
	var v int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM routines WHERE department = $1`, department).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) Departments(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT department FROM routines ORDER BY department`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
