package metadata

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/campusroutine/internal/dbx"
	"github.com/dmitrijs2005/campusroutine/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) (models.MaintenanceInfo, error) {
	query :=
		`SELECT version, maintenance_mode, maintenance_message, semester_break, update_type
		 FROM routine_metadata WHERE id = 1`

	var m models.MaintenanceInfo
	err := r.db.QueryRowContext(ctx, query).
		Scan(&m.Version, &m.MaintenanceMode, &m.Message, &m.SemesterBreak, &m.UpdateType)
	if err != nil {
		return m, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Bump(ctx context.Context, minVersion int64, updateType string) (int64, error) {
	query :=
		`UPDATE routine_metadata
		 SET version = GREATEST(version + 1, $1), update_type = $2, updated_at = now()
		 WHERE id = 1
		 RETURNING version`

	var v int64
	if err := r.db.QueryRowContext(ctx, query, minVersion, updateType).Scan(&v); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (r *PostgresRepository) SetMaintenance(ctx context.Context, info models.MaintenanceInfo, minVersion int64) (int64, error) {
	query :=
		`UPDATE routine_metadata
		 SET version = GREATEST(version + 1, $1),
		     maintenance_mode = $2, maintenance_message = $3, semester_break = $4,
		     update_type = $5, updated_at = now()
		 WHERE id = 1
		 RETURNING version`

	var v int64
	err := r.db.QueryRowContext(ctx, query,
		minVersion, info.MaintenanceMode, info.Message, info.SemesterBreak, info.UpdateType).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}
