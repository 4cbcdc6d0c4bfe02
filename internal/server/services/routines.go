// Package services holds the backend's routine logic: read paths served to
// clients and the admin write paths that bump the global version.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/dbx"
	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/server/cache"
	"github.com/dmitrijs2005/campusroutine/internal/server/publish"
	"github.com/dmitrijs2005/campusroutine/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	UpdateTypePublish = "publish"
	UpdateTypeDelete  = "delete"
)

type RoutineService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.SnapshotCache
	mirror      publish.Mirror
	logger      logging.Logger
	now         func() time.Time
}

func NewRoutineService(db *sql.DB, m repomanager.RepositoryManager, c cache.SnapshotCache, mirror publish.Mirror, logger logging.Logger) *RoutineService {
	if c == nil {
		c = cache.Noop{}
	}
	if mirror == nil {
		mirror = publish.Noop{}
	}
	return &RoutineService{
		db:          db,
		repomanager: m,
		cache:       c,
		mirror:      mirror,
		logger:      logger.With("module", "routine_service"),
		now:         time.Now,
	}
}

func normalizeDepartment(department string) (string, error) {
	d := strings.TrimSpace(department)
	if d == "" {
		return "", fmt.Errorf("%w: department is empty", common.ErrValidation)
	}
	return d, nil
}

// FetchLatest returns the department's schedule or common.ErrNotFound.
func (s *RoutineService) FetchLatest(ctx context.Context, department string) (*models.Schedule, error) {
	dept, err := normalizeDepartment(department)
	if err != nil {
		return nil, err
	}

	if sch, ok := s.cache.Get(ctx, dept); ok {
		return sch, nil
	}

	sch, err := s.repomanager.Routines(s.db).Get(ctx, dept)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, sch)
	return sch, nil
}

// CheckForUpdates reports whether the global metadata version or the
// department's own version moved past since.
func (s *RoutineService) CheckForUpdates(ctx context.Context, department string, since int64) (bool, error) {
	dept, err := normalizeDepartment(department)
	if err != nil {
		return false, err
	}

	meta, err := s.repomanager.Metadata(s.db).Get(ctx)
	if err != nil {
		return false, err
	}
	if meta.Version > since {
		return true, nil
	}

	v, err := s.repomanager.Routines(s.db).Version(ctx, dept)
	if err != nil {
		return false, err
	}
	return v > since, nil
}

func (s *RoutineService) MetadataVersion(ctx context.Context) (int64, error) {
	meta, err := s.repomanager.Metadata(s.db).Get(ctx)
	if err != nil {
		return 0, err
	}
	return meta.Version, nil
}

func (s *RoutineService) Maintenance(ctx context.Context) (models.MaintenanceInfo, error) {
	return s.repomanager.Metadata(s.db).Get(ctx)
}

// Publish replaces the department's schedule and returns the version it was
// stamped with. The version is never below the current time in milliseconds.
func (s *RoutineService) Publish(ctx context.Context, sch *models.Schedule, updateType string) (int64, error) {
	warnings, err := models.Validate(sch)
	if err != nil {
		return 0, err
	}
	for _, w := range warnings {
		s.logger.Warn(ctx, "publish warning", "department", sch.Department, "warning", w)
	}

	if updateType == "" {
		updateType = UpdateTypePublish
	}

	now := s.now().UTC()
	stored := *sch
	stored.Department = strings.TrimSpace(sch.Department)
	stored.ID = uuid.NewString()
	stored.UpdatedAt = now
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.Entries == nil {
		stored.Entries = []models.Entry{}
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		v, err := s.repomanager.Metadata(tx).Bump(ctx, now.UnixMilli(), updateType)
		if err != nil {
			return fmt.Errorf("bump version: %w", err)
		}
		stored.Version = v
		if err := s.repomanager.Routines(tx).Upsert(ctx, &stored); err != nil {
			return fmt.Errorf("store routine: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "routine published", "department", stored.Department, "version", stored.Version, "entries", len(stored.Entries))

	s.cache.Invalidate(ctx, stored.Department)
	if err := s.mirror.PutSchedule(ctx, &stored); err != nil {
		s.logger.Error(ctx, "mirror schedule failed", "department", stored.Department, "error", err)
	}
	s.mirrorMetadata(ctx)

	return stored.Version, nil
}

// Delete removes the department's schedule. Clients treat the resulting
// NotFound as an authoritative deletion on their next sync.
func (s *RoutineService) Delete(ctx context.Context, department string) (int64, error) {
	dept, err := normalizeDepartment(department)
	if err != nil {
		return 0, err
	}

	version, err := dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (int64, error) {
		removed, err := s.repomanager.Routines(tx).Delete(ctx, dept)
		if err != nil {
			return 0, err
		}
		if !removed {
			return 0, fmt.Errorf("%s: %w", dept, common.ErrNotFound)
		}
		return s.repomanager.Metadata(tx).Bump(ctx, s.now().UnixMilli(), UpdateTypeDelete)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "routine deleted", "department", dept, "version", version)

	s.cache.Invalidate(ctx, dept)
	if err := s.mirror.RemoveSchedule(ctx, dept); err != nil {
		s.logger.Error(ctx, "mirror delete failed", "department", dept, "error", err)
	}
	s.mirrorMetadata(ctx)

	return version, nil
}

// SetMaintenance stores the maintenance flags and bumps the version so
// clients pick them up on their next check.
func (s *RoutineService) SetMaintenance(ctx context.Context, info models.MaintenanceInfo) (int64, error) {
	if info.UpdateType == "" {
		info.UpdateType = "maintenance"
	}
	v, err := s.repomanager.Metadata(s.db).SetMaintenance(ctx, info, s.now().UnixMilli())
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "maintenance updated", "maintenance", info.MaintenanceMode, "semester_break", info.SemesterBreak, "version", v)
	s.mirrorMetadata(ctx)
	return v, nil
}

func (s *RoutineService) mirrorMetadata(ctx context.Context) {
	meta, err := s.repomanager.Metadata(s.db).Get(ctx)
	if err == nil {
		err = s.mirror.PutMetadata(ctx, meta)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error(ctx, "mirror metadata failed", "error", err)
	}
}
