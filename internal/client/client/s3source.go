package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/objectstore"
)

// S3Source reads the JSON documents the server mirrors into a bucket.
type S3Source struct {
	store *objectstore.Store
}

func NewS3Source(store *objectstore.Store) *S3Source {
	return &S3Source{store: store}
}

func (s *S3Source) CheckForUpdates(ctx context.Context, department string, since int64) (bool, error) {
	var sch models.Schedule
	err := s.store.GetJSON(ctx, objectstore.ScheduleKey(department), &sch)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return false, transient(err)
	}
	if err == nil && sch.Version > since {
		return true, nil
	}

	mv, err := s.MetadataVersion(ctx)
	if err != nil {
		return false, err
	}
	return mv > since, nil
}

func (s *S3Source) FetchLatest(ctx context.Context, department string) (*models.Schedule, error) {
	var sch models.Schedule
	if err := s.store.GetJSON(ctx, objectstore.ScheduleKey(department), &sch); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("no routine documents for %s: %w", department, common.ErrNotFound)
		}
		return nil, transient(err)
	}
	return &sch, nil
}

func (s *S3Source) MetadataVersion(ctx context.Context) (int64, error) {
	info, err := s.Maintenance(ctx)
	if err != nil {
		return 0, err
	}
	return info.Version, nil
}

// Maintenance returns zero flags when the metadata document does not exist.
func (s *S3Source) Maintenance(ctx context.Context) (models.MaintenanceInfo, error) {
	var info models.MaintenanceInfo
	err := s.store.GetJSON(ctx, objectstore.MetadataKey, &info)
	if errors.Is(err, common.ErrNotFound) {
		return models.MaintenanceInfo{}, nil
	}
	if err != nil {
		return models.MaintenanceInfo{}, transient(err)
	}
	return info, nil
}

func (s *S3Source) Ping(ctx context.Context) error {
	_, err := s.Maintenance(ctx)
	return err
}

func (s *S3Source) Close() error {
	return nil
}

func transient(err error) error {
	return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
}
