// Package publish mirrors published routines into the object store layout
// read by clients configured with the S3 remote.
package publish

import (
	"context"

	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/objectstore"
)

type Mirror interface {
	PutSchedule(ctx context.Context, s *models.Schedule) error
	RemoveSchedule(ctx context.Context, department string) error
	PutMetadata(ctx context.Context, info models.MaintenanceInfo) error
}

// objects is the part of *objectstore.Store the mirror writes through.
type objects interface {
	PutJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

type S3Mirror struct {
	store objects
}

var _ Mirror = (*S3Mirror)(nil)

func NewS3Mirror(store *objectstore.Store) *S3Mirror {
	return &S3Mirror{store: store}
}

func (m *S3Mirror) PutSchedule(ctx context.Context, s *models.Schedule) error {
	return m.store.PutJSON(ctx, objectstore.ScheduleKey(s.Department), s)
}

func (m *S3Mirror) RemoveSchedule(ctx context.Context, department string) error {
	return m.store.Delete(ctx, objectstore.ScheduleKey(department))
}

func (m *S3Mirror) PutMetadata(ctx context.Context, info models.MaintenanceInfo) error {
	return m.store.PutJSON(ctx, objectstore.MetadataKey, info)
}

type Noop struct{}

func (Noop) PutSchedule(context.Context, *models.Schedule) error       { return nil }
func (Noop) RemoveSchedule(context.Context, string) error              { return nil }
func (Noop) PutMetadata(context.Context, models.MaintenanceInfo) error { return nil }
