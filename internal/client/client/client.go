package client

import (
	"context"

	"github.com/dmitrijs2005/campusroutine/internal/models"
)

// RemoteDataSource is the remote routine database as seen by the sync layer.
type RemoteDataSource interface {
	// CheckForUpdates reports whether the department's schedule or the global
	// metadata version is newer than since.
	CheckForUpdates(ctx context.Context, department string, since int64) (bool, error)
	// FetchLatest fails with common.ErrNotFound when the department has no
	// routine documents.
	FetchLatest(ctx context.Context, department string) (*models.Schedule, error)
	MetadataVersion(ctx context.Context) (int64, error)
	Maintenance(ctx context.Context) (models.MaintenanceInfo, error)
}

// Client is a RemoteDataSource with a connection to manage.
type Client interface {
	RemoteDataSource
	Ping(ctx context.Context) error
	Close() error
}
