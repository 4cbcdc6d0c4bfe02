// Package metadata keeps the single row holding the global routine version
// and the maintenance flags.
package metadata

import (
	"context"

	"github.com/dmitrijs2005/campusroutine/internal/models"
)

type Repository interface {
	Get(ctx context.Context) (models.MaintenanceInfo, error)
	// Bump advances the global version to at least minVersion and records
	// updateType. It returns the new version.
	Bump(ctx context.Context, minVersion int64, updateType string) (int64, error)
	// SetMaintenance stores the flags of info and bumps the version.
	SetMaintenance(ctx context.Context, info models.MaintenanceInfo, minVersion int64) (int64, error)
}
