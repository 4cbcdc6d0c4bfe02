package schedules

import (
	"context"

	"github.com/dmitrijs2005/campusroutine/internal/models"
)

type Repository interface {
	// Get returns (nil, nil) when no snapshot is stored for department.
	Get(ctx context.Context, department string) (*models.Schedule, error)
	Save(ctx context.Context, s *models.Schedule) error
	Clear(ctx context.Context, department string) error
	// Observe streams snapshots written after the call; the first value
	// may be the latest one written before it.
	Observe(department string) (<-chan *models.Schedule, func())
	TimeSlots(ctx context.Context, department string) ([]string, error)
}
