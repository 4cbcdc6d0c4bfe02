// Package routines stores one published schedule per department.
package routines

import (
	"context"

	"github.com/dmitrijs2005/campusroutine/internal/models"
)

type Repository interface {
	// Get fails with common.ErrNotFound when the department has no routine.
	Get(ctx context.Context, department string) (*models.Schedule, error)
	Upsert(ctx context.Context, s *models.Schedule) error
	// Delete reports whether a routine was removed.
	Delete(ctx context.Context, department string) (bool, error)
	// Version is 0 when the department has no routine.
	Version(ctx context.Context, department string) (int64, error)
	Departments(ctx context.Context) ([]string, error)
}
