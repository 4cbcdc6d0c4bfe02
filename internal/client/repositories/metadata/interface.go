// Package metadata keeps the sync layer's bookkeeping on the device: the
// last remote metadata version seen per department and the time of the last
// successful sync.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	// LastKnownVersion is 0 when nothing was recorded for department.
	LastKnownVersion(ctx context.Context, department string) (int64, error)
	SetLastKnownVersion(ctx context.Context, department string, v int64) error
	// LastSync is the zero time when department was never synced.
	LastSync(ctx context.Context, department string) (time.Time, error)
	SetLastSync(ctx context.Context, department string, at time.Time) error
	ForgetDepartment(ctx context.Context, department string) error
}
