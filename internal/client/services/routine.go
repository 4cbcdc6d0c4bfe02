package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/campusroutine/internal/client/cache"
	"github.com/dmitrijs2005/campusroutine/internal/client/client"
	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
)

// DayFetcher returns one user's entries for one day.
type DayFetcher interface {
	Day(ctx context.Context, u models.User, day models.Day) ([]models.Entry, error)
}

// RoutineService is what the shell talks to. It layers the in-memory caches
// over the sync service.
type RoutineService struct {
	sync   *SyncService
	cache  *cache.RoutineCache
	remote client.RemoteDataSource
	logger logging.Logger
}

var _ DayFetcher = (*RoutineService)(nil)

func NewRoutineService(sync *SyncService, c *cache.RoutineCache, remote client.RemoteDataSource, logger logging.Logger) *RoutineService {
	return &RoutineService{sync: sync, cache: c, remote: remote, logger: logger}
}

// Day tries the day cache, then the cached full schedule, then the sync
// service, populating the caches on the way out.
func (s *RoutineService) Day(ctx context.Context, u models.User, day models.Day) ([]models.Entry, error) {
	if items, ok := s.cache.Day(day, u.ID); ok {
		return items, nil
	}
	if items, ok := s.cache.DeriveDay(ctx, day, u); ok {
		return items, nil
	}

	sch, err := s.load(ctx, u)
	if err != nil {
		return nil, err
	}

	items, err := sch.ForDay(day, u)
	if err != nil {
		return nil, fmt.Errorf("%s for %s: %w", day, u.ID, err)
	}
	s.cache.PutDay(day, u.ID, items)
	return items, nil
}

func (s *RoutineService) ActiveDays(ctx context.Context, u models.User) ([]models.Day, error) {
	if days, ok := s.cache.ActiveDays(u.ID); ok {
		return days, nil
	}
	sch, err := s.Schedule(ctx, u)
	if err != nil {
		return nil, err
	}
	days := sch.ActiveDays(u)
	s.cache.PutActiveDays(u.ID, days)
	return days, nil
}

// Schedule returns the department schedule the user belongs to.
func (s *RoutineService) Schedule(ctx context.Context, u models.User) (*models.Schedule, error) {
	if sch, ok := s.cache.FullSchedule(u.ID); ok {
		return sch, nil
	}
	return s.load(ctx, u)
}

func (s *RoutineService) TimeSlots(ctx context.Context, u models.User) ([]string, error) {
	sch, err := s.Schedule(ctx, u)
	if err != nil {
		return nil, err
	}
	return sch.TimeSlots(), nil
}

// Refresh forces a remote fetch and rebuilds the user's caches from it.
func (s *RoutineService) Refresh(ctx context.Context, u models.User) (*models.Schedule, error) {
	sch, err := s.sync.Refresh(ctx, u.Department)
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateUser(u.ID)
	s.cache.PutFullSchedule(u.ID, sch)
	if !s.cache.PreloadAllDays(ctx, u) {
		s.logger.Warn(ctx, "day preload skipped", "user", u.ID)
	}
	s.cache.PutActiveDays(u.ID, sch.ActiveDays(u))
	return sch, nil
}

func (s *RoutineService) Maintenance(ctx context.Context) (models.MaintenanceInfo, error) {
	return s.remote.Maintenance(ctx)
}

// Logout forgets everything cached for the user.
func (s *RoutineService) Logout(u models.User) {
	s.cache.InvalidateUser(u.ID)
}

// Follow drops the user's cached views whenever a new snapshot of their
// department lands in the local store. It returns when ctx is done.
func (s *RoutineService) Follow(ctx context.Context, u models.User) {
	ch, cancel := s.sync.Observe(u.Department)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			s.cache.InvalidateUser(u.ID)
			s.logger.Debug(ctx, "local snapshot changed, caches dropped", "user", u.ID, "department", u.Department)
		}
	}
}

func (s *RoutineService) load(ctx context.Context, u models.User) (*models.Schedule, error) {
	sch, err := s.sync.GetSchedule(ctx, u.Department)
	if err != nil {
		return nil, err
	}
	s.cache.PutFullSchedule(u.ID, sch)
	return sch, nil
}
