package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/client/cache"
	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"golang.org/x/sync/errgroup"
)

// WeekService assembles a user's whole week from per-day fetches and keeps
// the merged list for the week TTL.
type WeekService struct {
	days   DayFetcher
	cache  *cache.TimedCache[string, []models.Entry]
	ttl    time.Duration
	logger logging.Logger
}

func NewWeekService(days DayFetcher, ttl time.Duration, logger logging.Logger, now func() time.Time) *WeekService {
	if now == nil {
		now = time.Now
	}
	return &WeekService{
		days:   days,
		cache:  cache.NewTimedCache[string, []models.Entry](now),
		ttl:    ttl,
		logger: logger,
	}
}

// Items returns the cached week for u or assembles a fresh one.
func (w *WeekService) Items(ctx context.Context, u models.User) ([]models.Entry, error) {
	if items, ok := w.cache.Get(u.ID, u.ID, w.ttl); ok {
		return items, nil
	}
	return w.assemble(ctx, u)
}

// Refresh ignores the cached week.
func (w *WeekService) Refresh(ctx context.Context, u models.User) ([]models.Entry, error) {
	w.cache.Delete(u.ID)
	return w.assemble(ctx, u)
}

// Cached returns the week for u without fetching anything.
func (w *WeekService) Cached(u models.User) ([]models.Entry, bool) {
	return w.cache.Get(u.ID, u.ID, w.ttl)
}

func (w *WeekService) Invalidate() {
	w.cache.Clear()
}

// assemble fetches every day concurrently. A failed day contributes nothing
// and does not cancel the others. If every day fails nothing is cached and
// the first failure is returned.
func (w *WeekService) assemble(ctx context.Context, u models.User) ([]models.Entry, error) {
	perDay := make([][]models.Entry, len(models.Week))
	var failed atomic.Int32

	var g errgroup.Group
	for i, day := range models.Week {
		i, day := i, day
		g.Go(func() error {
			items, err := w.days.Day(ctx, u, day)
			if err != nil {
				failed.Add(1)
				w.logger.Warn(ctx, "week: day fetch failed", "user", u.ID, "day", day, "error", err)
				return fmt.Errorf("%s: %w", day, err)
			}
			perDay[i] = items
			return nil
		})
	}
	err := g.Wait()

	if int(failed.Load()) == len(models.Week) {
		return nil, fmt.Errorf("week for %s: %w", u.ID, err)
	}

	merged := mergeWeek(perDay)
	w.cache.Put(u.ID, u.ID, merged)
	return merged, nil
}

// mergeWeek concatenates days in week order, keeping the first entry for
// each composite key.
func mergeWeek(perDay [][]models.Entry) []models.Entry {
	seen := make(map[string]struct{})
	out := make([]models.Entry, 0)
	for _, items := range perDay {
		for _, e := range items {
			k := e.Key()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}
