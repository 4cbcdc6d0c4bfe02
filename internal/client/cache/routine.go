package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/notify"
)

// TTLs holds the lifetime of each cache kind. Kinds never share a TTL.
type TTLs struct {
	Day          time.Duration
	FullSchedule time.Duration
	ActiveDays   time.Duration
	Week         time.Duration
}

func DefaultTTLs() TTLs {
	return TTLs{
		Day:          5 * time.Minute,
		FullSchedule: 30 * time.Minute,
		ActiveDays:   30 * time.Minute,
		Week:         10 * time.Minute,
	}
}

// the full schedule and active days kinds hold a single owner-tagged slot
const slot = "current"

// Stats is a snapshot of what the cache currently holds.
type Stats struct {
	DayEntries      int
	HasFullSchedule bool
	HasActiveDays   bool
	LastUpdate      time.Time
}

// RoutineCache keeps the current user's routine state in memory.
// Construct one per process and reset it on logout or user switch.
type RoutineCache struct {
	ttl    TTLs
	now    func() time.Time
	logger logging.Logger

	days   *TimedCache[string, []models.Entry]
	full   *TimedCache[string, *models.Schedule]
	active *TimedCache[string, []models.Day]

	mu         sync.Mutex
	lastUpdate time.Time
	updates    *notify.Broadcaster[time.Time]
}

type Option func(*RoutineCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *RoutineCache) { c.now = now }
}

func NewRoutineCache(ttl TTLs, logger logging.Logger, opts ...Option) *RoutineCache {
	c := &RoutineCache{
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With("module", "routine_cache"),
		updates: notify.NewBroadcaster[time.Time](),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.days = NewTimedCache[string, []models.Entry](c.now)
	c.full = NewTimedCache[string, *models.Schedule](c.now)
	c.active = NewTimedCache[string, []models.Day](c.now)
	return c
}

func (c *RoutineCache) TTLs() TTLs {
	return c.ttl
}

func dayKey(userID string, day models.Day) string {
	return userID + "_" + string(day)
}

func (c *RoutineCache) Day(day models.Day, userID string) ([]models.Entry, bool) {
	return c.days.Get(dayKey(userID, day), userID, c.ttl.Day)
}

func (c *RoutineCache) PutDay(day models.Day, userID string, items []models.Entry) {
	c.days.Put(dayKey(userID, day), userID, items)
	c.touch()
}

func (c *RoutineCache) FullSchedule(userID string) (*models.Schedule, bool) {
	return c.full.Get(slot, userID, c.ttl.FullSchedule)
}

func (c *RoutineCache) PutFullSchedule(userID string, s *models.Schedule) {
	c.full.Put(slot, userID, s)
	c.touch()
}

func (c *RoutineCache) ActiveDays(userID string) ([]models.Day, bool) {
	return c.active.Get(slot, userID, c.ttl.ActiveDays)
}

func (c *RoutineCache) PutActiveDays(userID string, days []models.Day) {
	c.active.Put(slot, userID, days)
	c.touch()
}

// DeriveDay serves a day from the cached full schedule and stores the
// result in the day cache as a side effect. A missing or expired full
// schedule, or one that fails to filter, is reported as a miss.
func (c *RoutineCache) DeriveDay(ctx context.Context, day models.Day, u models.User) ([]models.Entry, bool) {
	s, ok := c.FullSchedule(u.ID)
	if !ok {
		return nil, false
	}

	items, err := s.ForDay(day, u)
	if err != nil {
		c.logger.Warn(ctx, "cannot derive day from full schedule", "day", day, "error", err)
		return nil, false
	}

	c.PutDay(day, u.ID, items)
	return items, true
}

// PreloadAllDays fills all seven day entries from the cached full schedule.
// Nothing is written unless every day filters cleanly.
func (c *RoutineCache) PreloadAllDays(ctx context.Context, u models.User) bool {
	s, ok := c.FullSchedule(u.ID)
	if !ok {
		return false
	}

	byDay := make(map[models.Day][]models.Entry, len(models.Week))
	for _, d := range models.Week {
		items, err := s.ForDay(d, u)
		if err != nil {
			c.logger.Warn(ctx, "preload aborted", "day", d, "error", err)
			return false
		}
		byDay[d] = items
	}

	for d, items := range byDay {
		c.days.Put(dayKey(u.ID, d), u.ID, items)
	}
	c.touch()
	return true
}

// InvalidateUser drops every entry owned by userID.
func (c *RoutineCache) InvalidateUser(userID string) {
	c.days.DeleteOwner(userID)
	c.full.DeleteOwner(userID)
	c.active.DeleteOwner(userID)
	c.touch()
}

func (c *RoutineCache) InvalidateAll() {
	c.days.Clear()
	c.full.Clear()
	c.active.Clear()
	c.touch()
}

func (c *RoutineCache) Stats() Stats {
	_, hasFull := c.full.Peek(slot)
	_, hasActive := c.active.Peek(slot)
	return Stats{
		DayEntries:      c.days.Len(),
		HasFullSchedule: hasFull,
		HasActiveDays:   hasActive,
		LastUpdate:      c.LastUpdate(),
	}
}

// Updates subscribes to mutation timestamps.
func (c *RoutineCache) Updates() (<-chan time.Time, func()) {
	return c.updates.Subscribe()
}

func (c *RoutineCache) LastUpdate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdate
}

// touch publishes a strictly increasing timestamp even if the clock stalls.
func (c *RoutineCache) touch() {
	c.mu.Lock()
	ts := c.now()
	if !ts.After(c.lastUpdate) {
		ts = c.lastUpdate.Add(time.Nanosecond)
	}
	c.lastUpdate = ts
	c.updates.Publish(ts)
	c.mu.Unlock()
}
