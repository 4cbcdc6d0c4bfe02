// Package cache keeps recently served department schedules in Redis so
// FetchLatest can skip the database. Every failure degrades to a miss.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	goredis "github.com/redis/go-redis/v9"
)

// SnapshotCache is what the routine service needs from a cache.
type SnapshotCache interface {
	Get(ctx context.Context, department string) (*models.Schedule, bool)
	Set(ctx context.Context, s *models.Schedule)
	Invalidate(ctx context.Context, department string)
	Close() error
}

const keyPrefix = "routine:snapshot:"

func key(department string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(department))
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisCache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewRedisCache connects and pings the server.
func NewRedisCache(opts RedisOptions, logger logging.Logger) (*RedisCache, error) {
	c := newRedisCache(opts, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		_ = c.rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	logger.Info(ctx, "redis connected", "addr", opts.Addr)
	return c, nil
}

func newRedisCache(opts RedisOptions, logger logging.Logger) *RedisCache {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &RedisCache{rdb: rdb, ttl: opts.TTL, logger: logger.With("module", "snapshot_cache")}
}

func (c *RedisCache) Get(ctx context.Context, department string) (*models.Schedule, bool) {
	raw, err := c.rdb.Get(ctx, key(department)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.logger.Warn(ctx, "cache read failed", "department", department, "error", err)
		}
		return nil, false
	}

	var s models.Schedule
	if err := json.Unmarshal(raw, &s); err != nil {
		c.logger.Warn(ctx, "cached snapshot unreadable", "department", department, "error", err)
		return nil, false
	}
	return &s, true
}

func (c *RedisCache) Set(ctx context.Context, s *models.Schedule) {
	raw, err := json.Marshal(s)
	if err != nil {
		c.logger.Warn(ctx, "cache encode failed", "department", s.Department, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key(s.Department), raw, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "cache write failed", "department", s.Department, "error", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, department string) {
	if err := c.rdb.Del(ctx, key(department)).Err(); err != nil {
		c.logger.Warn(ctx, "cache invalidate failed", "department", department, "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// Noop is used when no Redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (*models.Schedule, bool) { return nil, false }
func (Noop) Set(context.Context, *models.Schedule)                {}
func (Noop) Invalidate(context.Context, string)                   {}
func (Noop) Close() error                                         { return nil }
