// Package server wires the routine backend: PostgreSQL, the optional Redis
// snapshot cache and S3 mirror, and the gRPC server.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/objectstore"
	"github.com/dmitrijs2005/campusroutine/internal/server/cache"
	"github.com/dmitrijs2005/campusroutine/internal/server/config"
	"github.com/dmitrijs2005/campusroutine/internal/server/publish"
	"github.com/dmitrijs2005/campusroutine/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/campusroutine/internal/server/services"

	gs "github.com/dmitrijs2005/campusroutine/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	cache    cache.SnapshotCache
	routines *services.RoutineService
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	snapshots := newSnapshotCache(ctx, c, logger)

	mirror, err := newMirror(ctx, c)
	if err != nil {
		db.Close()
		snapshots.Close()
		return nil, err
	}

	rs := services.NewRoutineService(db, rm, snapshots, mirror, logger)

	return &App{config: c, logger: logger, db: db, cache: snapshots, routines: rs}, nil
}

// newSnapshotCache falls back to no caching when Redis is not configured or
// unreachable.
func newSnapshotCache(ctx context.Context, c *config.Config, logger logging.Logger) cache.SnapshotCache {
	if c.RedisAddr == "" {
		return cache.Noop{}
	}
	rc, err := cache.NewRedisCache(cache.RedisOptions{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		TTL:      c.SnapshotCacheTTL,
	}, logger)
	if err != nil {
		logger.Warn(ctx, "snapshot cache disabled", "error", err)
		return cache.Noop{}
	}
	return rc
}

func newMirror(ctx context.Context, c *config.Config) (publish.Mirror, error) {
	if !c.S3MirrorEnabled {
		return publish.Noop{}, nil
	}
	oc := c.ObjectStore()
	api, err := objectstore.NewClient(ctx, oc)
	if err != nil {
		return nil, fmt.Errorf("s3 mirror init error: %w", err)
	}
	return publish.NewS3Mirror(objectstore.NewStore(api, oc.Bucket)), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.routines, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "shutdown", "error", err)
	}
}

func (app *App) Close() error {
	return errors.Join(app.cache.Close(), app.db.Close())
}
