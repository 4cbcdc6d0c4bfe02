package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/client/cache"
	"github.com/dmitrijs2005/campusroutine/internal/client/client"
	"github.com/dmitrijs2005/campusroutine/internal/client/config"
	"github.com/dmitrijs2005/campusroutine/internal/client/services"
	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/dmitrijs2005/campusroutine/internal/objectstore"
	"golang.org/x/term"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type routineReader interface {
	Day(ctx context.Context, u models.User, day models.Day) ([]models.Entry, error)
	ActiveDays(ctx context.Context, u models.User) ([]models.Day, error)
	TimeSlots(ctx context.Context, u models.User) ([]string, error)
	Refresh(ctx context.Context, u models.User) (*models.Schedule, error)
	Maintenance(ctx context.Context) (models.MaintenanceInfo, error)
	Logout(u models.User)
	Follow(ctx context.Context, u models.User)
}

type syncer interface {
	Sync(ctx context.Context, department string) (services.SyncResult, error)
	SyncInBackground(ctx context.Context, department string)
	Status(ctx context.Context, department string) (services.SyncStatus, error)
	Wait()
}

type weekReader interface {
	Items(ctx context.Context, u models.User) ([]models.Entry, error)
	Refresh(ctx context.Context, u models.User) ([]models.Entry, error)
	Invalidate()
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	user     models.User
	routines routineReader
	sync     syncer
	week     weekReader
	remote   pinger
	stats    func() cache.Stats
	now      func() time.Time
	closers  []func() error

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database, connects the configured remote source and
// builds the service stack around them.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	remote, err := newRemote(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return newApp(c, logger, db, remote), nil
}

func newRemote(ctx context.Context, c *config.Config) (client.Client, error) {
	switch c.Remote {
	case config.RemoteS3:
		s3c, err := objectstore.NewClient(ctx, c.S3)
		if err != nil {
			return nil, err
		}
		return client.NewS3Source(objectstore.NewStore(s3c, c.S3.Bucket)), nil
	default:
		return client.NewGRPCClient(c.ServerEndpointAddr)
	}
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, remote client.Client) *App {
	repos := client.NewRepositories(db)
	rc := cache.NewRoutineCache(c.TTLs, logger)
	ss := services.NewSyncService(remote, repos.Schedules, repos.Metadata, logger,
		services.WithBackgroundTimeout(c.BackgroundSyncTimeout))
	rs := services.NewRoutineService(ss, rc, remote, logger)
	ws := services.NewWeekService(rs, c.TTLs.Week, logger, nil)

	return &App{
		config:   c,
		logger:   logger,
		user:     c.User,
		routines: rs,
		sync:     ss,
		week:     ws,
		remote:   remote,
		stats:    rc.Stats,
		now:      time.Now,
		closers:  []func() error{remote.Close, db.Close},
		mode:     ModeOffline,
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// setMode reports whether the mode changed.
func (a *App) setMode(ctx context.Context, mode Mode) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode == mode {
		return false
	}
	a.mode = mode
	a.logger.Info(ctx, "switched mode", "mode", mode)
	return true
}

// Run starts the watchers and the REPL and blocks until the user exits or
// ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	printlnFn(fmt.Sprintf("Campus routine for %s (type 'help' for commands)", a.user.Name))
	a.warmUp(ctx)

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	go a.routines.Follow(ctx, a.user)

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin), interactive)
}

// warmUp shows the maintenance notice if there is one and loads today's
// routine so the first command is served from cache.
func (a *App) warmUp(ctx context.Context) {
	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if info, err := a.routines.Maintenance(wctx); err == nil && info.Blocking() {
		printlnFn(renderMaintenance(info))
	}
	if _, err := a.routines.Day(wctx, a.user, models.DayOf(a.now())); err != nil {
		a.logger.Warn(ctx, "initial load failed", "error", err)
	}
}

// StartOnlineStatusWatcher pings the remote source every interval. Coming
// back online triggers a background sync of the user's department.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.remote.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	if a.setMode(ctx, ModeOnline) {
		a.sync.SyncInBackground(ctx, a.user.Department)
	}
}

func (a *App) status() string {
	return fmt.Sprintf("(%s %s)", a.user.ID, a.Mode())
}

// Close waits for background syncs and releases the database and connection.
func (a *App) Close() error {
	a.sync.Wait()
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
