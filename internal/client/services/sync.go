package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/client/client"
	"github.com/dmitrijs2005/campusroutine/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/campusroutine/internal/client/repositories/schedules"
	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// State is the sync state of one department on this device.
type State string

const (
	StateUnsynced      State = "unsynced"
	StateSyncing       State = "syncing"
	StateSynced        State = "synced"
	StateStale         State = "stale"
	StateFailed        State = "failed"
	StateLocalFallback State = "local-fallback"
)

const defaultBackgroundTimeout = 30 * time.Second

// SyncResult describes what a Sync call did to the local snapshot.
type SyncResult struct {
	// Updated is set when the local snapshot was replaced.
	Updated bool
	// Deleted is set when the remote side had no documents and the local
	// snapshot was cleared.
	Deleted  bool
	Version  int64
	Schedule *models.Schedule
}

// SyncStatus is a point-in-time view of a department's sync bookkeeping.
type SyncStatus struct {
	Department       string
	State            State
	HasLocal         bool
	LocalVersion     int64
	LastKnownVersion int64
	LastSync         time.Time
	LastError        string
}

type SyncOption func(*SyncService)

// WithSyncClock overrides the clock used for sync timestamps and empty
// schedule versions.
func WithSyncClock(now func() time.Time) SyncOption {
	return func(s *SyncService) { s.now = now }
}

// WithBackgroundTimeout bounds each detached background sync.
func WithBackgroundTimeout(d time.Duration) SyncOption {
	return func(s *SyncService) {
		if d > 0 {
			s.backgroundTimeout = d
		}
	}
}

// SyncService keeps the local snapshot of each department in step with the
// remote data source. Reads are served locally whenever possible; remote
// failures never destroy local data.
type SyncService struct {
	remote client.RemoteDataSource
	store  schedules.Repository
	meta   metadata.Repository
	logger logging.Logger

	now               func() time.Time
	backgroundTimeout time.Duration

	flights singleflight.Group
	locks   keyedMutex
	wg      sync.WaitGroup

	mu     sync.Mutex
	states map[string]*deptState
}

type deptState struct {
	state   State
	lastErr error
}

func NewSyncService(remote client.RemoteDataSource, store schedules.Repository, meta metadata.Repository, logger logging.Logger, opts ...SyncOption) *SyncService {
	s := &SyncService{
		remote:            remote,
		store:             store,
		meta:              meta,
		logger:            logger,
		now:               time.Now,
		backgroundTimeout: defaultBackgroundTimeout,
		states:            make(map[string]*deptState),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetSchedule returns the local snapshot when there is one and refreshes it
// in the background. Otherwise it syncs in the foreground. A department the
// remote side has no documents for yields common.ErrNotFound.
func (s *SyncService) GetSchedule(ctx context.Context, department string) (*models.Schedule, error) {
	local, err := s.store.Get(ctx, department)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrLocalStorage, department, err)
	}

	if local != nil {
		s.SyncInBackground(ctx, department)
		return local, nil
	}

	res, err := s.Sync(ctx, department)
	if err != nil {
		return nil, err
	}
	if res.Deleted || res.Schedule == nil {
		return nil, fmt.Errorf("schedule for %s: %w", department, common.ErrNotFound)
	}
	return res.Schedule, nil
}

// SyncInBackground starts a detached sync. The caller's cancellation does
// not stop it; the configured background timeout does. Failures are logged.
func (s *SyncService) SyncInBackground(ctx context.Context, department string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.backgroundTimeout)
		defer cancel()

		if _, err := s.Sync(bctx, department); err != nil {
			s.logger.Warn(bctx, "background sync failed", "department", department, "error", err)
		}
	}()
}

// Wait blocks until all background syncs started so far have finished.
func (s *SyncService) Wait() {
	s.wg.Wait()
}

// Sync brings the local snapshot of department up to date. Concurrent calls
// for the same department share one run.
func (s *SyncService) Sync(ctx context.Context, department string) (SyncResult, error) {
	v, err, shared := s.flights.Do(department, func() (any, error) {
		return s.sync(ctx, department)
	})
	if shared {
		s.logger.Debug(ctx, "joined in-flight sync", "department", department)
	}
	if err != nil {
		return SyncResult{}, err
	}
	return v.(SyncResult), nil
}

func (s *SyncService) sync(ctx context.Context, department string) (SyncResult, error) {
	s.setState(department, StateSyncing, nil)

	local, lastMeta, err := s.localVersions(ctx, department)
	if err != nil {
		s.setState(department, StateFailed, err)
		return SyncResult{}, err
	}

	current := lastMeta
	if local != nil {
		current = max(current, local.Version)
	}

	updated, err := s.remote.CheckForUpdates(ctx, department, current)
	if err != nil {
		s.setState(department, StateFailed, err)
		return SyncResult{}, fmt.Errorf("check for updates: %w", err)
	}

	if !updated && local != nil {
		if err := s.meta.SetLastSync(ctx, department, s.now()); err != nil {
			s.logger.Warn(ctx, "record last sync", "department", department, "error", err)
		}
		s.setState(department, StateSynced, nil)
		s.logger.Debug(ctx, "schedule up to date", "department", department, "version", local.Version)
		return SyncResult{Version: local.Version, Schedule: local}, nil
	}

	if local != nil {
		s.setState(department, StateStale, nil)
	}

	metaVersion, err := s.remote.MetadataVersion(ctx)
	if err != nil {
		s.setState(department, StateFailed, err)
		return SyncResult{}, fmt.Errorf("metadata version: %w", err)
	}

	remote, err := s.remote.FetchLatest(ctx, department)
	if errors.Is(err, common.ErrNotFound) {
		version := max(metaVersion, lastMeta)
		if err := s.clear(ctx, department, version); err != nil {
			s.setState(department, StateFailed, err)
			return SyncResult{}, err
		}
		s.setState(department, StateSynced, nil)
		s.logger.Info(ctx, "remote schedule removed, local snapshot cleared", "department", department)
		return SyncResult{Deleted: true, Version: version}, nil
	}
	if err != nil {
		s.setState(department, StateFailed, err)
		return SyncResult{}, fmt.Errorf("fetch latest: %w", err)
	}

	version := max(remote.Version, metaVersion)
	if local != nil {
		version = max(version, local.Version)
	}

	snap := s.snapshot(remote, department, version)
	if err := s.replace(ctx, snap); err != nil {
		s.setState(department, StateFailed, err)
		return SyncResult{}, err
	}

	s.setState(department, StateSynced, nil)
	s.logger.Info(ctx, "schedule synced", "department", department, "version", version, "entries", len(snap.Entries))
	return SyncResult{Updated: true, Version: version, Schedule: snap}, nil
}

// Refresh fetches the department's schedule unconditionally. When the remote
// side has no documents the local snapshot is replaced by an empty one. Any
// other remote failure falls back to the local snapshot if there is one.
func (s *SyncService) Refresh(ctx context.Context, department string) (*models.Schedule, error) {
	v, err, _ := s.flights.Do("refresh:"+department, func() (any, error) {
		return s.refresh(ctx, department)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Schedule), nil
}

func (s *SyncService) refresh(ctx context.Context, department string) (*models.Schedule, error) {
	s.setState(department, StateSyncing, nil)

	remote, err := s.remote.FetchLatest(ctx, department)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return s.fallback(ctx, department, err)
	}
	notFound := err != nil

	local, lastMeta, err := s.localVersions(ctx, department)
	if err != nil {
		s.setState(department, StateFailed, err)
		return nil, err
	}

	metaVersion, merr := s.remote.MetadataVersion(ctx)
	if merr != nil {
		s.logger.Warn(ctx, "metadata version unavailable during refresh", "department", department, "error", merr)
	}

	// Only server-issued versions are persisted; the device clock may run ahead.
	version := max(metaVersion, lastMeta)
	if local != nil {
		version = max(version, local.Version)
	}

	if notFound {
		return s.refreshEmpty(ctx, department, version)
	}

	version = max(version, remote.Version)

	snap := s.snapshot(remote, department, version)
	if err := s.replace(ctx, snap); err != nil {
		s.setState(department, StateFailed, err)
		return nil, err
	}
	s.setState(department, StateSynced, nil)
	return snap, nil
}

// refreshEmpty stores an empty snapshot at the server-derived version and
// hands the caller one stamped with the local clock.
func (s *SyncService) refreshEmpty(ctx context.Context, department string, version int64) (*models.Schedule, error) {
	now := s.now()
	empty := &models.Schedule{
		ID:         uuid.NewString(),
		Department: department,
		Entries:    []models.Entry{},
		Version:    version,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.replace(ctx, empty); err != nil {
		s.setState(department, StateFailed, err)
		return nil, err
	}
	s.setState(department, StateSynced, nil)
	s.logger.Info(ctx, "remote has no schedule, stored empty snapshot", "department", department, "version", version)

	out := *empty
	out.Entries = []models.Entry{}
	out.Version = now.UnixMilli()
	return &out, nil
}

func (s *SyncService) fallback(ctx context.Context, department string, cause error) (*models.Schedule, error) {
	local, err := s.store.Get(ctx, department)
	if err != nil || local == nil {
		s.setState(department, StateFailed, cause)
		return nil, fmt.Errorf("refresh %s: %w", department, cause)
	}
	s.setState(department, StateLocalFallback, cause)
	s.logger.Warn(ctx, "refresh failed, serving local snapshot", "department", department, "error", cause)
	return local, nil
}

// CheckForUpdates asks the remote side whether anything newer than the
// local snapshot or the last known metadata version exists.
func (s *SyncService) CheckForUpdates(ctx context.Context, department string) (bool, error) {
	local, lastMeta, err := s.localVersions(ctx, department)
	if err != nil {
		return false, err
	}
	current := lastMeta
	if local != nil {
		current = max(current, local.Version)
	}
	return s.remote.CheckForUpdates(ctx, department, current)
}

// ClearLocal drops the department's snapshot and bookkeeping.
func (s *SyncService) ClearLocal(ctx context.Context, department string) error {
	unlock := s.locks.lock(department)
	defer unlock()

	if err := s.store.Clear(ctx, department); err != nil {
		return fmt.Errorf("%w: clear %s: %v", common.ErrLocalStorage, department, err)
	}
	if err := s.meta.ForgetDepartment(ctx, department); err != nil {
		return fmt.Errorf("%w: forget %s: %v", common.ErrLocalStorage, department, err)
	}
	s.setState(department, StateUnsynced, nil)
	return nil
}

// HasLocal reports whether a snapshot is stored for department.
func (s *SyncService) HasLocal(ctx context.Context, department string) (bool, error) {
	local, err := s.store.Get(ctx, department)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %v", common.ErrLocalStorage, department, err)
	}
	return local != nil, nil
}

func (s *SyncService) Status(ctx context.Context, department string) (SyncStatus, error) {
	st := SyncStatus{Department: department}
	st.State, st.LastError = s.stateOf(department)

	local, lastMeta, err := s.localVersions(ctx, department)
	if err != nil {
		return st, err
	}
	st.LastKnownVersion = lastMeta
	if local != nil {
		st.HasLocal = true
		st.LocalVersion = local.Version
	}

	last, err := s.meta.LastSync(ctx, department)
	if err != nil {
		return st, fmt.Errorf("%w: %v", common.ErrLocalStorage, err)
	}
	st.LastSync = last
	return st, nil
}

func (s *SyncService) State(department string) State {
	st, _ := s.stateOf(department)
	return st
}

// Observe streams the department's local snapshots as they are written.
func (s *SyncService) Observe(department string) (<-chan *models.Schedule, func()) {
	return s.store.Observe(department)
}

func (s *SyncService) localVersions(ctx context.Context, department string) (*models.Schedule, int64, error) {
	local, err := s.store.Get(ctx, department)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read %s: %v", common.ErrLocalStorage, department, err)
	}
	lastMeta, err := s.meta.LastKnownVersion(ctx, department)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: metadata %s: %v", common.ErrLocalStorage, department, err)
	}
	return local, lastMeta, nil
}

func (s *SyncService) snapshot(remote *models.Schedule, department string, version int64) *models.Schedule {
	snap := *remote
	snap.Department = department
	snap.Version = version
	snap.Entries = append([]models.Entry(nil), remote.Entries...)
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = s.now()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = snap.UpdatedAt
	}
	return &snap
}

// replace clears the department and writes snap under the department lock,
// then records the version and sync time.
func (s *SyncService) replace(ctx context.Context, snap *models.Schedule) error {
	unlock := s.locks.lock(snap.Department)
	defer unlock()

	if err := s.store.Clear(ctx, snap.Department); err != nil {
		return fmt.Errorf("%w: clear %s: %v", common.ErrLocalStorage, snap.Department, err)
	}
	if err := s.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("%w: save %s: %v", common.ErrLocalStorage, snap.Department, err)
	}
	return s.record(ctx, snap.Department, snap.Version)
}

func (s *SyncService) clear(ctx context.Context, department string, version int64) error {
	unlock := s.locks.lock(department)
	defer unlock()

	if err := s.store.Clear(ctx, department); err != nil {
		return fmt.Errorf("%w: clear %s: %v", common.ErrLocalStorage, department, err)
	}
	return s.record(ctx, department, version)
}

func (s *SyncService) record(ctx context.Context, department string, version int64) error {
	if err := s.meta.SetLastKnownVersion(ctx, department, version); err != nil {
		return fmt.Errorf("%w: version %s: %v", common.ErrLocalStorage, department, err)
	}
	if err := s.meta.SetLastSync(ctx, department, s.now()); err != nil {
		return fmt.Errorf("%w: last sync %s: %v", common.ErrLocalStorage, department, err)
	}
	return nil
}

func (s *SyncService) setState(department string, st State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.states[department]
	if !ok {
		d = &deptState{}
		s.states[department] = d
	}
	d.state = st
	d.lastErr = err
}

func (s *SyncService) stateOf(department string) (State, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.states[department]
	if !ok {
		return StateUnsynced, ""
	}
	if d.lastErr != nil {
		return d.state, d.lastErr.Error()
	}
	return d.state, ""
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
