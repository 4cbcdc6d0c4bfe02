package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/client/cache"
	"github.com/dmitrijs2005/campusroutine/internal/common"
	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	studentJ = models.User{ID: "u-j", Department: "CSE", Role: models.RoleStudent, Batch: "61", Section: "J"}
	studentK = models.User{ID: "u-k", Department: "CSE", Role: models.RoleStudent, Batch: "61", Section: "K"}
)

func newRoutineFixture(t *testing.T, remote *fakeRemote) (*RoutineService, *syncFixture, *cache.RoutineCache) {
	t.Helper()
	f := newSyncFixture(t, remote)
	c := cache.NewRoutineCache(cache.DefaultTTLs(), logging.NewNop(), cache.WithClock(func() time.Time { return testNow }))
	return NewRoutineService(f.svc, c, remote, logging.NewNop()), f, c
}

func weekSchedule() *models.Schedule {
	return remoteSchedule(100,
		cse("1", models.Sunday, "10:00 AM", "11:30 AM", "CSE102", "J"),
		cse("2", models.Sunday, "08:30 AM", "10:00 AM", "CSE101", "J"),
		cse("3", models.Sunday, "08:30 AM", "10:00 AM", "CSE101", "K"),
		cse("4", models.Tuesday, "01:00 PM", "02:30 PM", "CSE103", "J1"),
	)
}

func TestRoutineService_Day_ColdStartFillsCaches(t *testing.T) {
	remote := &fakeRemote{schedule: weekSchedule()}
	svc, _, c := newRoutineFixture(t, remote)
	ctx := context.Background()

	items, err := svc.Day(ctx, studentJ, models.Sunday)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "CSE101", items[0].CourseCode)
	assert.Equal(t, "CSE102", items[1].CourseCode)

	cached, ok := c.Day(models.Sunday, studentJ.ID)
	require.True(t, ok)
	assert.Equal(t, items, cached)
	_, ok = c.FullSchedule(studentJ.ID)
	assert.True(t, ok)

	// second day comes from the cached full schedule
	_, err = svc.Day(ctx, studentJ, models.Tuesday)
	require.NoError(t, err)
	_, fetch := remote.calls()
	assert.Equal(t, 1, fetch)
}

func TestRoutineService_Day_PrincipalsDoNotShareViews(t *testing.T) {
	svc, _, _ := newRoutineFixture(t, &fakeRemote{schedule: weekSchedule()})
	ctx := context.Background()

	j, err := svc.Day(ctx, studentJ, models.Sunday)
	require.NoError(t, err)
	k, err := svc.Day(ctx, studentK, models.Sunday)
	require.NoError(t, err)

	require.Len(t, j, 2)
	require.Len(t, k, 1)
	assert.Equal(t, "3", k[0].ID)
}

func TestRoutineService_Day_RemoteEmpty(t *testing.T) {
	svc, _, _ := newRoutineFixture(t, &fakeRemote{})

	_, err := svc.Day(context.Background(), studentJ, models.Monday)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestRoutineService_Day_MalformedSchedule(t *testing.T) {
	bad := remoteSchedule(100, cse("1", models.Sunday, "soon", "later", "CSE101", "J"))
	svc, _, _ := newRoutineFixture(t, &fakeRemote{schedule: bad})

	_, err := svc.Day(context.Background(), studentJ, models.Sunday)
	require.ErrorIs(t, err, common.ErrMalformedSchedule)
}

func TestRoutineService_ActiveDaysAndSlots(t *testing.T) {
	svc, _, c := newRoutineFixture(t, &fakeRemote{schedule: weekSchedule()})
	ctx := context.Background()

	days, err := svc.ActiveDays(ctx, studentJ)
	require.NoError(t, err)
	assert.Equal(t, []models.Day{models.Sunday, models.Tuesday}, days)

	cached, ok := c.ActiveDays(studentJ.ID)
	require.True(t, ok)
	assert.Equal(t, days, cached)

	slots, err := svc.TimeSlots(ctx, studentJ)
	require.NoError(t, err)
	assert.Equal(t, []string{"08:30 AM - 10:00 AM", "10:00 AM - 11:30 AM", "01:00 PM - 02:30 PM"}, slots)
}

func TestRoutineService_Refresh_PreloadsDays(t *testing.T) {
	remote := &fakeRemote{schedule: weekSchedule()}
	svc, _, c := newRoutineFixture(t, remote)
	ctx := context.Background()

	c.PutDay(models.Sunday, studentJ.ID, []models.Entry{{ID: "stale"}})

	sch, err := svc.Refresh(ctx, studentJ)
	require.NoError(t, err)
	assert.Len(t, sch.Entries, 4)

	sunday, ok := c.Day(models.Sunday, studentJ.ID)
	require.True(t, ok)
	require.Len(t, sunday, 2)
	assert.NotEqual(t, "stale", sunday[0].ID)

	tuesday, ok := c.Day(models.Tuesday, studentJ.ID)
	require.True(t, ok)
	assert.Len(t, tuesday, 1)
}

func TestRoutineService_LogoutDropsUserCaches(t *testing.T) {
	svc, _, c := newRoutineFixture(t, &fakeRemote{schedule: weekSchedule()})
	ctx := context.Background()

	_, err := svc.Day(ctx, studentJ, models.Sunday)
	require.NoError(t, err)
	_, err = svc.Day(ctx, studentK, models.Sunday)
	require.NoError(t, err)

	svc.Logout(studentJ)

	_, ok := c.Day(models.Sunday, studentJ.ID)
	assert.False(t, ok)
	_, ok = c.Day(models.Sunday, studentK.ID)
	assert.True(t, ok)
}

func TestRoutineService_Maintenance(t *testing.T) {
	remote := &fakeRemote{maintenance: models.MaintenanceInfo{MaintenanceMode: true, Message: "upgrading"}}
	svc, _, _ := newRoutineFixture(t, remote)

	info, err := svc.Maintenance(context.Background())
	require.NoError(t, err)
	assert.True(t, info.Blocking())
	assert.Equal(t, "upgrading", info.Message)
}

func TestRoutineService_FollowInvalidatesOnStoreWrite(t *testing.T) {
	svc, f, c := newRoutineFixture(t, &fakeRemote{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.Follow(ctx, studentJ)
	}()

	c.PutDay(models.Sunday, studentJ.ID, []models.Entry{{ID: "old"}})
	f.seed(t, weekSchedule())
	require.Eventually(t, func() bool {
		_, ok := c.Day(models.Sunday, studentJ.ID)
		return !ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
