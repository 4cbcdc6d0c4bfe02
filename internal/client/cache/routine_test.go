package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/campusroutine/internal/logging"
	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = models.User{ID: "alice", Department: "CSE", Role: models.RoleStudent, Batch: "61", Section: "J"}
	bob   = models.User{ID: "bob", Department: "CSE", Role: models.RoleStudent, Batch: "61", Section: "K"}
)

func cseSchedule() *models.Schedule {
	return &models.Schedule{
		Department: "CSE",
		Version:    42,
		Entries: []models.Entry{
			{ID: "m1", Day: models.Monday, StartTime: "10:00 AM", EndTime: "11:30 AM", CourseCode: "CSE201", Room: "101", Department: "CSE", Batch: "61", Section: "J"},
			{ID: "m2", Day: models.Monday, StartTime: "08:30 AM", EndTime: "10:00 AM", CourseCode: "CSE202", Room: "102", Department: "CSE", Batch: "61", Section: "J1"},
			{ID: "t1", Day: models.Tuesday, StartTime: "08:30 AM", EndTime: "10:00 AM", CourseCode: "CSE203", Room: "103", Department: "CSE", Batch: "61", Section: "J"},
		},
	}
}

func newTestCache(t *testing.T) (*RoutineCache, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	return NewRoutineCache(DefaultTTLs(), logging.NewNop(), WithClock(clk.Now)), clk
}

func TestDefaultTTLs(t *testing.T) {
	ttl := DefaultTTLs()
	assert.Equal(t, 5*time.Minute, ttl.Day)
	assert.Equal(t, 30*time.Minute, ttl.FullSchedule)
	assert.Equal(t, 30*time.Minute, ttl.ActiveDays)
	assert.Equal(t, 10*time.Minute, ttl.Week)
}

func TestRoutineCache_DayTTL(t *testing.T) {
	c, clk := newTestCache(t)
	items := []models.Entry{{ID: "x"}}

	c.PutDay(models.Monday, alice.ID, items)

	got, ok := c.Day(models.Monday, alice.ID)
	require.True(t, ok)
	require.Equal(t, items, got)

	clk.Advance(299 * time.Second)
	_, ok = c.Day(models.Monday, alice.ID)
	require.True(t, ok)

	clk.Advance(2 * time.Second)
	_, ok = c.Day(models.Monday, alice.ID)
	require.False(t, ok)
}

func TestRoutineCache_PerKindTTLs(t *testing.T) {
	c, clk := newTestCache(t)
	c.PutFullSchedule(alice.ID, cseSchedule())
	c.PutActiveDays(alice.ID, []models.Day{models.Monday})
	c.PutDay(models.Monday, alice.ID, nil)

	clk.Advance(10 * time.Minute)
	_, ok := c.Day(models.Monday, alice.ID)
	require.False(t, ok)
	_, ok = c.FullSchedule(alice.ID)
	require.True(t, ok)
	_, ok = c.ActiveDays(alice.ID)
	require.True(t, ok)

	clk.Advance(20*time.Minute + time.Second)
	_, ok = c.FullSchedule(alice.ID)
	require.False(t, ok)
	_, ok = c.ActiveDays(alice.ID)
	require.False(t, ok)
}

func TestRoutineCache_PrincipalIsolation(t *testing.T) {
	c, _ := newTestCache(t)
	c.PutDay(models.Monday, alice.ID, []models.Entry{{ID: "a"}})
	c.PutFullSchedule(alice.ID, cseSchedule())
	c.PutActiveDays(alice.ID, []models.Day{models.Monday})

	_, ok := c.Day(models.Monday, bob.ID)
	require.False(t, ok)
	_, ok = c.FullSchedule(bob.ID)
	require.False(t, ok)
	_, ok = c.ActiveDays(bob.ID)
	require.False(t, ok)
}

func TestRoutineCache_DeriveDay_PopulatesDayCache(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, ok := c.DeriveDay(ctx, models.Monday, alice)
	require.False(t, ok, "no full schedule cached yet")

	c.PutFullSchedule(alice.ID, cseSchedule())

	got, ok := c.DeriveDay(ctx, models.Monday, alice)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.Equal(t, "m2", got[0].ID)

	direct, ok := c.Day(models.Monday, alice.ID)
	require.True(t, ok)
	require.Equal(t, got, direct)
}

func TestRoutineCache_DeriveDay_FilterErrorIsMiss(t *testing.T) {
	c, _ := newTestCache(t)
	s := cseSchedule()
	s.Entries = append(s.Entries, models.Entry{ID: "bad", Day: models.Monday, StartTime: "later", Department: "CSE", Batch: "61", Section: "J"})
	c.PutFullSchedule(alice.ID, s)

	_, ok := c.DeriveDay(context.Background(), models.Monday, alice)
	require.False(t, ok)

	_, ok = c.Day(models.Monday, alice.ID)
	require.False(t, ok)
}

func TestRoutineCache_PreloadAllDays(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.False(t, c.PreloadAllDays(ctx, alice))

	c.PutFullSchedule(alice.ID, cseSchedule())
	require.True(t, c.PreloadAllDays(ctx, alice))
	require.Equal(t, 7, c.Stats().DayEntries)

	wed, ok := c.Day(models.Wednesday, alice.ID)
	require.True(t, ok)
	require.Empty(t, wed)

	tue, ok := c.Day(models.Tuesday, alice.ID)
	require.True(t, ok)
	require.Len(t, tue, 1)
}

func TestRoutineCache_PreloadAllDays_MalformedWritesNothing(t *testing.T) {
	c, _ := newTestCache(t)
	s := cseSchedule()
	s.Entries = append(s.Entries, models.Entry{ID: "bad", Day: "Someday", StartTime: "08:30 AM", Department: "CSE", Batch: "61", Section: "J"})
	c.PutFullSchedule(alice.ID, s)

	require.False(t, c.PreloadAllDays(context.Background(), alice))
	require.Equal(t, 0, c.Stats().DayEntries)
}

func TestRoutineCache_InvalidateUser_OnlyThatUser(t *testing.T) {
	c, _ := newTestCache(t)
	c.PutDay(models.Monday, alice.ID, nil)
	c.PutDay(models.Monday, bob.ID, nil)
	c.PutFullSchedule(alice.ID, cseSchedule())
	c.PutActiveDays(alice.ID, []models.Day{models.Monday})

	c.InvalidateUser(alice.ID)

	_, ok := c.Day(models.Monday, alice.ID)
	require.False(t, ok)
	_, ok = c.Day(models.Monday, bob.ID)
	require.True(t, ok)

	st := c.Stats()
	require.False(t, st.HasFullSchedule)
	require.False(t, st.HasActiveDays)
	require.Equal(t, 1, st.DayEntries)
}

func TestRoutineCache_InvalidateAll(t *testing.T) {
	c, _ := newTestCache(t)
	c.PutDay(models.Monday, alice.ID, nil)
	c.PutDay(models.Monday, bob.ID, nil)
	c.PutFullSchedule(bob.ID, cseSchedule())

	c.InvalidateAll()

	st := c.Stats()
	require.Zero(t, st.DayEntries)
	require.False(t, st.HasFullSchedule)
}

func TestRoutineCache_UpdatesFireOnEveryMutation(t *testing.T) {
	c, _ := newTestCache(t)
	ch, cancel := c.Updates()
	defer cancel()

	var seen []time.Time
	mutations := []func(){
		func() { c.PutDay(models.Monday, alice.ID, nil) },
		func() { c.PutFullSchedule(alice.ID, cseSchedule()) },
		func() { c.PutActiveDays(alice.ID, nil) },
		func() { c.InvalidateUser(alice.ID) },
		func() { c.InvalidateAll() },
	}
	for _, m := range mutations {
		m()
		seen = append(seen, <-ch)
	}

	// the fake clock never moves, timestamps must still increase
	for i := 1; i < len(seen); i++ {
		require.True(t, seen[i].After(seen[i-1]))
	}
	require.Equal(t, seen[len(seen)-1], c.LastUpdate())
}

func TestRoutineCache_ReadsDoNotNotify(t *testing.T) {
	c, _ := newTestCache(t)
	ch, cancel := c.Updates()
	defer cancel()

	_, _ = c.Day(models.Monday, alice.ID)
	_, _ = c.FullSchedule(alice.ID)
	_ = c.Stats()

	select {
	case <-ch:
		t.Fatal("reads must not publish updates")
	default:
	}
}
