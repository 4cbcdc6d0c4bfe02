package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/campusroutine/internal/models"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	if err != nil {
		t.Fatalf("tableExists query failed: %v", err)
	}
	return n > 0
}

func TestInitDatabase_CreatesSchema(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "routine.db")

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		t.Fatalf("InitDatabase error: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"goose_db_version", "sync_state", "schedules", "routine_items"} {
		if !tableExists(t, db, table) {
			t.Fatalf("expected table %s to exist after migrations", table)
		}
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "routine.db")

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations (first) error: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("RunMigrations (second) should be idempotent, got error: %v", err)
	}
}

func TestRepositories_SurviveReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "routine.db")

	db, err := InitDatabase(ctx, dsn)
	require.NoError(t, err)
	repos := NewRepositories(db)

	require.NoError(t, repos.Schedules.Save(ctx, &models.Schedule{Department: "CSE", Version: 12,
		Entries: []models.Entry{{ID: "1", Day: models.Monday, StartTime: "08:30 AM", EndTime: "10:00 AM", Department: "CSE"}}}))
	require.NoError(t, repos.Metadata.SetLastKnownVersion(ctx, "CSE", 15))
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()
	repos = NewRepositories(db)

	s, err := repos.Schedules.Get(ctx, "CSE")
	require.NoError(t, err)
	require.NotNil(t, s)
	require.Equal(t, int64(12), s.Version)
	require.Len(t, s.Entries, 1)

	v, err := repos.Metadata.LastKnownVersion(ctx, "CSE")
	require.NoError(t, err)
	require.Equal(t, int64(15), v)
}

func TestInitDatabase_CreatesParentDir(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "dir", "routine.db")

	db, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
