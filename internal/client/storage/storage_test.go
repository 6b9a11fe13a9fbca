package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/authbridge/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authbridge/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "ctl.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_CreatesSchema(t *testing.T) {
	db := openDB(t)

	if !tableExists(t, db, "goose_db_version") {
		t.Fatalf("expected goose_db_version table after migrations")
	}
	if !tableExists(t, db, "metadata") {
		t.Fatalf("expected metadata table after migrations")
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := openDB(t)

	if err := RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations (second) should be idempotent, got error: %v", err)
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "ctl.db"))
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestOpen_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := Open(context.Background(), filepath.Join(blocker, "ctl.db"))
	assert.Error(t, err)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	db := openDB(t)
	store := NewSessionStore(db)
	ctx := context.Background()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty store means logged out")

	want := &session.Session{
		AccessToken:  "a1",
		RefreshToken: "r1",
		User:         session.User{ID: "7", Username: "alice1"},
	}
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	rotated := *want
	rotated.AccessToken = "a2"
	rotated.RefreshToken = "r2"
	require.NoError(t, store.Save(ctx, &rotated))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, &rotated, got)

	require.NoError(t, store.Clear(ctx))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ClearKeepsOtherKeys(t *testing.T) {
	db := openDB(t)
	store := NewSessionStore(db)
	ctx := context.Background()
	repo := metadata.NewSQLiteRepository(db)

	require.NoError(t, repo.Put(ctx, map[string][]byte{"other": []byte("x"), sessionPrefix + "legacy": []byte("y")}))
	require.NoError(t, store.Save(ctx, &session.Session{AccessToken: "a", RefreshToken: "r"}))

	// Save drops rows it does not own under the session namespace
	m, err := repo.Scan(ctx, sessionPrefix)
	require.NoError(t, err)
	assert.NotContains(t, m, sessionPrefix+"legacy")
	assert.Len(t, m, 4)

	require.NoError(t, store.Clear(ctx))

	m, err = repo.Scan(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"other": []byte("x")}, m)
}

func TestSessionStore_PartialRowsAreLoggedOut(t *testing.T) {
	db := openDB(t)
	store := NewSessionStore(db)
	ctx := context.Background()

	require.NoError(t, metadata.NewSQLiteRepository(db).Put(ctx, map[string][]byte{keyAccess: []byte("a")}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ClosedDB(t *testing.T) {
	db := openDB(t)
	store := NewSessionStore(db)
	require.NoError(t, db.Close())

	_, err := store.Load(context.Background())
	assert.ErrorContains(t, err, "load session")
	assert.Error(t, store.Save(context.Background(), &session.Session{AccessToken: "a", RefreshToken: "r"}))
}
