package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/filmrate/internal/client/client"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "storage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "filmrate_user", []byte(`{"id":1}`)))

	v, err := r.Get(ctx, "filmrate_user")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"id":1}`), v)
}

func TestGet_Absent_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "k", []byte("old")))
	require.NoError(t, r.Set(ctx, "k", []byte("new")))

	v, err := r.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), v)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "b", []byte("2")))
	require.NoError(t, r.Set(ctx, "a", []byte("1")))
	require.NoError(t, r.Delete(ctx, "b"))
	require.NoError(t, r.Delete(ctx, "b"))

	v, err := r.Get(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}

func TestSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "durable.db")

	db, err := client.InitDatabase(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteRepository(db).Set(ctx, "filmrate_user", []byte("x")))
	require.NoError(t, db.Close())

	db, err = client.InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	v, err := NewSQLiteRepository(db).Get(ctx, "filmrate_user")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), v)
}

func TestClosedDB_ReturnsWrappedErrors(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get storage[k]")
	assert.ErrorContains(t, r.Set(ctx, "k", nil), "failed to set storage[k]")
	assert.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete storage[k]")
}
