package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/edcompanion/edcompanion/internal/journal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := New(db)
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := journal.Record{DayKey: "2024/03/15", Content: `{"event":"Fileheader"}`}
	require.NoError(t, store.Save(ctx, record))

	got, err := store.Get(ctx, "2024/03/15")
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestSaveUpsertsOnDuplicateDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, journal.Record{DayKey: "2024/03/15", Content: "first"}))
	require.NoError(t, store.Save(ctx, journal.Record{DayKey: "2024/03/15", Content: "second"}))

	got, err := store.Get(ctx, "2024/03/15")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)
}

func TestGetMissingDay(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "1970/01/01")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestInitIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Init(context.Background()))
}
