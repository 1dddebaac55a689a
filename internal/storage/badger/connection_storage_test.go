package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ticketctx/internal/common"
	"github.com/ternarybob/ticketctx/internal/interfaces"
)

func newTestStorage(t *testing.T) *ConnectionStorage {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	storage := NewConnectionStorage(db, logger)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestConnectionStorage_SetGet(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	err := storage.Set(ctx, "Confluence_Creds", map[string]string{
		common.EnvConfluenceURL: "https://example.atlassian.net",
		common.EnvUsername:      "me@example.com",
	})
	require.NoError(t, err)

	conn, err := storage.Get(ctx, "confluence_creds")
	require.NoError(t, err)
	assert.Equal(t, "confluence_creds", conn.Name)
	assert.Equal(t, "https://example.atlassian.net", conn.Values[common.EnvConfluenceURL])
	assert.Equal(t, "me@example.com", conn.Values[common.EnvUsername])
	assert.False(t, conn.CreatedAt.IsZero())
}

func TestConnectionStorage_SetMergesAndRemoves(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	require.NoError(t, storage.Set(ctx, "creds", map[string]string{"A": "1", "B": "2"}))
	first, err := storage.Get(ctx, "creds")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, storage.Set(ctx, "creds", map[string]string{"B": "", "C": "3"}))

	conn, err := storage.Get(ctx, "creds")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "C": "3"}, conn.Values)
	assert.True(t, conn.CreatedAt.Equal(first.CreatedAt), "created_at is preserved")
	assert.True(t, conn.UpdatedAt.After(first.UpdatedAt))
}

func TestConnectionStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	_, err := storage.Get(ctx, "missing")
	assert.ErrorIs(t, err, interfaces.ErrConnectionNotFound)

	err = storage.Delete(ctx, "missing")
	assert.ErrorIs(t, err, interfaces.ErrConnectionNotFound)
}

func TestConnectionStorage_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	storage := newTestStorage(t)

	require.NoError(t, storage.Set(ctx, "one", map[string]string{"k": "v"}))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, storage.Set(ctx, "two", map[string]string{"k": "v"}))

	conns, err := storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "two", conns[0].Name, "most recent first")

	require.NoError(t, storage.Delete(ctx, "ONE"))

	conns, err = storage.List(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "two", conns[0].Name)
}

func TestConnectionStorage_RequiresName(t *testing.T) {
	storage := newTestStorage(t)

	assert.Error(t, storage.Set(context.Background(), "  ", map[string]string{"k": "v"}))
}

func TestNewBadgerDB_InMemory(t *testing.T) {
	db, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{})
	require.NoError(t, err)
	assert.NotNil(t, db.Store())
	assert.NoError(t, db.Close())
}
