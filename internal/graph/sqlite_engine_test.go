package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenSQLiteEngineCreatesParentDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "deep", "membank.db")

	engine, err := OpenSQLiteEngine(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(ctx) })

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestSQLiteEngineExecuteWriteThenRead(t *testing.T) {
	ctx := context.Background()
	engine, err := OpenSQLiteEngine(ctx, filepath.Join(t.TempDir(), "membank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(ctx) })

	require.NoError(t, InstallSchema(ctx, engine, DialectSQL))

	_, err = engine.Execute(ctx, "INSERT INTO tags (id, name, created_at) VALUES (:id, :name, :created_at)", map[string]any{
		"id": "tag-a", "name": "urgent", "created_at": "2026-01-01T00:00:00Z",
	})
	require.NoError(t, err)

	records, err := engine.Execute(ctx, "SELECT * FROM tags WHERE id = :id", map[string]any{"id": "tag-a"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "urgent", records[0].String("name"))
}

func TestSQLiteEngineExecuteReturnsNoRecordsForMiss(t *testing.T) {
	ctx := context.Background()
	engine, err := OpenSQLiteEngine(ctx, filepath.Join(t.TempDir(), "membank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(ctx) })
	require.NoError(t, InstallSchema(ctx, engine, DialectSQL))

	records, err := engine.Execute(ctx, "SELECT * FROM tags WHERE id = :id", map[string]any{"id": "nonexistent"})
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestInstallSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	engine, err := OpenSQLiteEngine(ctx, filepath.Join(t.TempDir(), "membank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(ctx) })

	require.NoError(t, InstallSchema(ctx, engine, DialectSQL))
	require.NoError(t, InstallSchema(ctx, engine, DialectSQL))
}
