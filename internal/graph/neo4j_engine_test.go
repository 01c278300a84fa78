package graph

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNeo4jEngineUpsertAndFetchNode(t *testing.T) {
	uri := os.Getenv("MEMBANK_NEO4J_URI")
	user := os.Getenv("MEMBANK_NEO4J_USER")
	password := os.Getenv("MEMBANK_NEO4J_PASSWORD")
	if uri == "" {
		t.Skip("skipping integration test: MEMBANK_NEO4J_URI not set")
	}

	ctx := context.Background()
	engine, err := OpenNeo4jEngine(ctx, uri, user, password)
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(ctx) })

	require.NoError(t, InstallSchema(ctx, engine, DialectCypher))

	client := NewClient(engine, DialectCypher, "integration-test")
	require.NoError(t, client.UpsertNode(ctx, "Tag", "id", "tag-integration-test", map[string]any{
		"name": "integration", "created_at": "2026-01-01T00:00:00Z",
	}))
	t.Cleanup(func() { client.DeleteNode(context.Background(), "Tag", "id", "tag-integration-test") })

	rec, err := client.GetNode(ctx, "Tag", "id", "tag-integration-test")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "integration", rec.String("name"))
}
