package gateways

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *graph.Client {
	t.Helper()
	ctx := context.Background()
	engine, err := graph.OpenSQLiteEngine(ctx, filepath.Join(t.TempDir(), "membank.db"))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close(ctx) })

	require.NoError(t, graph.InstallSchema(ctx, engine, graph.DialectSQL))
	return graph.NewClient(engine, graph.DialectSQL, t.TempDir())
}

func TestRepositoryUpsertPreservesCreatedAtAcrossUpdates(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewRepositoryGateway(client)

	first, err := gw.Upsert(ctx, "acme/widget", "main")
	require.NoError(t, err)

	second, err := gw.Upsert(ctx, "acme/widget", "main")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
}

func TestRepositoryFindByNameReturnsEveryBranch(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewRepositoryGateway(client)

	_, err := gw.Upsert(ctx, "acme/widget", "main")
	require.NoError(t, err)
	_, err = gw.Upsert(ctx, "acme/widget", "feature-x")
	require.NoError(t, err)
	_, err = gw.Upsert(ctx, "acme/other", "main")
	require.NoError(t, err)

	repos, err := gw.FindByName(ctx, "acme/widget")
	require.NoError(t, err)
	require.Len(t, repos, 2)
}

func TestComponentUpsertRoundTripsDependsOnList(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewComponentGateway(client)

	c := &models.Component{
		GraphUniqueID: models.GraphUniqueID("acme/widget", "main", "comp-a"),
		ID:            "comp-a",
		Repository:    "acme/widget",
		Branch:        "main",
		Name:          "A",
		Kind:          "service",
		Status:        models.ComponentActive,
		DependsOn:     []string{"comp-b", "comp-c"},
	}
	result, err := gw.Upsert(ctx, c)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"comp-b", "comp-c"}, result.DependsOn)

	fetched, err := gw.FindByGraphID(ctx, c.GraphUniqueID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"comp-b", "comp-c"}, fetched.DependsOn)
}

func TestComponentFindActiveExcludesDeprecated(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewComponentGateway(client)

	_, err := gw.Upsert(ctx, &models.Component{
		GraphUniqueID: models.GraphUniqueID("acme/widget", "main", "comp-a"),
		ID:            "comp-a", Repository: "acme/widget", Branch: "main", Status: models.ComponentActive,
	})
	require.NoError(t, err)
	_, err = gw.Upsert(ctx, &models.Component{
		GraphUniqueID: models.GraphUniqueID("acme/widget", "main", "comp-b"),
		ID:            "comp-b", Repository: "acme/widget", Branch: "main", Status: models.ComponentDeprecated,
	})
	require.NoError(t, err)

	active, err := gw.FindActive(ctx, "acme/widget", "main")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "comp-a", active[0].ID)
}

func TestComponentFindDependencyEdgesReturnsMaterializedEdgesOnly(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewComponentGateway(client)

	a := &models.Component{GraphUniqueID: models.GraphUniqueID("acme/widget", "main", "comp-a"), ID: "comp-a", Repository: "acme/widget", Branch: "main", Status: models.ComponentActive}
	b := &models.Component{GraphUniqueID: models.GraphUniqueID("acme/widget", "main", "comp-b"), ID: "comp-b", Repository: "acme/widget", Branch: "main", Status: models.ComponentActive}
	_, err := gw.Upsert(ctx, a)
	require.NoError(t, err)
	_, err = gw.Upsert(ctx, b)
	require.NoError(t, err)

	require.NoError(t, client.MergeEdge(ctx, "Component", "graph_unique_id", a.GraphUniqueID, "Component", "graph_unique_id", b.GraphUniqueID, string(models.DependsOn)))

	edges, err := gw.FindDependencyEdges(ctx, "acme/widget", "main")
	require.NoError(t, err)
	require.Len(t, edges, 1)
	require.Equal(t, a.GraphUniqueID, edges[0].FromGraphID)
	require.Equal(t, b.GraphUniqueID, edges[0].ToGraphID)
}

func TestDecisionDeleteRemovesNode(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewDecisionGateway(client)

	d := &models.Decision{
		GraphUniqueID: models.GraphUniqueID("acme/widget", "main", "dec-a"),
		ID:            "dec-a", Repository: "acme/widget", Branch: "main", Status: models.DecisionProposed,
	}
	_, err := gw.Upsert(ctx, d)
	require.NoError(t, err)

	require.NoError(t, gw.Delete(ctx, d.GraphUniqueID))

	fetched, err := gw.FindByGraphID(ctx, d.GraphUniqueID)
	require.NoError(t, err)
	require.Nil(t, fetched)
}

func TestTagFindByIDReturnsNilWhenAbsent(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewTagGateway(client)

	tag, err := gw.FindByID(ctx, "tag-nonexistent")
	require.NoError(t, err)
	require.Nil(t, tag)
}

func TestFileUpsertRoundTripsOptionalFields(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewFileGateway(client)

	f := &models.File{
		GraphUniqueID: models.GraphUniqueID("acme/widget", "main", "file-a"),
		ID:            "file-a", Repository: "acme/widget", Branch: "main",
		Name: "main.go", Path: "cmd/main.go", Language: "go",
	}
	result, err := gw.Upsert(ctx, f)
	require.NoError(t, err)
	require.Equal(t, "go", result.Language)
	require.Equal(t, "cmd/main.go", result.Path)
}
