package ops

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

func TestUpsertComponentMaterializesPartOfRepoAndDependsOn(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	base, err := UpsertComponent(ctx, client, gw, scope, &models.Component{
		ID: "comp-base", Name: "Base", Kind: "library", Status: models.ComponentActive,
	})
	require.NoError(t, err)
	require.Equal(t, "comp-base", base.ID)

	dependent, err := UpsertComponent(ctx, client, gw, scope, &models.Component{
		ID: "comp-api", Name: "API", Kind: "service", Status: models.ComponentActive,
		DependsOn: []string{"comp-base", "comp-missing"},
	})
	require.NoError(t, err)

	deps, err := GetComponentDependencies(ctx, gw, scope, "comp-api", 1)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.Equal(t, "comp-base", deps[0].ID)

	dependents, err := GetComponentDependents(ctx, gw, scope, "comp-base", 1)
	require.NoError(t, err)
	require.Len(t, dependents, 1)
	require.Equal(t, dependent.ID, dependents[0].ID)
}

func TestUpsertComponentRejectsBadPrefix(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)

	_, err := UpsertComponent(ctx, client, gw, Scope{Repository: "r", Branch: "main"}, &models.Component{ID: "widget-1"})
	require.Error(t, err)
}

func TestUpsertDecisionEnforcesStateMachine(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	d, err := UpsertDecision(ctx, client, gw, scope, &models.Decision{ID: "dec-1", Name: "use postgres", Status: models.DecisionProposed}, "")
	require.NoError(t, err)
	require.Equal(t, models.DecisionProposed, d.Status)

	_, err = UpsertDecision(ctx, client, gw, scope, &models.Decision{ID: "dec-1", Name: "use postgres", Status: models.DecisionImplemented}, "")
	require.Error(t, err, "proposed cannot jump directly to implemented")

	_, err = UpsertDecision(ctx, client, gw, scope, &models.Decision{ID: "dec-1", Name: "use postgres", Status: models.DecisionApproved}, "")
	require.NoError(t, err)

	_, err = UpsertDecision(ctx, client, gw, scope, &models.Decision{ID: "dec-1", Name: "use postgres", Status: models.DecisionImplemented}, "")
	require.NoError(t, err)
}

func TestAssociateFileWithComponentSoftFailsOnMissingEndpoint(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	result, err := AssociateFileWithComponent(ctx, client, gw, scope, "comp-missing", "file-missing")
	require.NoError(t, err)
	require.False(t, result.Success)

	_, err = UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	_, err = UpsertFile(ctx, client, gw, scope, &models.File{ID: "file-a", Name: "a.go", Path: "a.go"}, "")
	require.NoError(t, err)

	result, err = AssociateFileWithComponent(ctx, client, gw, scope, "comp-a", "file-a")
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestTagItemSoftFailsOnMissingTag(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	comp, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)

	result, err := TagItem(ctx, client, gw, "Component", comp.GraphUniqueID, "tag-missing")
	require.NoError(t, err)
	require.False(t, result.Success)

	_, err = UpsertTag(ctx, gw, &models.Tag{ID: "tag-hot", Name: "hot"})
	require.NoError(t, err)

	result, err = TagItem(ctx, client, gw, "Component", comp.GraphUniqueID, "tag-hot")
	require.NoError(t, err)
	require.True(t, result.Success)
}

func TestBranchIsolation(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)

	main := Scope{Repository: "acme/widget", Branch: "main"}
	feature := Scope{Repository: "acme/widget", Branch: "feature-x"}

	_, err := UpsertComponent(ctx, client, gw, main, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)

	count, err := Count(ctx, client, gw, "Component", feature)
	require.NoError(t, err)
	require.Zero(t, count, "a component on main must not be visible on an unrelated branch")

	count, err = Count(ctx, client, gw, "Component", main)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestBulkDeleteByTypeRequiresForceOverThreshold(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	for i := 0; i < bulkThreshold+1; i++ {
		_, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-" + string(rune('a'+i)), Status: models.ComponentActive})
		require.NoError(t, err)
	}

	_, err := BulkDeleteByType(ctx, client, gw, "Component", scope, false, false)
	require.Error(t, err, "over-threshold delete without force must be rejected")

	result, err := BulkDeleteByType(ctx, client, gw, "Component", scope, true, false)
	require.NoError(t, err, "dry run bypasses the confirmation gate")
	require.True(t, result.DryRun)
	require.Equal(t, bulkThreshold+1, result.Count)

	count, err := Count(ctx, client, gw, "Component", scope)
	require.NoError(t, err)
	require.Equal(t, bulkThreshold+1, count, "dry run must not delete anything")

	result, err = BulkDeleteByType(ctx, client, gw, "Component", scope, false, true)
	require.NoError(t, err)
	require.False(t, result.DryRun)

	count, err = Count(ctx, client, gw, "Component", scope)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestBulkDeleteByTagDryRunLeavesEntitiesIntact(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	comp, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	_, err = UpsertTag(ctx, gw, &models.Tag{ID: "tag-hot", Name: "hot"})
	require.NoError(t, err)
	tagged, err := TagItem(ctx, client, gw, "Component", comp.GraphUniqueID, "tag-hot")
	require.NoError(t, err)
	require.True(t, tagged.Success)

	result, err := BulkDeleteByTag(ctx, client, gw, "tag-hot", true, false)
	require.NoError(t, err)
	require.True(t, result.DryRun)
	require.Equal(t, []string{comp.GraphUniqueID}, result.Entities)

	found, err := gw.Component.FindByGraphID(ctx, comp.GraphUniqueID)
	require.NoError(t, err)
	require.NotNil(t, found, "dry run must not delete the tagged component")

	result, err = BulkDeleteByTag(ctx, client, gw, "tag-hot", false, false)
	require.NoError(t, err)
	require.False(t, result.DryRun)

	found, err = gw.Component.FindByGraphID(ctx, comp.GraphUniqueID)
	require.NoError(t, err)
	require.Nil(t, found, "a real bulk delete by tag must remove the tagged component")

	tag, err := gw.Tag.FindByID(ctx, "tag-hot")
	require.NoError(t, err)
	require.NotNil(t, tag, "the tag node itself must never be removed by bulk delete by tag")
}

func TestBulkDeleteByRepositoryWarnsAndKeepsGlobalTags(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	_, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	_, err = UpsertTag(ctx, gw, &models.Tag{ID: "tag-hot", Name: "hot"})
	require.NoError(t, err)

	result, err := BulkDeleteByRepository(ctx, client, gw, scope.Repository, false, true)
	require.NoError(t, err)
	require.NotEmpty(t, result.Warnings)

	tag, err := gw.Tag.FindByID(ctx, "tag-hot")
	require.NoError(t, err)
	require.NotNil(t, tag, "bulk delete by repository must not remove global tags")
}
