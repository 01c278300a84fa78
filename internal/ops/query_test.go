package ops

import (
	"context"
	"testing"
	"time"

	"github.com/kodegraph/membank/internal/models"
	"github.com/stretchr/testify/require"
)

func TestGetGoverningItemsForComponent(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	_, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	_, err = UpsertDecision(ctx, client, gw, scope, &models.Decision{ID: "dec-1", Status: models.DecisionProposed}, "comp-a")
	require.NoError(t, err)
	_, err = UpsertRule(ctx, client, gw, scope, &models.Rule{ID: "rule-1", Status: models.RuleActive})
	require.NoError(t, err)

	items, err := GetGoverningItemsForComponent(ctx, client, gw, scope, "comp-a")
	require.NoError(t, err)
	require.Len(t, items.Decisions, 1)
	require.Equal(t, "dec-1", items.Decisions[0].ID)
	require.Len(t, items.Rules, 1)
}

func TestShortestPathAcrossAssociation(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	comp, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	file, err := UpsertFile(ctx, client, gw, scope, &models.File{ID: "file-a", Path: "a.go"}, "comp-a")
	require.NoError(t, err)

	path, err := ShortestPath(ctx, client, comp.GraphUniqueID, file.GraphUniqueID)
	require.NoError(t, err)
	require.Equal(t, []string{comp.GraphUniqueID, file.GraphUniqueID}, path)
}

func TestShortestPathTraversesThroughSharedRepository(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	a, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	b, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-b", Status: models.ComponentActive})
	require.NoError(t, err)

	path, err := ShortestPath(ctx, client, a.GraphUniqueID, b.GraphUniqueID)
	require.NoError(t, err)
	require.Len(t, path, 3, "both components are only linked via their shared PART_OF_REPO parent")
}

func TestShortestPathReturnsNilWhenUnreachable(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	path, err := ShortestPath(ctx, client, "nonexistent-start", "nonexistent-end")
	require.NoError(t, err)
	require.Nil(t, path)
}

func TestGetRelatedItemsAtDepthZeroReturnsOnlySource(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	comp, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	_, err = UpsertFile(ctx, client, gw, scope, &models.File{ID: "file-a", Path: "a.go"}, "comp-a")
	require.NoError(t, err)

	related, err := GetRelatedItems(ctx, client, "comp-a", scope, []string{string(models.ContainsFile)}, 0)
	require.NoError(t, err)
	require.NotNil(t, related)
	require.Equal(t, []string{comp.GraphUniqueID}, related)
}

func TestGetRelatedItemsWithNoMatchingNeighborsReturnsEmptyNotNil(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	comp, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)

	related, err := GetRelatedItems(ctx, client, "comp-a", scope, []string{string(models.ContainsFile)}, 3)
	require.NoError(t, err)
	require.NotNil(t, related)
	require.Equal(t, []string{comp.GraphUniqueID}, related)
}

func TestGetRelatedItemsTraversesMatchingRelTypes(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	comp, err := UpsertComponent(ctx, client, gw, scope, &models.Component{ID: "comp-a", Status: models.ComponentActive})
	require.NoError(t, err)
	file, err := UpsertFile(ctx, client, gw, scope, &models.File{ID: "file-a", Path: "a.go"}, "comp-a")
	require.NoError(t, err)

	related, err := GetRelatedItems(ctx, client, "comp-a", scope, []string{string(models.ContainsFile)}, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{comp.GraphUniqueID, file.GraphUniqueID}, related)
}

func TestGetDecisionsByDateRange(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)
	scope := Scope{Repository: "acme/widget", Branch: "main"}

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := UpsertDecision(ctx, client, gw, scope, &models.Decision{ID: "dec-early", Status: models.DecisionProposed, Date: early}, "")
	require.NoError(t, err)
	_, err = UpsertDecision(ctx, client, gw, scope, &models.Decision{ID: "dec-late", Status: models.DecisionProposed, Date: late}, "")
	require.NoError(t, err)

	results, err := GetDecisionsByDateRange(ctx, gw, scope, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "dec-late", results[0].ID)
}
