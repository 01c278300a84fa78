package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func chainEdges(ids ...string) []DependencyEdge {
	edges := make([]DependencyEdge, 0, len(ids)-1)
	for i := 0; i < len(ids)-1; i++ {
		edges = append(edges, DependencyEdge{FromGraphID: ids[i], ToGraphID: ids[i+1]})
	}
	return edges
}

func TestPageRankSumsToApproximatelyOne(t *testing.T) {
	edges := chainEdges("a", "b", "c")
	edges = append(edges, DependencyEdge{FromGraphID: "c", ToGraphID: "a"})

	scores, iterations, err := PageRank(context.Background(), edges)
	require.NoError(t, err)
	require.Greater(t, iterations, 0)

	var sum float64
	for _, s := range scores {
		sum += s
	}
	require.InDelta(t, 1.0, sum, 1e-3)
}

func TestPageRankCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := PageRank(ctx, chainEdges("a", "b", "c"))
	require.Error(t, err)
}

func TestStronglyConnectedComponentsFindsCycle(t *testing.T) {
	edges := []DependencyEdge{
		{FromGraphID: "a", ToGraphID: "b"},
		{FromGraphID: "b", ToGraphID: "c"},
		{FromGraphID: "c", ToGraphID: "a"},
		{FromGraphID: "a", ToGraphID: "d"},
	}
	comps := StronglyConnectedComponents(edges)
	require.Len(t, comps, 1)
	require.ElementsMatch(t, []string{"a", "b", "c"}, comps[0])
}

func TestWeaklyConnectedComponentsGroupsDisjointChains(t *testing.T) {
	edges := append(chainEdges("a", "b", "c"), chainEdges("x", "y")...)
	comps := WeaklyConnectedComponents(edges)
	require.Len(t, comps, 2)
}

func TestKCoreDecompositionOfTriangleIsTwoCore(t *testing.T) {
	edges := []DependencyEdge{
		{FromGraphID: "a", ToGraphID: "b"},
		{FromGraphID: "b", ToGraphID: "c"},
		{FromGraphID: "c", ToGraphID: "a"},
	}
	cores := KCoreDecomposition(edges)
	require.Equal(t, 2, cores["a"])
	require.Equal(t, 2, cores["b"])
	require.Equal(t, 2, cores["c"])
}

func TestLouvainCommunitiesReturnsNonNegativeModularity(t *testing.T) {
	edges := append(chainEdges("a", "b", "c"), chainEdges("x", "y", "z")...)
	communities, modularity := LouvainCommunities(edges)
	require.NotEmpty(t, communities)
	require.GreaterOrEqual(t, modularity, -1.0)
	require.LessOrEqual(t, modularity, 1.0)
}
