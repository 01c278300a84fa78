package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLQueryBuilderUpsertNodeRejectsInvalidIdentifiers(t *testing.T) {
	b := NewQueryBuilder(DialectSQL)

	_, _, err := b.UpsertNode("Component; DROP TABLE components", "id", "comp-a", nil)
	require.Error(t, err)

	_, _, err = b.UpsertNode("Component", "id; --", "comp-a", nil)
	require.Error(t, err)

	_, _, err = b.UpsertNode("Component", "id", "comp-a", map[string]any{"status; --": "active"})
	require.Error(t, err)
}

func TestSQLQueryBuilderUpsertNodeMapsLabelToTableName(t *testing.T) {
	b := NewQueryBuilder(DialectSQL)
	query, params, err := b.UpsertNode("Component", "graph_unique_id", "acme:main:comp-a", map[string]any{"status": "active"})
	require.NoError(t, err)
	require.Contains(t, query, "components")
	require.Equal(t, "acme:main:comp-a", params["graph_unique_id"])
	require.Equal(t, "active", params["status"])
}

func TestCypherQueryBuilderGetNodeUsesLabelDirectly(t *testing.T) {
	b := NewQueryBuilder(DialectCypher)
	query, params, err := b.GetNode("Component", "graph_unique_id", "acme:main:comp-a")
	require.NoError(t, err)
	require.Contains(t, query, "MATCH (n:Component {graph_unique_id: $key_value})")
	require.Equal(t, "acme:main:comp-a", params["key_value"])
}

func TestCypherQueryBuilderMergeEdgeRejectsInvalidEdgeType(t *testing.T) {
	b := NewQueryBuilder(DialectCypher)
	_, _, err := b.MergeEdge("Component", "graph_unique_id", "a", "Component", "graph_unique_id", "b", "DEPENDS_ON; DETACH DELETE")
	require.Error(t, err)
}

func TestSQLTableNameFallsBackToLabelForUnmappedLabels(t *testing.T) {
	require.Equal(t, "components", SQLTableName("Component"))
	require.Equal(t, "SomethingElse", SQLTableName("SomethingElse"))
}

func TestNewQueryBuilderDefaultsToSQLForUnknownDialect(t *testing.T) {
	b := NewQueryBuilder(Dialect(99))
	require.Equal(t, DialectSQL, b.Dialect())
}
