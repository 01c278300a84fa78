package ops

import (
	"context"
	"testing"

	"github.com/kodegraph/membank/internal/models"
	"github.com/stretchr/testify/require"
)

func TestLabelsPropertiesAndRelationTypesMatchSchema(t *testing.T) {
	require.Equal(t, []string{"Repository", "Metadata", "Context", "Component", "Decision", "Rule", "File", "Tag"}, Labels())
	require.NotEmpty(t, Properties("Component"))
	require.Nil(t, Properties("NotALabel"))
	require.Contains(t, RelationTypes(), "DEPENDS_ON")
	require.NotEmpty(t, Indexes())
}

func TestCountOfGlobalLabelsIgnoresBranch(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	gw := NewGateways(client)

	_, err := UpsertTag(ctx, gw, &models.Tag{ID: "tag-a", Name: "a"})
	require.NoError(t, err)

	count, err := Count(ctx, client, gw, "Tag", Scope{Repository: "anything", Branch: "anything"})
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
