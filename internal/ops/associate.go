package ops

import (
	"context"

	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// AssociateFileWithComponent MATCHes both endpoints within scope, then
// MERGEs CONTAINS_FILE between them. Per spec.md §4.5, a missing endpoint
// is a soft failure (Success: false), not an error.
func AssociateFileWithComponent(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, componentID, fileID string) (*AssociationResult, error) {
	componentGID := models.GraphUniqueID(scope.Repository, scope.Branch, componentID)
	fileGID := models.GraphUniqueID(scope.Repository, scope.Branch, fileID)

	component, err := gw.Component.FindByGraphID(ctx, componentGID)
	if err != nil {
		return nil, err
	}
	file, err := gw.File.FindByGraphID(ctx, fileGID)
	if err != nil {
		return nil, err
	}
	if component == nil || file == nil {
		return &AssociationResult{Success: false, Message: "component or file not found in scope"}, nil
	}

	if err := client.MergeEdge(ctx, "Component", "graph_unique_id", componentGID, "File", "graph_unique_id", fileGID, string(models.ContainsFile)); err != nil {
		return nil, err
	}
	return &AssociationResult{Success: true, Message: "associated"}, nil
}

// TagItem MERGEs IS_TAGGED_WITH between an item of the given entity label
// (Metadata, Context, Component, Decision, Rule, or File) and a global
// Tag. A missing item or tag is a soft failure, not an error.
func TagItem(ctx context.Context, client *graph.Client, gw *Gateways, itemLabel, itemGraphID, tagID string) (*AssociationResult, error) {
	item, err := client.GetNode(ctx, itemLabel, "graph_unique_id", itemGraphID)
	if err != nil {
		return nil, err
	}
	tag, err := gw.Tag.FindByID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if item == nil || tag == nil {
		return &AssociationResult{Success: false, Message: "item or tag not found"}, nil
	}

	if err := client.MergeEdge(ctx, itemLabel, "graph_unique_id", itemGraphID, "Tag", "id", tagID, string(models.IsTaggedWith)); err != nil {
		return nil, err
	}
	return &AssociationResult{Success: true, Message: "tagged"}, nil
}
