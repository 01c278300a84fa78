package ops

import (
	"context"
	"sort"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
)

// bulkThreshold is the count above which a bulk delete requires force=true,
// per spec.md §4.5.
const bulkThreshold = 10

func confirmThreshold(count int, force bool) error {
	if count > bulkThreshold && !force {
		return errors.ConflictError("bulk delete would remove more than 10 entities; pass force=true to confirm")
	}
	return nil
}

func deleteEntities(ctx context.Context, client *graph.Client, label string, graphIDs []string) error {
	keyCol := "graph_unique_id"
	if label == "Repository" || label == "Tag" {
		keyCol = "id"
	}
	for _, gid := range graphIDs {
		if err := client.DeleteNode(ctx, label, keyCol, gid); err != nil {
			return err
		}
	}
	return nil
}

// BulkDeleteByType matches every entity of label within scope and either
// reports the set (dryRun) or detach-deletes it (force required over the
// 10-entity threshold).
func BulkDeleteByType(ctx context.Context, client *graph.Client, gw *Gateways, label string, scope Scope, dryRun, force bool) (*BulkResult, error) {
	graphIDs, err := entitiesByType(ctx, gw, label, scope)
	if err != nil {
		return nil, err
	}
	sort.Strings(graphIDs)

	if !dryRun {
		if err := confirmThreshold(len(graphIDs), force); err != nil {
			return nil, err
		}
		if err := deleteEntities(ctx, client, label, graphIDs); err != nil {
			return nil, err
		}
	}

	return &BulkResult{Count: len(graphIDs), Entities: graphIDs, DryRun: dryRun}, nil
}

func entitiesByType(ctx context.Context, gw *Gateways, label string, scope Scope) ([]string, error) {
	switch label {
	case "Metadata":
		items, err := gw.Metadata.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.GraphUniqueID
		}
		return ids, nil
	case "Context":
		items, err := gw.Context.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.GraphUniqueID
		}
		return ids, nil
	case "Component":
		items, err := gw.Component.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.GraphUniqueID
		}
		return ids, nil
	case "Decision":
		items, err := gw.Decision.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.GraphUniqueID
		}
		return ids, nil
	case "Rule":
		items, err := gw.Rule.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.GraphUniqueID
		}
		return ids, nil
	case "File":
		items, err := gw.File.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.GraphUniqueID
		}
		return ids, nil
	default:
		return nil, errors.InvalidArgumentErrorf("unsupported bulk delete type %q", label)
	}
}

// BulkDeleteByTag matches every entity tagged with tagID, cutting across
// entity types via TagGateway.FindTaggedGraphIDs and then probing each
// gateway for the matched id's label. The Tag node itself is never removed by
// this operation, per spec.md §3's lifecycle rule.
func BulkDeleteByTag(ctx context.Context, client *graph.Client, gw *Gateways, tagID string, dryRun, force bool) (*BulkResult, error) {
	graphIDs, err := gw.Tag.FindTaggedGraphIDs(ctx, tagID)
	if err != nil {
		return nil, err
	}
	sort.Strings(graphIDs)

	if !dryRun {
		if err := confirmThreshold(len(graphIDs), force); err != nil {
			return nil, err
		}
		for _, gid := range graphIDs {
			label, err := labelOfGraphID(ctx, gw, gid)
			if err != nil {
				return nil, err
			}
			if label == "" {
				continue
			}
			if err := client.DeleteNode(ctx, label, "graph_unique_id", gid); err != nil {
				return nil, err
			}
		}
	}

	return &BulkResult{Count: len(graphIDs), Entities: graphIDs, DryRun: dryRun}, nil
}

// labelOfGraphID probes every scoped gateway to find which one owns gid,
// since a tagged graph_unique_id carries no label of its own.
func labelOfGraphID(ctx context.Context, gw *Gateways, gid string) (string, error) {
	if m, err := gw.Metadata.FindByGraphID(ctx, gid); err != nil {
		return "", err
	} else if m != nil {
		return "Metadata", nil
	}
	if c, err := gw.Context.FindByGraphID(ctx, gid); err != nil {
		return "", err
	} else if c != nil {
		return "Context", nil
	}
	if c, err := gw.Component.FindByGraphID(ctx, gid); err != nil {
		return "", err
	} else if c != nil {
		return "Component", nil
	}
	if d, err := gw.Decision.FindByGraphID(ctx, gid); err != nil {
		return "", err
	} else if d != nil {
		return "Decision", nil
	}
	if r, err := gw.Rule.FindByGraphID(ctx, gid); err != nil {
		return "", err
	} else if r != nil {
		return "Rule", nil
	}
	if f, err := gw.File.FindByGraphID(ctx, gid); err != nil {
		return "", err
	} else if f != nil {
		return "File", nil
	}
	return "", nil
}

// BulkDeleteByBranch matches every scoped entity within (repository,
// branch), across all types, but leaves the Repository node and any
// global Tag nodes untouched.
func BulkDeleteByBranch(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, dryRun, force bool) (*BulkResult, error) {
	var all []string
	var labels []string
	for _, label := range []string{"Metadata", "Context", "Component", "Decision", "Rule", "File"} {
		ids, err := entitiesByType(ctx, gw, label, scope)
		if err != nil {
			return nil, err
		}
		for range ids {
			labels = append(labels, label)
		}
		all = append(all, ids...)
	}

	order := make([]int, len(all))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return all[order[i]] < all[order[j]] })
	sortedIDs := make([]string, len(all))
	sortedLabels := make([]string, len(all))
	for i, idx := range order {
		sortedIDs[i] = all[idx]
		sortedLabels[i] = labels[idx]
	}

	if !dryRun {
		if err := confirmThreshold(len(sortedIDs), force); err != nil {
			return nil, err
		}
		for i, gid := range sortedIDs {
			if err := client.DeleteNode(ctx, sortedLabels[i], "graph_unique_id", gid); err != nil {
				return nil, err
			}
		}
	}

	return &BulkResult{Count: len(sortedIDs), Entities: sortedIDs, DryRun: dryRun}, nil
}

// BulkDeleteByRepository matches every entity and Repository node across
// every branch of the named repository. Global Tag nodes are never
// removed by this operation, per Open Question resolution in spec.md §9.
func BulkDeleteByRepository(ctx context.Context, client *graph.Client, gw *Gateways, repository string, dryRun, force bool) (*BulkResult, error) {
	repos, err := gw.Repository.FindByName(ctx, repository)
	if err != nil {
		return nil, err
	}

	var all []string
	var labels []string
	var repoIDs []string
	for _, repo := range repos {
		scope := Scope{Repository: repo.Name, Branch: repo.Branch}
		for _, label := range []string{"Metadata", "Context", "Component", "Decision", "Rule", "File"} {
			ids, err := entitiesByType(ctx, gw, label, scope)
			if err != nil {
				return nil, err
			}
			for range ids {
				labels = append(labels, label)
			}
			all = append(all, ids...)
		}
		repoIDs = append(repoIDs, repo.ID)
	}

	order := make([]int, len(all))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return all[order[i]] < all[order[j]] })
	sortedIDs := make([]string, len(all))
	sortedLabels := make([]string, len(all))
	for i, idx := range order {
		sortedIDs[i] = all[idx]
		sortedLabels[i] = labels[idx]
	}
	sort.Strings(repoIDs)

	total := len(sortedIDs) + len(repoIDs)
	warnings := []string{"global Tag nodes are not removed by bulk delete by repository"}

	if !dryRun {
		if err := confirmThreshold(total, force); err != nil {
			return nil, err
		}
		for i, gid := range sortedIDs {
			if err := client.DeleteNode(ctx, sortedLabels[i], "graph_unique_id", gid); err != nil {
				return nil, err
			}
		}
		for _, rid := range repoIDs {
			if err := client.DeleteNode(ctx, "Repository", "id", rid); err != nil {
				return nil, err
			}
		}
	}

	entities := append(append([]string{}, sortedIDs...), repoIDs...)
	return &BulkResult{Count: total, Entities: entities, Warnings: warnings, DryRun: dryRun}, nil
}
