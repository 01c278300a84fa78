package dispatch

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
	"github.com/kodegraph/membank/internal/ops"
	"github.com/kodegraph/membank/internal/progress"
	"github.com/kodegraph/membank/internal/session"
)

func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

func argInt(args map[string]any, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func argStringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func argTime(args map[string]any, key string) time.Time {
	s := argString(args, key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// scopeOf applies spec.md §4.7 step 3: arguments override the session's
// bound defaults.
func scopeOf(sess *session.Session, args map[string]any) ops.Scope {
	repository, branch := sess.ResolveScope(argString(args, "repository"), argString(args, "branch"))
	return ops.Scope{Repository: repository, Branch: branch}
}

func withFacade(ctx context.Context, d *Dispatcher, sess *session.Session, args map[string]any, fn func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error)) (any, error) {
	scope := scopeOf(sess, args)
	return d.Facade.Call(ctx, sess.ProjectRoot, scope.Repository, scope.Branch, fn)
}

func registerHandlers(d *Dispatcher) {
	d.handlers["upsert_component"] = handleUpsertComponent
	d.handlers["upsert_decision"] = handleUpsertDecision
	d.handlers["upsert_rule"] = handleUpsertRule
	d.handlers["upsert_file"] = handleUpsertFile
	d.handlers["upsert_metadata"] = handleUpsertMetadata
	d.handlers["upsert_context"] = handleUpsertContext
	d.handlers["upsert_tag"] = handleUpsertTag

	d.handlers["associate_file_with_component"] = handleAssociateFile
	d.handlers["tag_item"] = handleTagItem

	d.handlers["get_component_dependencies"] = handleGetDependencies
	d.handlers["get_component_dependents"] = handleGetDependents
	d.handlers["get_governing_items_for_component"] = handleGoverningItems
	d.handlers["get_item_contextual_history"] = handleContextualHistory
	d.handlers["get_related_items"] = handleRelatedItems
	d.handlers["shortest_path"] = handleShortestPath
	d.handlers["get_decisions_by_date_range"] = handleDecisionsByDateRange

	d.handlers["pagerank"] = handlePageRank
	d.handlers["louvain_community_detection"] = handleLouvain
	d.handlers["k_core_decomposition"] = handleKCore
	d.handlers["strongly_connected_components"] = handleSCC
	d.handlers["weakly_connected_components"] = handleWCC

	d.handlers["labels"] = handleLabels
	d.handlers["count"] = handleCount
	d.handlers["properties"] = handleProperties
	d.handlers["indexes"] = handleIndexes

	d.handlers["bulk_delete_by_type"] = handleBulkDeleteByType
	d.handlers["bulk_delete_by_tag"] = handleBulkDeleteByTag
	d.handlers["bulk_delete_by_branch"] = handleBulkDeleteByBranch
	d.handlers["bulk_delete_by_repository"] = handleBulkDeleteByRepository
}

// ── Upserts ────────────────────────────────────────────────────────────

func handleUpsertComponent(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		c := &models.Component{
			ID:        argString(args, "id"),
			Name:      argString(args, "name"),
			Kind:      argString(args, "kind"),
			Status:    models.ComponentStatus(argString(args, "status")),
			DependsOn: argStringSlice(args, "dependsOn"),
		}
		return ops.UpsertComponent(ctx, client, gw, scope, c)
	})
}

func handleUpsertDecision(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		date := argTime(args, "date")
		if date.IsZero() {
			date = time.Now()
		}
		dec := &models.Decision{
			ID:      argString(args, "id"),
			Name:    argString(args, "name"),
			Date:    date,
			Context: argString(args, "context"),
			Status:  models.DecisionStatus(argString(args, "status")),
		}
		if dec.Status == "" {
			dec.Status = models.DecisionProposed
		}
		return ops.UpsertDecision(ctx, client, gw, scope, dec, argString(args, "governsComponentId"))
	})
}

func handleUpsertRule(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		r := &models.Rule{
			ID:       argString(args, "id"),
			Name:     argString(args, "name"),
			Content:  argString(args, "content"),
			Triggers: argStringSlice(args, "triggers"),
			Status:   models.RuleStatus(argString(args, "status")),
		}
		return ops.UpsertRule(ctx, client, gw, scope, r)
	})
}

func handleUpsertFile(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		f := &models.File{
			ID:       argString(args, "id"),
			Name:     argString(args, "name"),
			Path:     argString(args, "path"),
			Language: argString(args, "language"),
			Metrics:  argString(args, "metrics"),
		}
		return ops.UpsertFile(ctx, client, gw, scope, f, argString(args, "componentId"))
	})
}

func handleUpsertMetadata(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		m := &models.Metadata{
			ID:      argString(args, "id"),
			Name:    argString(args, "name"),
			Content: argString(args, "content"),
		}
		return ops.UpsertMetadata(ctx, client, gw, scope, m)
	})
}

func handleUpsertContext(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		c := &models.Context{
			ID:          argString(args, "id"),
			Agent:       argString(args, "agent"),
			Summary:     argString(args, "summary"),
			Observation: argString(args, "observation"),
			Date:        argTime(args, "date"),
			Issue:       argString(args, "issue"),
		}
		return ops.UpsertContext(ctx, client, gw, scope, c)
	})
}

func handleUpsertTag(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		t := &models.Tag{
			ID:          argString(args, "id"),
			Name:        argString(args, "name"),
			Color:       argString(args, "color"),
			Description: argString(args, "description"),
		}
		return ops.UpsertTag(ctx, gw, t)
	})
}

// ── Associations ───────────────────────────────────────────────────────

func handleAssociateFile(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.AssociateFileWithComponent(ctx, client, gw, scope, argString(args, "componentId"), argString(args, "fileId"))
	})
}

func handleTagItem(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		itemGID := models.GraphUniqueID(scope.Repository, scope.Branch, argString(args, "itemId"))
		return ops.TagItem(ctx, client, gw, argString(args, "itemLabel"), itemGID, argString(args, "tagId"))
	})
}

// ── Queries ────────────────────────────────────────────────────────────

func handleGetDependencies(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.GetComponentDependencies(ctx, gw, scope, argString(args, "id"), argInt(args, "depth", 1))
	})
}

func handleGetDependents(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.GetComponentDependents(ctx, gw, scope, argString(args, "id"), argInt(args, "depth", 1))
	})
}

func handleGoverningItems(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.GetGoverningItemsForComponent(ctx, client, gw, scope, argString(args, "id"))
	})
}

func handleContextualHistory(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.GetItemContextualHistory(ctx, gw, scope, argString(args, "type"), argString(args, "id"))
	})
}

func handleRelatedItems(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, _ *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.GetRelatedItems(ctx, client, argString(args, "id"), scope, argStringSlice(args, "relationships"), argInt(args, "depth", 1))
	})
}

func handleShortestPath(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, _ *ops.Gateways, scope ops.Scope) (any, error) {
		startGID := models.GraphUniqueID(scope.Repository, scope.Branch, argString(args, "startId"))
		endGID := models.GraphUniqueID(scope.Repository, scope.Branch, argString(args, "endId"))
		return ops.ShortestPath(ctx, client, startGID, endGID)
	})
}

func handleDecisionsByDateRange(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.GetDecisionsByDateRange(ctx, gw, scope, argTime(args, "start"), argTime(args, "end"))
	})
}

// ── Analytics ──────────────────────────────────────────────────────────

func handlePageRank(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, notify progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		edges, err := gw.Component.FindDependencyEdges(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		notify.Notify(ctx, progress.Event{Status: "running", Message: "pagerank started"})
		scores, iterations, err := ops.PageRank(ctx, edges)
		if err != nil {
			return nil, err
		}
		nodes := make(map[string]any, len(scores))
		for k, v := range scores {
			nodes[k] = v
		}
		notify.Notify(ctx, progress.Event{Status: "complete", IsFinal: true})
		return &ops.AnalyticsResult{Algorithm: "pagerank", Nodes: nodes, Iterations: iterations}, nil
	})
}

func handleLouvain(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		edges, err := gw.Component.FindDependencyEdges(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		groups, modularity := ops.LouvainCommunities(edges)
		return &ops.AnalyticsResult{Algorithm: "louvain_community_detection", Groups: groups, Score: modularity}, nil
	})
}

func handleKCore(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		edges, err := gw.Component.FindDependencyEdges(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		coreness := ops.KCoreDecomposition(edges)
		nodes := make(map[string]any, len(coreness))
		for k, v := range coreness {
			nodes[k] = v
		}
		return &ops.AnalyticsResult{Algorithm: "k_core_decomposition", Nodes: nodes}, nil
	})
}

func handleSCC(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		edges, err := gw.Component.FindDependencyEdges(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		return &ops.AnalyticsResult{Algorithm: "strongly_connected_components", Groups: ops.StronglyConnectedComponents(edges)}, nil
	})
}

func handleWCC(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		edges, err := gw.Component.FindDependencyEdges(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return nil, err
		}
		return &ops.AnalyticsResult{Algorithm: "weakly_connected_components", Groups: ops.WeaklyConnectedComponents(edges)}, nil
	})
}

// ── Introspection ──────────────────────────────────────────────────────

func handleLabels(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, _ *ops.Gateways, _ ops.Scope) (any, error) {
		return ops.Labels(), nil
	})
}

func handleCount(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.Count(ctx, client, gw, argString(args, "label"), scope)
	})
}

func handleProperties(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, _ *ops.Gateways, _ ops.Scope) (any, error) {
		props := ops.Properties(argString(args, "label"))
		if props == nil {
			return nil, errors.InvalidArgumentErrorf("unknown label %q", argString(args, "label"))
		}
		return props, nil
	})
}

func handleIndexes(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, _ *graph.Client, _ *ops.Gateways, _ ops.Scope) (any, error) {
		return ops.Indexes(), nil
	})
}

// ── Bulk deletes ───────────────────────────────────────────────────────

func handleBulkDeleteByType(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.BulkDeleteByType(ctx, client, gw, argString(args, "label"), scope, argBool(args, "dryRun"), argBool(args, "force"))
	})
}

func handleBulkDeleteByTag(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, _ ops.Scope) (any, error) {
		return ops.BulkDeleteByTag(ctx, client, gw, argString(args, "tagId"), argBool(args, "dryRun"), argBool(args, "force"))
	})
}

func handleBulkDeleteByBranch(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.BulkDeleteByBranch(ctx, client, gw, scope, argBool(args, "dryRun"), argBool(args, "force"))
	})
}

func handleBulkDeleteByRepository(ctx context.Context, d *Dispatcher, _ string, sess *session.Session, args map[string]any, _ progress.Notifier) (any, error) {
	return withFacade(ctx, d, sess, args, func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error) {
		return ops.BulkDeleteByRepository(ctx, client, gw, scope.Repository, argBool(args, "dryRun"), argBool(args, "force"))
	})
}
