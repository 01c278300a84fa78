package ops

import (
	"context"
	"sort"
	"time"

	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// GetComponentDependencies BFS-traverses DEPENDS_ON outward from id up to
// depth hops, deduplicating by graph_unique_id and breaking ties by
// ascending logical id, per spec.md §4.5.
func GetComponentDependencies(ctx context.Context, gw *Gateways, scope Scope, id string, depth int) ([]*models.Component, error) {
	return traverseDependencies(ctx, gw, scope, id, depth, false)
}

// GetComponentDependents is the inverse traversal of GetComponentDependencies.
func GetComponentDependents(ctx context.Context, gw *Gateways, scope Scope, id string, depth int) ([]*models.Component, error) {
	return traverseDependencies(ctx, gw, scope, id, depth, true)
}

func traverseDependencies(ctx context.Context, gw *Gateways, scope Scope, id string, depth int, inverse bool) ([]*models.Component, error) {
	if depth < 0 {
		depth = 0
	}
	edges, err := gw.Component.FindDependencyEdges(ctx, scope.Repository, scope.Branch)
	if err != nil {
		return nil, err
	}

	adjacency := map[string][]string{}
	for _, e := range edges {
		if inverse {
			adjacency[e.ToGraphID] = append(adjacency[e.ToGraphID], e.FromGraphID)
		} else {
			adjacency[e.FromGraphID] = append(adjacency[e.FromGraphID], e.ToGraphID)
		}
	}

	startGID := models.GraphUniqueID(scope.Repository, scope.Branch, id)
	visited := map[string]bool{startGID: true}
	frontier := []string{startGID}
	var reached []string

	for level := 0; level < depth && len(frontier) > 0; level++ {
		next := sortedUnique(frontier, adjacency)
		var nextFrontier []string
		for _, gid := range next {
			if visited[gid] {
				continue
			}
			visited[gid] = true
			reached = append(reached, gid)
			nextFrontier = append(nextFrontier, gid)
		}
		frontier = nextFrontier
	}

	sort.Strings(reached)
	out := make([]*models.Component, 0, len(reached))
	for _, gid := range reached {
		c, err := gw.Component.FindByGraphID(ctx, gid)
		if err != nil {
			return nil, err
		}
		if c != nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sortedUnique(frontier []string, adjacency map[string][]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, gid := range frontier {
		for _, neighbor := range adjacency[gid] {
			if !seen[neighbor] {
				seen[neighbor] = true
				out = append(out, neighbor)
			}
		}
	}
	sort.Strings(out)
	return out
}

// GoverningItems is the result of get_governing_items_for_component.
type GoverningItems struct {
	Decisions       []*models.Decision `json:"decisions"`
	Rules           []*models.Rule     `json:"rules"`
	ContextHistory  []*models.Context  `json:"context_history"`
}

// GetGoverningItemsForComponent returns the Decisions governing id (via
// DECISION_ON), the active Rules in its scope, and its Context history.
func GetGoverningItemsForComponent(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, id string) (*GoverningItems, error) {
	componentGID := models.GraphUniqueID(scope.Repository, scope.Branch, id)

	edges, err := client.ScanEdges(ctx, []string{string(models.DecisionOn)})
	if err != nil {
		return nil, err
	}
	var decisions []*models.Decision
	for _, e := range edges {
		if e.To != componentGID {
			continue
		}
		d, err := gw.Decision.FindByGraphID(ctx, e.From)
		if err != nil {
			return nil, err
		}
		if d != nil {
			decisions = append(decisions, d)
		}
	}
	sort.Slice(decisions, func(i, j int) bool { return decisions[i].ID < decisions[j].ID })

	rules, err := gw.Rule.FindActive(ctx, scope.Repository, scope.Branch)
	if err != nil {
		return nil, err
	}

	history, err := gw.Context.FindLinkedTo(ctx, componentGID)
	if err != nil {
		return nil, err
	}

	return &GoverningItems{Decisions: decisions, Rules: rules, ContextHistory: history}, nil
}

// GetItemContextualHistory returns Context nodes linked to an item of the
// given label, ordered by date descending.
func GetItemContextualHistory(ctx context.Context, gw *Gateways, scope Scope, itemLabel, id string) ([]*models.Context, error) {
	gid := models.GraphUniqueID(scope.Repository, scope.Branch, id)
	return gw.Context.FindLinkedTo(ctx, gid)
}

// GetRelatedItems returns the breadth-limited neighborhood of id along
// the given relationship types, up to depth hops.
func GetRelatedItems(ctx context.Context, client *graph.Client, id string, scope Scope, relTypes []string, depth int) ([]string, error) {
	if depth < 0 {
		depth = 0
	}
	edges, err := client.ScanEdges(ctx, relTypes)
	if err != nil {
		return nil, err
	}

	adjacency := map[string][]string{}
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
		adjacency[e.To] = append(adjacency[e.To], e.From)
	}

	startGID := models.GraphUniqueID(scope.Repository, scope.Branch, id)
	visited := map[string]bool{startGID: true}
	frontier := []string{startGID}
	reached := make([]string, 0, 1)
	reached = append(reached, startGID)

	for level := 0; level < depth && len(frontier) > 0; level++ {
		next := sortedUnique(frontier, adjacency)
		var nextFrontier []string
		for _, gid := range next {
			if visited[gid] {
				continue
			}
			visited[gid] = true
			reached = append(reached, gid)
			nextFrontier = append(nextFrontier, gid)
		}
		frontier = nextFrontier
	}

	sort.Strings(reached)
	return reached, nil
}

// ShortestPath finds the shortest undirected path between two
// graph_unique_ids over every relationship type, breaking ties
// lexicographically by visiting neighbors in sorted order.
func ShortestPath(ctx context.Context, client *graph.Client, startGID, endGID string) ([]string, error) {
	edges, err := client.ScanEdges(ctx, []string{
		string(models.PartOfRepo), string(models.DependsOn), string(models.ContextOf),
		string(models.DecisionOn), string(models.ContainsFile), string(models.IsTaggedWith),
	})
	if err != nil {
		return nil, err
	}

	adjacency := map[string][]string{}
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
		adjacency[e.To] = append(adjacency[e.To], e.From)
	}
	for k := range adjacency {
		sort.Strings(adjacency[k])
	}

	if startGID == endGID {
		return []string{startGID}, nil
	}

	parent := map[string]string{startGID: ""}
	queue := []string{startGID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range adjacency[current] {
			if _, ok := parent[neighbor]; ok {
				continue
			}
			parent[neighbor] = current
			if neighbor == endGID {
				queue = nil
				break
			}
			queue = append(queue, neighbor)
		}
	}

	if _, ok := parent[endGID]; !ok {
		return nil, nil
	}
	var path []string
	for node := endGID; node != ""; node = parent[node] {
		path = append([]string{node}, path...)
		if node == startGID {
			break
		}
	}
	return path, nil
}

// GetDecisionsByDateRange returns Decisions in scope within [start, end].
func GetDecisionsByDateRange(ctx context.Context, gw *Gateways, scope Scope, start, end time.Time) ([]*models.Decision, error) {
	return gw.Decision.FindByDateRange(ctx, scope.Repository, scope.Branch, start, end)
}
