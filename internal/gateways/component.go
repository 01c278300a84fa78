package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// ComponentGateway accesses Component nodes.
type ComponentGateway struct {
	client *graph.Client
}

func NewComponentGateway(client *graph.Client) *ComponentGateway {
	return &ComponentGateway{client: client}
}

func (g *ComponentGateway) fromRecord(rec graph.Record) *models.Component {
	return &models.Component{
		GraphUniqueID: rec.String("graph_unique_id"),
		ID:            rec.String("id"),
		Repository:    rec.String("repository"),
		Branch:        rec.String("branch"),
		Name:          rec.String("name"),
		Kind:          rec.String("kind"),
		Status:        models.ComponentStatus(rec.String("status")),
		DependsOn:     decodeList(rec.String("depends_on")),
		CreatedAt:     recordTime(rec, "created_at"),
		UpdatedAt:     recordTime(rec, "updated_at"),
	}
}

func (g *ComponentGateway) FindByGraphID(ctx context.Context, gid string) (*models.Component, error) {
	rec, err := g.client.GetNode(ctx, "Component", "graph_unique_id", gid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

func (g *ComponentGateway) Upsert(ctx context.Context, c *models.Component) (*models.Component, error) {
	now := time.Now()
	existing, err := g.FindByGraphID(ctx, c.GraphUniqueID)
	if err != nil {
		return nil, err
	}
	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}
	if c.Status == "" {
		c.Status = models.ComponentActive
	}

	props := map[string]any{
		"id":         c.ID,
		"repository": c.Repository,
		"branch":     c.Branch,
		"name":       c.Name,
		"kind":       c.Kind,
		"status":     string(c.Status),
		"depends_on": encodeList(c.DependsOn),
		"created_at": formatTime(createdAt),
		"updated_at": formatTime(now),
	}
	if err := g.client.UpsertNode(ctx, "Component", "graph_unique_id", c.GraphUniqueID, props); err != nil {
		return nil, err
	}
	return g.FindByGraphID(ctx, c.GraphUniqueID)
}

func (g *ComponentGateway) Delete(ctx context.Context, gid string) error {
	return g.client.DeleteNode(ctx, "Component", "graph_unique_id", gid)
}

func (g *ComponentGateway) FindByBranch(ctx context.Context, repository, branch string) ([]*models.Component, error) {
	query, params := scanScoped(g.client.Builder().Dialect(), "Component", repository, branch, "", "id")
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan components by branch")
	}
	return g.fromRecords(records), nil
}

func (g *ComponentGateway) FindByRepository(ctx context.Context, repository string) ([]*models.Component, error) {
	query, params := scanByRepository(g.client.Builder().Dialect(), "Component", repository)
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan components by repository")
	}
	return g.fromRecords(records), nil
}

// FindActive returns Component nodes in (repository, branch) with
// status = active.
func (g *ComponentGateway) FindActive(ctx context.Context, repository, branch string) ([]*models.Component, error) {
	dialect := g.client.Builder().Dialect()
	extraWhere := "status = $status"
	if dialect == graph.DialectSQL {
		extraWhere = "status = :status"
	}
	query, params := scanScoped(dialect, "Component", repository, branch, extraWhere, "id")
	params["status"] = string(models.ComponentActive)

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan active components")
	}
	return g.fromRecords(records), nil
}

// DependencyEdge is a materialized DEPENDS_ON edge between two components
// in the same scope, used by get_component_dependencies/dependents and by
// the graph algorithms in internal/ops/analytics.go.
type DependencyEdge struct {
	FromGraphID string
	ToGraphID   string
}

// FindDependencyEdges returns every DEPENDS_ON edge among Component nodes
// in (repository, branch).
func (g *ComponentGateway) FindDependencyEdges(ctx context.Context, repository, branch string) ([]DependencyEdge, error) {
	dialect := g.client.Builder().Dialect()
	var query string
	params := map[string]any{"repository": repository, "branch": branch}

	if dialect == graph.DialectCypher {
		query = `
			MATCH (a:Component {repository: $repository, branch: $branch})-[:DEPENDS_ON]->(b:Component)
			RETURN a.graph_unique_id AS from_id, b.graph_unique_id AS to_id
		`
	} else {
		query = `
			SELECT e.from_id AS from_id, e.to_id AS to_id
			FROM edges e
			JOIN components a ON a.graph_unique_id = e.from_id
			WHERE e.edge_type = 'DEPENDS_ON' AND a.repository = :repository AND a.branch = :branch
		`
	}

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan dependency edges")
	}

	edges := make([]DependencyEdge, 0, len(records))
	for _, rec := range records {
		edges = append(edges, DependencyEdge{FromGraphID: rec.String("from_id"), ToGraphID: rec.String("to_id")})
	}
	return edges, nil
}

func (g *ComponentGateway) fromRecords(records []graph.Record) []*models.Component {
	out := make([]*models.Component, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out
}
