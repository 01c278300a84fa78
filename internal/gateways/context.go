package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// ContextGateway accesses Context nodes.
type ContextGateway struct {
	client *graph.Client
}

func NewContextGateway(client *graph.Client) *ContextGateway {
	return &ContextGateway{client: client}
}

func (g *ContextGateway) fromRecord(rec graph.Record) *models.Context {
	return &models.Context{
		GraphUniqueID: rec.String("graph_unique_id"),
		ID:            rec.String("id"),
		Repository:    rec.String("repository"),
		Branch:        rec.String("branch"),
		Agent:         rec.String("agent"),
		Summary:       rec.String("summary"),
		Observation:   rec.String("observation"),
		Date:          recordTime(rec, "date"),
		Issue:         rec.String("issue"),
		CreatedAt:     recordTime(rec, "created_at"),
		UpdatedAt:     recordTime(rec, "updated_at"),
	}
}

func (g *ContextGateway) FindByGraphID(ctx context.Context, gid string) (*models.Context, error) {
	rec, err := g.client.GetNode(ctx, "Context", "graph_unique_id", gid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

func (g *ContextGateway) Upsert(ctx context.Context, c *models.Context) (*models.Context, error) {
	now := time.Now()
	existing, err := g.FindByGraphID(ctx, c.GraphUniqueID)
	if err != nil {
		return nil, err
	}
	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}

	props := map[string]any{
		"id":          c.ID,
		"repository":  c.Repository,
		"branch":      c.Branch,
		"agent":       c.Agent,
		"summary":     c.Summary,
		"observation": c.Observation,
		"date":        formatTime(c.Date),
		"issue":       c.Issue,
		"created_at":  formatTime(createdAt),
		"updated_at":  formatTime(now),
	}
	if err := g.client.UpsertNode(ctx, "Context", "graph_unique_id", c.GraphUniqueID, props); err != nil {
		return nil, err
	}
	return g.FindByGraphID(ctx, c.GraphUniqueID)
}

func (g *ContextGateway) Delete(ctx context.Context, gid string) error {
	return g.client.DeleteNode(ctx, "Context", "graph_unique_id", gid)
}

func (g *ContextGateway) FindByBranch(ctx context.Context, repository, branch string) ([]*models.Context, error) {
	query, params := scanScoped(g.client.Builder().Dialect(), "Context", repository, branch, "", "date DESC")
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan contexts by branch")
	}
	return g.fromRecords(records), nil
}

func (g *ContextGateway) FindByRepository(ctx context.Context, repository string) ([]*models.Context, error) {
	query, params := scanByRepository(g.client.Builder().Dialect(), "Context", repository)
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan contexts by repository")
	}
	return g.fromRecords(records), nil
}

// FindByDateRange returns Context nodes in (repository, branch) whose date
// falls within [start, end], both inclusive, compared at calendar-day
// precision per spec.
func (g *ContextGateway) FindByDateRange(ctx context.Context, repository, branch string, start, end time.Time) ([]*models.Context, error) {
	dialect := g.client.Builder().Dialect()
	var extraWhere string
	if dialect == graph.DialectCypher {
		extraWhere = "date >= $range_start AND date <= $range_end"
	} else {
		extraWhere = "date >= :range_start AND date <= :range_end"
	}

	query, params := scanScoped(dialect, "Context", repository, branch, extraWhere, "date DESC")
	params["range_start"] = formatTime(startOfDay(start))
	params["range_end"] = formatTime(endOfDay(end))

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan contexts by date range")
	}
	return g.fromRecords(records), nil
}

// FindLinkedTo returns Context nodes with a CONTEXT_OF edge to itemGID,
// ordered by date descending, for get_item_contextual_history.
func (g *ContextGateway) FindLinkedTo(ctx context.Context, itemGID string) ([]*models.Context, error) {
	dialect := g.client.Builder().Dialect()
	var query string
	params := map[string]any{"item_gid": itemGID}

	if dialect == graph.DialectCypher {
		query = `MATCH (c:Context)-[:CONTEXT_OF]->(item {graph_unique_id: $item_gid}) RETURN c ORDER BY c.date DESC`
	} else {
		query = `
			SELECT c.* FROM contexts c
			JOIN edges e ON e.edge_type = 'CONTEXT_OF' AND e.from_id = c.graph_unique_id
			WHERE e.to_id = :item_gid
			ORDER BY c.date DESC
		`
	}

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan linked contexts")
	}
	return g.fromRecords(records), nil
}

func (g *ContextGateway) fromRecords(records []graph.Record) []*models.Context {
	out := make([]*models.Context, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}
