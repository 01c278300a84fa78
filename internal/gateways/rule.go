package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// RuleGateway accesses Rule nodes.
type RuleGateway struct {
	client *graph.Client
}

func NewRuleGateway(client *graph.Client) *RuleGateway {
	return &RuleGateway{client: client}
}

func (g *RuleGateway) fromRecord(rec graph.Record) *models.Rule {
	return &models.Rule{
		GraphUniqueID: rec.String("graph_unique_id"),
		ID:            rec.String("id"),
		Repository:    rec.String("repository"),
		Branch:        rec.String("branch"),
		Name:          rec.String("name"),
		Created:       recordTime(rec, "created"),
		Content:       rec.String("content"),
		Triggers:      decodeList(rec.String("triggers")),
		Status:        models.RuleStatus(rec.String("status")),
		CreatedAt:     recordTime(rec, "created_at"),
		UpdatedAt:     recordTime(rec, "updated_at"),
	}
}

func (g *RuleGateway) FindByGraphID(ctx context.Context, gid string) (*models.Rule, error) {
	rec, err := g.client.GetNode(ctx, "Rule", "graph_unique_id", gid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

func (g *RuleGateway) Upsert(ctx context.Context, r *models.Rule) (*models.Rule, error) {
	now := time.Now()
	existing, err := g.FindByGraphID(ctx, r.GraphUniqueID)
	if err != nil {
		return nil, err
	}
	createdAt := now
	created := r.Created
	if existing != nil {
		createdAt = existing.CreatedAt
		if created.IsZero() {
			created = existing.Created
		}
	}
	if created.IsZero() {
		created = now
	}
	if r.Status == "" {
		r.Status = models.RuleActive
	}

	props := map[string]any{
		"id":         r.ID,
		"repository": r.Repository,
		"branch":     r.Branch,
		"name":       r.Name,
		"created":    formatTime(created),
		"content":    r.Content,
		"triggers":   encodeList(r.Triggers),
		"status":     string(r.Status),
		"created_at": formatTime(createdAt),
		"updated_at": formatTime(now),
	}
	if err := g.client.UpsertNode(ctx, "Rule", "graph_unique_id", r.GraphUniqueID, props); err != nil {
		return nil, err
	}
	return g.FindByGraphID(ctx, r.GraphUniqueID)
}

func (g *RuleGateway) Delete(ctx context.Context, gid string) error {
	return g.client.DeleteNode(ctx, "Rule", "graph_unique_id", gid)
}

func (g *RuleGateway) FindByBranch(ctx context.Context, repository, branch string) ([]*models.Rule, error) {
	query, params := scanScoped(g.client.Builder().Dialect(), "Rule", repository, branch, "", "id")
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan rules by branch")
	}
	return g.fromRecords(records), nil
}

func (g *RuleGateway) FindByRepository(ctx context.Context, repository string) ([]*models.Rule, error) {
	query, params := scanByRepository(g.client.Builder().Dialect(), "Rule", repository)
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan rules by repository")
	}
	return g.fromRecords(records), nil
}

// FindActive returns Rule nodes in (repository, branch) with status = active.
func (g *RuleGateway) FindActive(ctx context.Context, repository, branch string) ([]*models.Rule, error) {
	dialect := g.client.Builder().Dialect()
	extraWhere := "status = $status"
	if dialect == graph.DialectSQL {
		extraWhere = "status = :status"
	}
	query, params := scanScoped(dialect, "Rule", repository, branch, extraWhere, "id")
	params["status"] = string(models.RuleActive)

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan active rules")
	}
	return g.fromRecords(records), nil
}

func (g *RuleGateway) fromRecords(records []graph.Record) []*models.Rule {
	out := make([]*models.Rule, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out
}
