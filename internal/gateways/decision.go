package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// DecisionGateway accesses Decision nodes.
type DecisionGateway struct {
	client *graph.Client
}

func NewDecisionGateway(client *graph.Client) *DecisionGateway {
	return &DecisionGateway{client: client}
}

func (g *DecisionGateway) fromRecord(rec graph.Record) *models.Decision {
	return &models.Decision{
		GraphUniqueID: rec.String("graph_unique_id"),
		ID:            rec.String("id"),
		Repository:    rec.String("repository"),
		Branch:        rec.String("branch"),
		Name:          rec.String("name"),
		Date:          recordTime(rec, "date"),
		Context:       rec.String("context"),
		Status:        models.DecisionStatus(rec.String("status")),
		CreatedAt:     recordTime(rec, "created_at"),
		UpdatedAt:     recordTime(rec, "updated_at"),
	}
}

func (g *DecisionGateway) FindByGraphID(ctx context.Context, gid string) (*models.Decision, error) {
	rec, err := g.client.GetNode(ctx, "Decision", "graph_unique_id", gid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

func (g *DecisionGateway) Upsert(ctx context.Context, d *models.Decision) (*models.Decision, error) {
	now := time.Now()
	existing, err := g.FindByGraphID(ctx, d.GraphUniqueID)
	if err != nil {
		return nil, err
	}
	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}
	if d.Status == "" {
		d.Status = models.DecisionProposed
	}

	props := map[string]any{
		"id":         d.ID,
		"repository": d.Repository,
		"branch":     d.Branch,
		"name":       d.Name,
		"date":       formatTime(d.Date),
		"context":    d.Context,
		"status":     string(d.Status),
		"created_at": formatTime(createdAt),
		"updated_at": formatTime(now),
	}
	if err := g.client.UpsertNode(ctx, "Decision", "graph_unique_id", d.GraphUniqueID, props); err != nil {
		return nil, err
	}
	return g.FindByGraphID(ctx, d.GraphUniqueID)
}

func (g *DecisionGateway) Delete(ctx context.Context, gid string) error {
	return g.client.DeleteNode(ctx, "Decision", "graph_unique_id", gid)
}

func (g *DecisionGateway) FindByBranch(ctx context.Context, repository, branch string) ([]*models.Decision, error) {
	query, params := scanScoped(g.client.Builder().Dialect(), "Decision", repository, branch, "", "date DESC")
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan decisions by branch")
	}
	return g.fromRecords(records), nil
}

func (g *DecisionGateway) FindByRepository(ctx context.Context, repository string) ([]*models.Decision, error) {
	query, params := scanByRepository(g.client.Builder().Dialect(), "Decision", repository)
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan decisions by repository")
	}
	return g.fromRecords(records), nil
}

// FindByDateRange returns Decision nodes in (repository, branch) whose date
// falls within [start, end], both inclusive.
func (g *DecisionGateway) FindByDateRange(ctx context.Context, repository, branch string, start, end time.Time) ([]*models.Decision, error) {
	dialect := g.client.Builder().Dialect()
	extraWhere := "date >= $range_start AND date <= $range_end"
	if dialect == graph.DialectSQL {
		extraWhere = "date >= :range_start AND date <= :range_end"
	}
	query, params := scanScoped(dialect, "Decision", repository, branch, extraWhere, "date")
	params["range_start"] = formatTime(startOfDay(start))
	params["range_end"] = formatTime(endOfDay(end))

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan decisions by date range")
	}
	return g.fromRecords(records), nil
}

func (g *DecisionGateway) fromRecords(records []graph.Record) []*models.Decision {
	out := make([]*models.Decision, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out
}

// decisionTransitions enumerates the only legal Decision status changes.
var decisionTransitions = map[models.DecisionStatus][]models.DecisionStatus{
	models.DecisionProposed:    {models.DecisionApproved},
	models.DecisionApproved:    {models.DecisionImplemented, models.DecisionFailed},
	models.DecisionImplemented: {},
	models.DecisionFailed:      {},
}

// ValidateTransition checks whether moving a Decision from `from` to `to`
// is a legal state transition. Equal states are always legal (no-op
// update, e.g. re-upserting the same Decision without changing its status).
func ValidateTransition(from, to models.DecisionStatus) error {
	if from == "" || from == to {
		return nil
	}
	for _, allowed := range decisionTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return errors.ConflictError("illegal decision status transition").WithContext("from", string(from)).WithContext("to", string(to))
}
