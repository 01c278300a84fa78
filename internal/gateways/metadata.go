package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// MetadataGateway accesses Metadata nodes.
type MetadataGateway struct {
	client *graph.Client
}

func NewMetadataGateway(client *graph.Client) *MetadataGateway {
	return &MetadataGateway{client: client}
}

func (g *MetadataGateway) fromRecord(rec graph.Record) *models.Metadata {
	return &models.Metadata{
		GraphUniqueID: rec.String("graph_unique_id"),
		ID:            rec.String("id"),
		Repository:    rec.String("repository"),
		Branch:        rec.String("branch"),
		Name:          rec.String("name"),
		Content:       rec.String("content"),
		CreatedAt:     recordTime(rec, "created_at"),
		UpdatedAt:     recordTime(rec, "updated_at"),
	}
}

func (g *MetadataGateway) FindByGraphID(ctx context.Context, gid string) (*models.Metadata, error) {
	rec, err := g.client.GetNode(ctx, "Metadata", "graph_unique_id", gid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

// Upsert creates or updates a Metadata node, preserving created_at and
// advancing updated_at.
func (g *MetadataGateway) Upsert(ctx context.Context, m *models.Metadata) (*models.Metadata, error) {
	now := time.Now()
	existing, err := g.FindByGraphID(ctx, m.GraphUniqueID)
	if err != nil {
		return nil, err
	}
	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}

	props := map[string]any{
		"id":         m.ID,
		"repository": m.Repository,
		"branch":     m.Branch,
		"name":       m.Name,
		"content":    m.Content,
		"created_at": formatTime(createdAt),
		"updated_at": formatTime(now),
	}
	if err := g.client.UpsertNode(ctx, "Metadata", "graph_unique_id", m.GraphUniqueID, props); err != nil {
		return nil, err
	}
	return g.FindByGraphID(ctx, m.GraphUniqueID)
}

func (g *MetadataGateway) Delete(ctx context.Context, gid string) error {
	return g.client.DeleteNode(ctx, "Metadata", "graph_unique_id", gid)
}

// FindByBranch returns every Metadata node in (repository, branch).
func (g *MetadataGateway) FindByBranch(ctx context.Context, repository, branch string) ([]*models.Metadata, error) {
	query, params := scanScoped(g.client.Builder().Dialect(), "Metadata", repository, branch, "", "name")
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan metadata by branch")
	}
	out := make([]*models.Metadata, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out, nil
}

// FindByRepository returns every Metadata node across all branches of
// repository, used by bulkDeleteByRepository.
func (g *MetadataGateway) FindByRepository(ctx context.Context, repository string) ([]*models.Metadata, error) {
	query, params := scanByRepository(g.client.Builder().Dialect(), "Metadata", repository)
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan metadata by repository")
	}
	out := make([]*models.Metadata, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out, nil
}
