package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// FileGateway accesses File nodes.
type FileGateway struct {
	client *graph.Client
}

func NewFileGateway(client *graph.Client) *FileGateway {
	return &FileGateway{client: client}
}

func (g *FileGateway) fromRecord(rec graph.Record) *models.File {
	return &models.File{
		GraphUniqueID: rec.String("graph_unique_id"),
		ID:            rec.String("id"),
		Repository:    rec.String("repository"),
		Branch:        rec.String("branch"),
		Name:          rec.String("name"),
		Path:          rec.String("path"),
		Language:      rec.String("language"),
		Metrics:       rec.String("metrics"),
		ContentHash:   rec.String("content_hash"),
		MimeType:      rec.String("mime_type"),
		SizeBytes:     rec.Int64("size_bytes"),
		CreatedAt:     recordTime(rec, "created_at"),
		UpdatedAt:     recordTime(rec, "updated_at"),
	}
}

func (g *FileGateway) FindByGraphID(ctx context.Context, gid string) (*models.File, error) {
	rec, err := g.client.GetNode(ctx, "File", "graph_unique_id", gid)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

func (g *FileGateway) Upsert(ctx context.Context, f *models.File) (*models.File, error) {
	now := time.Now()
	existing, err := g.FindByGraphID(ctx, f.GraphUniqueID)
	if err != nil {
		return nil, err
	}
	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}

	props := map[string]any{
		"id":           f.ID,
		"repository":   f.Repository,
		"branch":       f.Branch,
		"name":         f.Name,
		"path":         f.Path,
		"language":     f.Language,
		"metrics":      f.Metrics,
		"content_hash": f.ContentHash,
		"mime_type":    f.MimeType,
		"size_bytes":   f.SizeBytes,
		"created_at":   formatTime(createdAt),
		"updated_at":   formatTime(now),
	}
	if err := g.client.UpsertNode(ctx, "File", "graph_unique_id", f.GraphUniqueID, props); err != nil {
		return nil, err
	}
	return g.FindByGraphID(ctx, f.GraphUniqueID)
}

func (g *FileGateway) Delete(ctx context.Context, gid string) error {
	return g.client.DeleteNode(ctx, "File", "graph_unique_id", gid)
}

func (g *FileGateway) FindByBranch(ctx context.Context, repository, branch string) ([]*models.File, error) {
	query, params := scanScoped(g.client.Builder().Dialect(), "File", repository, branch, "", "path")
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan files by branch")
	}
	return g.fromRecords(records), nil
}

func (g *FileGateway) FindByRepository(ctx context.Context, repository string) ([]*models.File, error) {
	query, params := scanByRepository(g.client.Builder().Dialect(), "File", repository)
	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan files by repository")
	}
	return g.fromRecords(records), nil
}

func (g *FileGateway) fromRecords(records []graph.Record) []*models.File {
	out := make([]*models.File, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out
}
