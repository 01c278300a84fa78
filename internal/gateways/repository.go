package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// RepositoryGateway accesses Repository nodes, keyed by id = "{name}:{branch}".
type RepositoryGateway struct {
	client *graph.Client
}

func NewRepositoryGateway(client *graph.Client) *RepositoryGateway {
	return &RepositoryGateway{client: client}
}

func (g *RepositoryGateway) fromRecord(rec graph.Record) *models.Repository {
	return &models.Repository{
		ID:        rec.String("id"),
		Name:      rec.String("name"),
		Branch:    rec.String("branch"),
		CreatedAt: recordTime(rec, "created_at"),
		UpdatedAt: recordTime(rec, "updated_at"),
	}
}

// FindByID returns the Repository for id, or nil if absent.
func (g *RepositoryGateway) FindByID(ctx context.Context, id string) (*models.Repository, error) {
	rec, err := g.client.GetNode(ctx, "Repository", "id", id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

// Upsert creates or updates the Repository for (name, branch), preserving
// created_at across updates and advancing updated_at.
func (g *RepositoryGateway) Upsert(ctx context.Context, name, branch string) (*models.Repository, error) {
	id := models.RepositoryNodeID(name, branch)
	now := time.Now()

	existing, err := g.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	createdAt := now
	if existing != nil {
		createdAt = existing.CreatedAt
	}

	props := map[string]any{
		"name":       name,
		"branch":     branch,
		"created_at": formatTime(createdAt),
		"updated_at": formatTime(now),
	}
	if err := g.client.UpsertNode(ctx, "Repository", "id", id, props); err != nil {
		return nil, err
	}
	return g.FindByID(ctx, id)
}

// Delete removes the Repository for id, cascading its incident edges.
func (g *RepositoryGateway) Delete(ctx context.Context, id string) error {
	return g.client.DeleteNode(ctx, "Repository", "id", id)
}

// FindByName returns every branch's Repository node sharing a logical name,
// used by bulkDeleteByRepository.
func (g *RepositoryGateway) FindByName(ctx context.Context, name string) ([]*models.Repository, error) {
	var query string
	params := map[string]any{"name": name}

	if g.client.Builder().Dialect() == graph.DialectCypher {
		query = "MATCH (n:Repository {name: $name}) RETURN n"
	} else {
		query = "SELECT * FROM " + graph.SQLTableName("Repository") + " WHERE name = :name ORDER BY branch"
	}

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan repositories by name")
	}

	repos := make([]*models.Repository, 0, len(records))
	for _, rec := range records {
		repos = append(repos, g.fromRecord(rec))
	}
	return repos, nil
}
