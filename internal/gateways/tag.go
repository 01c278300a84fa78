package gateways

import (
	"context"
	"time"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// TagGateway accesses Tag nodes, global to a project-root database.
type TagGateway struct {
	client *graph.Client
}

func NewTagGateway(client *graph.Client) *TagGateway {
	return &TagGateway{client: client}
}

func (g *TagGateway) fromRecord(rec graph.Record) *models.Tag {
	return &models.Tag{
		ID:          rec.String("id"),
		Name:        rec.String("name"),
		Color:       rec.String("color"),
		Description: rec.String("description"),
		CreatedAt:   recordTime(rec, "created_at"),
	}
}

func (g *TagGateway) FindByID(ctx context.Context, id string) (*models.Tag, error) {
	rec, err := g.client.GetNode(ctx, "Tag", "id", id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}
	return g.fromRecord(rec), nil
}

// Upsert creates or updates a Tag. Unlike scoped entities, Tag.id is
// caller-supplied and global, and Tag has no updated_at. An upsert of an
// existing Tag overwrites name, color and description and keeps only the
// original created_at.
func (g *TagGateway) Upsert(ctx context.Context, t *models.Tag) (*models.Tag, error) {
	existing, err := g.FindByID(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	createdAt := time.Now()
	if existing != nil {
		createdAt = existing.CreatedAt
	}

	props := map[string]any{
		"name":        t.Name,
		"color":       t.Color,
		"description": t.Description,
		"created_at":  formatTime(createdAt),
	}
	if err := g.client.UpsertNode(ctx, "Tag", "id", t.ID, props); err != nil {
		return nil, err
	}
	return g.FindByID(ctx, t.ID)
}

func (g *TagGateway) Delete(ctx context.Context, id string) error {
	return g.client.DeleteNode(ctx, "Tag", "id", id)
}

func (g *TagGateway) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	dialect := g.client.Builder().Dialect()
	var query string
	params := map[string]any{"name": name}
	if dialect == graph.DialectCypher {
		query = "MATCH (n:Tag {name: $name}) RETURN n"
	} else {
		query = "SELECT * FROM " + graph.SQLTableName("Tag") + " WHERE name = :name"
	}

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to find tag by name")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return g.fromRecord(records[0]), nil
}

func (g *TagGateway) FindAll(ctx context.Context) ([]*models.Tag, error) {
	dialect := g.client.Builder().Dialect()
	var query string
	if dialect == graph.DialectCypher {
		query = "MATCH (n:Tag) RETURN n ORDER BY n.name"
	} else {
		query = "SELECT * FROM " + graph.SQLTableName("Tag") + " ORDER BY name"
	}

	records, err := g.client.Execute(ctx, query, nil)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan all tags")
	}
	out := make([]*models.Tag, 0, len(records))
	for _, rec := range records {
		out = append(out, g.fromRecord(rec))
	}
	return out, nil
}

// FindTaggedGraphIDs returns the graph_unique_id (or Repository/Tag id) of
// every node with an IS_TAGGED_WITH edge to tagID, regardless of entity
// type. internal/ops resolves each id against the specific gateway for its
// type when assembling a typed result — this keeps TagGateway itself
// single-entity, per spec.md §4.4.
func (g *TagGateway) FindTaggedGraphIDs(ctx context.Context, tagID string) ([]string, error) {
	dialect := g.client.Builder().Dialect()
	var query string
	params := map[string]any{"tag_id": tagID}

	if dialect == graph.DialectCypher {
		query = `MATCH (n)-[:IS_TAGGED_WITH]->(:Tag {id: $tag_id}) RETURN n.graph_unique_id AS gid`
	} else {
		query = `SELECT from_id AS gid FROM edges WHERE edge_type = 'IS_TAGGED_WITH' AND to_id = :tag_id`
	}

	records, err := g.client.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to scan tagged entities")
	}
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.String("gid"))
	}
	return ids, nil
}
