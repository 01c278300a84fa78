package ops

import (
	"context"
	"strings"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/gateways"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/models"
)

// Gateways bundles every Repository Gateway for one Store Client. The
// Service Façade constructs one per request; operations take it plus the
// request's Scope rather than reaching for a registry themselves.
type Gateways struct {
	Repository *gateways.RepositoryGateway
	Metadata   *gateways.MetadataGateway
	Context    *gateways.ContextGateway
	Component  *gateways.ComponentGateway
	Decision   *gateways.DecisionGateway
	Rule       *gateways.RuleGateway
	File       *gateways.FileGateway
	Tag        *gateways.TagGateway
}

// NewGateways constructs every gateway against one Store Client.
func NewGateways(client *graph.Client) *Gateways {
	return &Gateways{
		Repository: gateways.NewRepositoryGateway(client),
		Metadata:   gateways.NewMetadataGateway(client),
		Context:    gateways.NewContextGateway(client),
		Component:  gateways.NewComponentGateway(client),
		Decision:   gateways.NewDecisionGateway(client),
		Rule:       gateways.NewRuleGateway(client),
		File:       gateways.NewFileGateway(client),
		Tag:        gateways.NewTagGateway(client),
	}
}

// requirePrefix enforces the agent-supplied logical ID convention from
// spec.md §7 (InvalidArgument on prefix validation failure).
func requirePrefix(id, prefix string) error {
	if !strings.HasPrefix(id, prefix) {
		return errors.InvalidArgumentErrorf("id %q must have prefix %q", id, prefix)
	}
	return nil
}

// ensureRepository upserts the Repository node for scope, so every scoped
// entity's PART_OF_REPO edge has a target to merge against.
func ensureRepository(ctx context.Context, gw *Gateways, scope Scope) (*models.Repository, error) {
	return gw.Repository.Upsert(ctx, scope.Repository, scope.Branch)
}

func linkPartOfRepo(ctx context.Context, client *graph.Client, repoID, entityLabel, entityKeyCol, entityKeyVal string) error {
	return client.MergeEdge(ctx, entityLabel, entityKeyCol, entityKeyVal, "Repository", "id", repoID, string(models.PartOfRepo))
}

// UpsertComponent creates or updates a Component, materializing its
// PART_OF_REPO edge. DependsOn edges are resolved separately by
// ResolveDependencies, since a dependency's target may not exist yet.
func UpsertComponent(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, c *models.Component) (*models.Component, error) {
	if err := requirePrefix(c.ID, "comp-"); err != nil {
		return nil, err
	}
	repo, err := ensureRepository(ctx, gw, scope)
	if err != nil {
		return nil, err
	}

	c.Repository, c.Branch = scope.Repository, scope.Branch
	c.GraphUniqueID = models.GraphUniqueID(scope.Repository, scope.Branch, c.ID)

	result, err := gw.Component.Upsert(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := linkPartOfRepo(ctx, client, repo.ID, "Component", "graph_unique_id", result.GraphUniqueID); err != nil {
		return nil, err
	}
	if err := ResolveDependencies(ctx, client, gw, scope, result); err != nil {
		return nil, err
	}
	return result, nil
}

// ResolveDependencies materializes a DEPENDS_ON edge for every entry in
// Component.DependsOn that resolves to an existing Component in the same
// scope. Dangling entries are retained in the property but produce no
// edge, per spec.md §3 invariant 5.
func ResolveDependencies(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, c *models.Component) error {
	for _, depID := range c.DependsOn {
		depGID := models.GraphUniqueID(scope.Repository, scope.Branch, depID)
		target, err := gw.Component.FindByGraphID(ctx, depGID)
		if err != nil {
			return err
		}
		if target == nil {
			continue
		}
		if err := client.MergeEdge(ctx, "Component", "graph_unique_id", c.GraphUniqueID, "Component", "graph_unique_id", depGID, string(models.DependsOn)); err != nil {
			return err
		}
	}
	return nil
}

// UpsertDecision creates or updates a Decision, enforcing the
// proposed->approved->{implemented|failed} state machine on status
// changes and materializing DECISION_ON against its governed component.
func UpsertDecision(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, d *models.Decision, governsComponentID string) (*models.Decision, error) {
	if err := requirePrefix(d.ID, "dec-"); err != nil {
		return nil, err
	}
	repo, err := ensureRepository(ctx, gw, scope)
	if err != nil {
		return nil, err
	}

	d.Repository, d.Branch = scope.Repository, scope.Branch
	d.GraphUniqueID = models.GraphUniqueID(scope.Repository, scope.Branch, d.ID)

	existing, err := gw.Decision.FindByGraphID(ctx, d.GraphUniqueID)
	if err != nil {
		return nil, err
	}
	var fromStatus models.DecisionStatus
	if existing != nil {
		fromStatus = existing.Status
	}
	if err := gateways.ValidateTransition(fromStatus, d.Status); err != nil {
		return nil, err
	}

	result, err := gw.Decision.Upsert(ctx, d)
	if err != nil {
		return nil, err
	}
	if err := linkPartOfRepo(ctx, client, repo.ID, "Decision", "graph_unique_id", result.GraphUniqueID); err != nil {
		return nil, err
	}
	if governsComponentID != "" {
		targetGID := models.GraphUniqueID(scope.Repository, scope.Branch, governsComponentID)
		if target, err := gw.Component.FindByGraphID(ctx, targetGID); err != nil {
			return nil, err
		} else if target != nil {
			if err := client.MergeEdge(ctx, "Decision", "graph_unique_id", result.GraphUniqueID, "Component", "graph_unique_id", targetGID, string(models.DecisionOn)); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// UpsertRule creates or updates a Rule, materializing its PART_OF_REPO edge.
func UpsertRule(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, r *models.Rule) (*models.Rule, error) {
	if err := requirePrefix(r.ID, "rule-"); err != nil {
		return nil, err
	}
	repo, err := ensureRepository(ctx, gw, scope)
	if err != nil {
		return nil, err
	}

	r.Repository, r.Branch = scope.Repository, scope.Branch
	r.GraphUniqueID = models.GraphUniqueID(scope.Repository, scope.Branch, r.ID)

	result, err := gw.Rule.Upsert(ctx, r)
	if err != nil {
		return nil, err
	}
	if err := linkPartOfRepo(ctx, client, repo.ID, "Rule", "graph_unique_id", result.GraphUniqueID); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertFile creates or updates a File, optionally associating it with a
// component via CONTAINS_FILE in the same call.
func UpsertFile(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, f *models.File, componentID string) (*models.File, error) {
	if err := requirePrefix(f.ID, "file-"); err != nil {
		return nil, err
	}
	repo, err := ensureRepository(ctx, gw, scope)
	if err != nil {
		return nil, err
	}

	f.Repository, f.Branch = scope.Repository, scope.Branch
	f.GraphUniqueID = models.GraphUniqueID(scope.Repository, scope.Branch, f.ID)

	result, err := gw.File.Upsert(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := linkPartOfRepo(ctx, client, repo.ID, "File", "graph_unique_id", result.GraphUniqueID); err != nil {
		return nil, err
	}
	if componentID != "" {
		if _, err := AssociateFileWithComponent(ctx, client, gw, scope, componentID, f.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// UpsertMetadata creates or updates a Metadata record.
func UpsertMetadata(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, m *models.Metadata) (*models.Metadata, error) {
	repo, err := ensureRepository(ctx, gw, scope)
	if err != nil {
		return nil, err
	}

	m.Repository, m.Branch = scope.Repository, scope.Branch
	m.GraphUniqueID = models.GraphUniqueID(scope.Repository, scope.Branch, m.ID)

	result, err := gw.Metadata.Upsert(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := linkPartOfRepo(ctx, client, repo.ID, "Metadata", "graph_unique_id", result.GraphUniqueID); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertContext creates or updates a Context record.
func UpsertContext(ctx context.Context, client *graph.Client, gw *Gateways, scope Scope, c *models.Context) (*models.Context, error) {
	if err := requirePrefix(c.ID, "ctx-"); err != nil {
		return nil, err
	}
	repo, err := ensureRepository(ctx, gw, scope)
	if err != nil {
		return nil, err
	}

	c.Repository, c.Branch = scope.Repository, scope.Branch
	c.GraphUniqueID = models.GraphUniqueID(scope.Repository, scope.Branch, c.ID)
	if c.Date.IsZero() {
		c.Date = clock()
	}

	result, err := gw.Context.Upsert(ctx, c)
	if err != nil {
		return nil, err
	}
	if err := linkPartOfRepo(ctx, client, repo.ID, "Context", "graph_unique_id", result.GraphUniqueID); err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertTag creates or updates a Tag, global to the project root.
func UpsertTag(ctx context.Context, gw *Gateways, t *models.Tag) (*models.Tag, error) {
	if err := requirePrefix(t.ID, "tag-"); err != nil {
		return nil, err
	}
	return gw.Tag.Upsert(ctx, t)
}
