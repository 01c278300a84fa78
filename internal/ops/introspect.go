package ops

import (
	"context"

	"github.com/kodegraph/membank/internal/graph"
)

// entityLabels lists the node labels a Store Client schema installs, in
// the fixed order spec.md §3 defines them.
var entityLabels = []string{
	"Repository", "Metadata", "Context", "Component", "Decision", "Rule", "File", "Tag",
}

// entityProperties lists each label's property names, matching the column
// set InstallSchema creates for it.
var entityProperties = map[string][]string{
	"Repository": {"id", "name", "branch", "created_at", "updated_at"},
	"Metadata":   {"graph_unique_id", "id", "repository", "branch", "name", "content", "created_at", "updated_at"},
	"Context":    {"graph_unique_id", "id", "repository", "branch", "agent", "summary", "observation", "date", "issue", "created_at", "updated_at"},
	"Component":  {"graph_unique_id", "id", "repository", "branch", "name", "kind", "status", "depends_on", "created_at", "updated_at"},
	"Decision":   {"graph_unique_id", "id", "repository", "branch", "name", "date", "context", "status", "created_at", "updated_at"},
	"Rule":       {"graph_unique_id", "id", "repository", "branch", "name", "created", "content", "triggers", "status", "created_at", "updated_at"},
	"File":       {"graph_unique_id", "id", "repository", "branch", "name", "path", "language", "metrics", "content_hash", "mime_type", "size_bytes", "created_at", "updated_at"},
	"Tag":        {"id", "name", "color", "description", "created_at"},
}

// relationTypes lists the edge types a Store Client schema supports.
var relationTypes = []string{
	"PART_OF_REPO", "DEPENDS_ON", "CONTEXT_OF", "DECISION_ON", "CONTAINS_FILE", "IS_TAGGED_WITH",
}

// Labels returns every node label the schema defines, for the labels
// introspection operation.
func Labels() []string {
	out := make([]string, len(entityLabels))
	copy(out, entityLabels)
	return out
}

// Properties returns the property names for label, or nil if label is
// not a recognized entity.
func Properties(label string) []string {
	props, ok := entityProperties[label]
	if !ok {
		return nil
	}
	out := make([]string, len(props))
	copy(out, props)
	return out
}

// Indexes returns the index/constraint descriptions this schema installs,
// dialect-independent — scope indexes on scoped entities, primary-key
// uniqueness on every label, plus the edges table's from/to indexes.
func Indexes() []string {
	out := []string{
		"Repository.id UNIQUE",
		"Metadata.graph_unique_id UNIQUE",
		"Context.graph_unique_id UNIQUE",
		"Component.graph_unique_id UNIQUE",
		"Decision.graph_unique_id UNIQUE",
		"Rule.graph_unique_id UNIQUE",
		"File.graph_unique_id UNIQUE",
		"Tag.id UNIQUE",
		"Metadata(repository, branch)",
		"Context(repository, branch)",
		"Component(repository, branch)",
		"Decision(repository, branch)",
		"Rule(repository, branch)",
		"File(repository, branch)",
		"edges(from_id)",
		"edges(to_id)",
	}
	return out
}

// Count returns the number of nodes carrying label within scope. Tag is
// global, so scope is ignored for it; Repository counts every branch node
// of scope.Repository, ignoring scope.Branch.
func Count(ctx context.Context, client *graph.Client, gw *Gateways, label string, scope Scope) (int, error) {
	switch label {
	case "Repository":
		repos, err := gw.Repository.FindByName(ctx, scope.Repository)
		if err != nil {
			return 0, err
		}
		return len(repos), nil
	case "Tag":
		tags, err := gw.Tag.FindAll(ctx)
		if err != nil {
			return 0, err
		}
		return len(tags), nil
	case "Metadata":
		items, err := gw.Metadata.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return 0, err
		}
		return len(items), nil
	case "Context":
		items, err := gw.Context.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return 0, err
		}
		return len(items), nil
	case "Component":
		items, err := gw.Component.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return 0, err
		}
		return len(items), nil
	case "Decision":
		items, err := gw.Decision.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return 0, err
		}
		return len(items), nil
	case "Rule":
		items, err := gw.Rule.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return 0, err
		}
		return len(items), nil
	case "File":
		items, err := gw.File.FindByBranch(ctx, scope.Repository, scope.Branch)
		if err != nil {
			return 0, err
		}
		return len(items), nil
	default:
		return 0, nil
	}
}

// RelationTypes returns every edge type the schema supports.
func RelationTypes() []string {
	out := make([]string, len(relationTypes))
	copy(out, relationTypes)
	return out
}
