package gateways

import (
	"fmt"

	"github.com/kodegraph/membank/internal/graph"
)

// scanScoped runs a read query against all nodes of label within
// (repository, branch), with an optional extra predicate (already written
// in the target dialect's syntax, referencing params by name) and ORDER BY
// clause. Every scoped-entity gateway's FindByBranch/FindByRepository/
// FindActive/FindByDateRange goes through this one query shape.
func scanScoped(dialect graph.Dialect, label, repository, branch, extraWhere, orderBy string) (string, map[string]any) {
	params := map[string]any{"repository": repository, "branch": branch}

	where := "repository = $repository AND branch = $branch"
	if dialect == graph.DialectSQL {
		where = "repository = :repository AND branch = :branch"
	}
	if extraWhere != "" {
		where += " AND " + extraWhere
	}

	var query string
	if dialect == graph.DialectCypher {
		query = fmt.Sprintf("MATCH (n:%s) WHERE %s RETURN n", label, where)
	} else {
		query = fmt.Sprintf("SELECT * FROM %s WHERE %s", graph.SQLTableName(label), where)
	}
	if orderBy != "" {
		query += " ORDER BY " + orderBy
	}
	return query, params
}

// scanByRepository runs a read query against all nodes of label across
// every branch of repository, used by bulkDeleteByRepository.
func scanByRepository(dialect graph.Dialect, label, repository string) (string, map[string]any) {
	params := map[string]any{"repository": repository}
	where := "repository = $repository"
	if dialect == graph.DialectSQL {
		where = "repository = :repository"
	}

	if dialect == graph.DialectCypher {
		return fmt.Sprintf("MATCH (n:%s) WHERE %s RETURN n", label, where), params
	}
	return fmt.Sprintf("SELECT * FROM %s WHERE %s", graph.SQLTableName(label), where), params
}
