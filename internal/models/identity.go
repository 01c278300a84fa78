package models

import (
	"fmt"
	"strings"
)

// idPrefixes maps each scoped entity's conventional logical-ID prefix to
// the entity kind it belongs to. Nothing reads this table; the prefix
// check on upsert is done in the ops package, which rejects an id that
// lacks its entity's prefix.
var idPrefixes = map[string]string{
	"comp-": "Component",
	"dec-":  "Decision",
	"rule-": "Rule",
	"file-": "File",
	"tag-":  "Tag",
	"ctx-":  "Context",
}

// GraphUniqueID derives the composite primary key for a scoped entity:
// "{repository}:{branch}:{id}". Repository and Tag do not use this —
// Repository's id is "{name}:{branch}" and Tag's id is used directly.
func GraphUniqueID(repository, branch, id string) string {
	return fmt.Sprintf("%s:%s:%s", repository, branch, id)
}

// RepositoryNodeID derives the Repository node's id.
func RepositoryNodeID(name, branch string) string {
	return fmt.Sprintf("%s:%s", name, branch)
}

// SplitGraphUniqueID reverses GraphUniqueID, returning an error if the
// input has fewer than three colon-delimited segments. It splits on the
// first two colons only, so any further ":" stays in the logical id.
func SplitGraphUniqueID(guid string) (repository, branch, id string, err error) {
	parts := strings.SplitN(guid, ":", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed graph_unique_id %q: expected repository:branch:id", guid)
	}
	return parts[0], parts[1], parts[2], nil
}

// ValidateScopeAgreement checks invariant §3.2: a scoped entity's
// repository and branch properties must agree with its graph_unique_id
// prefix.
func ValidateScopeAgreement(guid, repository, branch string) error {
	wantRepo, wantBranch, _, err := SplitGraphUniqueID(guid)
	if err != nil {
		return err
	}
	if wantRepo != repository || wantBranch != branch {
		return fmt.Errorf("graph_unique_id %q does not agree with repository=%q branch=%q", guid, repository, branch)
	}
	return nil
}

// SameScope reports whether two scoped entities share the same
// (repository, branch) pair, required for DEPENDS_ON, CONTAINS_FILE, and
// CONTEXT_OF edges.
func SameScope(repoA, branchA, repoB, branchB string) bool {
	return repoA == repoB && branchA == branchB
}
