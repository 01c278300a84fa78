// Package ops implements the Operations Layer: stateless functions keyed
// by tool name, each taking the gateways and scope it needs and returning
// one of the typed result categories below rather than an untyped envelope.
package ops

import "time"

// EntityResult wraps the post-image of an upsert.
type EntityResult struct {
	Entity any `json:"entity"`
}

// ListResult wraps an ordered collection returned by a query operation.
type ListResult struct {
	Items []any `json:"items"`
}

// AssociationResult reports whether an association call materialized an
// edge. A false Success is not an error — both endpoints must exist.
type AssociationResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// AnalyticsResult carries the output of a graph algorithm plus enough
// metadata for the caller to judge determinism/partial-progress claims.
type AnalyticsResult struct {
	Algorithm string         `json:"algorithm"`
	Nodes     map[string]any `json:"nodes,omitempty"`
	Groups    [][]string     `json:"groups,omitempty"`
	Score     float64        `json:"score,omitempty"`
	Path      []string       `json:"path,omitempty"`
	Iterations int           `json:"iterations,omitempty"`
}

// BulkResult reports the outcome of a bulk delete, real or dry-run.
type BulkResult struct {
	Count    int      `json:"count"`
	Entities []string `json:"entities"`
	Warnings []string `json:"warnings"`
	DryRun   bool     `json:"dry_run"`
}

// Scope identifies the (repository, branch) pair every scoped operation
// runs against, threaded explicitly rather than held as state per
// spec.md §4.6 ("the façade holds no per-request mutable state").
type Scope struct {
	Repository string
	Branch     string
}

// clock is overridable by tests; production code always calls time.Now.
var clock = time.Now
