package graph

import (
	"context"
	"strings"
)

// sqliteSchema creates one table per node label plus a shared edges table,
// matching spec.md §3's entity/relationship model. Every statement is
// idempotent so InstallSchema can run on every Client creation.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS repositories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	branch TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
	graph_unique_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	repository TEXT NOT NULL,
	branch TEXT NOT NULL,
	name TEXT NOT NULL,
	content TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS contexts (
	graph_unique_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	repository TEXT NOT NULL,
	branch TEXT NOT NULL,
	agent TEXT,
	summary TEXT,
	observation TEXT,
	date DATETIME,
	issue TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS components (
	graph_unique_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	repository TEXT NOT NULL,
	branch TEXT NOT NULL,
	name TEXT NOT NULL,
	kind TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	depends_on TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS decisions (
	graph_unique_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	repository TEXT NOT NULL,
	branch TEXT NOT NULL,
	name TEXT NOT NULL,
	date DATETIME,
	context TEXT,
	status TEXT NOT NULL DEFAULT 'proposed',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS rules (
	graph_unique_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	repository TEXT NOT NULL,
	branch TEXT NOT NULL,
	name TEXT NOT NULL,
	created DATETIME,
	content TEXT,
	triggers TEXT,
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	graph_unique_id TEXT PRIMARY KEY,
	id TEXT NOT NULL,
	repository TEXT NOT NULL,
	branch TEXT NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	language TEXT,
	metrics TEXT,
	content_hash TEXT,
	mime_type TEXT,
	size_bytes INTEGER,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	color TEXT,
	description TEXT,
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	edge_type TEXT NOT NULL,
	from_label TEXT NOT NULL,
	from_id TEXT NOT NULL,
	to_label TEXT NOT NULL,
	to_id TEXT NOT NULL,
	PRIMARY KEY (edge_type, from_id, to_id)
);

CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
CREATE INDEX IF NOT EXISTS idx_components_scope ON components(repository, branch);
CREATE INDEX IF NOT EXISTS idx_contexts_scope ON contexts(repository, branch);
CREATE INDEX IF NOT EXISTS idx_decisions_scope ON decisions(repository, branch);
CREATE INDEX IF NOT EXISTS idx_rules_scope ON rules(repository, branch);
CREATE INDEX IF NOT EXISTS idx_files_scope ON files(repository, branch);
CREATE INDEX IF NOT EXISTS idx_metadata_scope ON metadata(repository, branch);
`

// neo4jSchemaStatements mirror the same model as uniqueness constraints,
// since Cypher has no CREATE TABLE — labels are implicit at node creation.
var neo4jSchemaStatements = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Repository) REQUIRE r.id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Metadata) REQUIRE m.graph_unique_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Context) REQUIRE c.graph_unique_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Component) REQUIRE c.graph_unique_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Decision) REQUIRE d.graph_unique_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (r:Rule) REQUIRE r.graph_unique_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (f:File) REQUIRE f.graph_unique_id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Tag) REQUIRE t.id IS UNIQUE",
}

// InstallSchema creates node tables/constraints and edge storage on first
// use of a Client. Idempotent: safe to call on every Client creation.
func InstallSchema(ctx context.Context, engine Engine, dialect Dialect) error {
	if dialect == DialectCypher {
		for _, stmt := range neo4jSchemaStatements {
			if _, err := engine.Execute(ctx, stmt, nil); err != nil {
				return err
			}
		}
		return nil
	}

	for _, stmt := range strings.Split(sqliteSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := engine.Execute(ctx, stmt, nil); err != nil {
			return err
		}
	}
	return nil
}
