package graph

import (
	"context"
	"strings"
	"sync"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/logging"
)

// Client is the Store Client: it exclusively owns one Engine and the
// schema within it (spec.md §3 Ownership). Writes are serialized behind a
// mutex because SQLiteEngine permits exactly one writer per handle;
// Neo4jEngine tolerates concurrent writers but pays the same cost here for
// a uniform guarantee regardless of which engine is active.
type Client struct {
	engine  Engine
	builder QueryBuilder
	logger  *logging.Logger
	mu      sync.Mutex
	root    string
}

// NewClient wraps an already-open Engine. root identifies the project root
// this Client serves, used only for logging context.
func NewClient(engine Engine, dialect Dialect, root string) *Client {
	return &Client{
		engine:  engine,
		builder: NewQueryBuilder(dialect),
		logger:  logging.With("component", "graph_client", "root", root),
		root:    root,
	}
}

// Builder returns the QueryBuilder matched to this Client's Engine, for
// gateways that need to express something beyond the four primitives
// below (e.g. multi-hop traversals in the Operations Layer).
func (c *Client) Builder() QueryBuilder {
	return c.builder
}

// isWrite reports whether a query mutates state, used to decide whether a
// call needs the write mutex. Cypher MERGE/CREATE/DELETE/SET and SQL
// INSERT/UPDATE/DELETE all require it; read-only MATCH/SELECT do not.
func isWrite(query string) bool {
	upper := strings.ToUpper(strings.TrimSpace(query))
	for _, kw := range []string{"INSERT", "UPDATE", "DELETE", "MERGE", "CREATE", "SET", "DROP", "DETACH"} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// Execute runs a query built by this Client's QueryBuilder (or, for
// traversals the four primitives don't cover, hand-built against the same
// dialect). Writes are serialized; reads are not.
func (c *Client) Execute(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	if isWrite(query) {
		c.mu.Lock()
		defer c.mu.Unlock()
	}

	c.logger.Debug("executing query", "write", isWrite(query))
	records, err := c.engine.Execute(ctx, query, params)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "graph engine query failed")
	}
	return records, nil
}

// UpsertNode creates or replaces a node via this Client's QueryBuilder.
func (c *Client) UpsertNode(ctx context.Context, label, keyColumn string, keyValue any, properties map[string]any) error {
	query, params, err := c.builder.UpsertNode(label, keyColumn, keyValue, properties)
	if err != nil {
		return errors.InvalidArgumentError(err.Error())
	}
	_, execErr := c.Execute(ctx, query, params)
	return execErr
}

// GetNode fetches a single node by primary key, returning nil if absent.
func (c *Client) GetNode(ctx context.Context, label, keyColumn string, keyValue any) (Record, error) {
	query, params, err := c.builder.GetNode(label, keyColumn, keyValue)
	if err != nil {
		return nil, errors.InvalidArgumentError(err.Error())
	}
	records, execErr := c.Execute(ctx, query, params)
	if execErr != nil {
		return nil, execErr
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// DeleteNode removes a node and, for the SQL dialect, the edge rows a
// single DELETE FROM can't detach in the same statement Cypher's DETACH
// DELETE handles atomically.
func (c *Client) DeleteNode(ctx context.Context, label, keyColumn string, keyValue any) error {
	if c.builder.Dialect() == DialectSQL {
		c.mu.Lock()
		if _, err := c.engine.Execute(ctx, "DELETE FROM edges WHERE from_id = :id OR to_id = :id", map[string]any{"id": keyValue}); err != nil {
			c.mu.Unlock()
			return errors.EngineErrorWrap(err, "failed to delete incident edges")
		}
		c.mu.Unlock()
	}

	query, params, err := c.builder.DeleteNode(label, keyColumn, keyValue)
	if err != nil {
		return errors.InvalidArgumentError(err.Error())
	}
	_, execErr := c.Execute(ctx, query, params)
	return execErr
}

// MergeEdge creates an edge between two existing nodes if absent.
func (c *Client) MergeEdge(ctx context.Context, fromLabel, fromKey string, fromValue any, toLabel, toKey string, toValue any, edgeType string) error {
	query, params, err := c.builder.MergeEdge(fromLabel, fromKey, fromValue, toLabel, toKey, toValue, edgeType)
	if err != nil {
		return errors.InvalidArgumentError(err.Error())
	}
	_, execErr := c.Execute(ctx, query, params)
	return execErr
}

// Edge is one materialized relationship, read back from either dialect's
// storage of the shared edge type.
type Edge struct {
	From string
	To   string
	Type string
}

// ScanEdges returns every materialized edge whose type is in relTypes, in
// either direction. Used by multi-hop, relationship-filtered traversals
// (get_related_items, shortest_path) that cut across entity types and so
// don't belong to any single Repository Gateway.
func (c *Client) ScanEdges(ctx context.Context, relTypes []string) ([]Edge, error) {
	if len(relTypes) == 0 {
		return nil, nil
	}

	var query string
	params := map[string]any{}

	if c.builder.Dialect() == DialectCypher {
		placeholders := make([]string, len(relTypes))
		for i, t := range relTypes {
			key := "rt" + string(rune('0'+i))
			placeholders[i] = "$" + key
			params[key] = t
		}
		query = "MATCH (a)-[r]-(b) WHERE type(r) IN [" + strings.Join(placeholders, ", ") + "] RETURN DISTINCT a.graph_unique_id AS from_id, b.graph_unique_id AS to_id, type(r) AS edge_type"
	} else {
		placeholders := make([]string, len(relTypes))
		for i, t := range relTypes {
			key := "rt" + string(rune('0'+i))
			placeholders[i] = ":" + key
			params[key] = t
		}
		query = "SELECT from_id, to_id, edge_type FROM edges WHERE edge_type IN (" + strings.Join(placeholders, ", ") + ")"
	}

	records, err := c.Execute(ctx, query, params)
	if err != nil {
		return nil, err
	}

	edges := make([]Edge, 0, len(records))
	for _, rec := range records {
		edges = append(edges, Edge{From: rec.String("from_id"), To: rec.String("to_id"), Type: rec.String("edge_type")})
	}
	return edges, nil
}

// Close releases the underlying engine. Only the Client Registry should
// call this — Repository Gateways hold a non-owning reference.
func (c *Client) Close(ctx context.Context) error {
	return c.engine.Close(ctx)
}
