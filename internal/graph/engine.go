package graph

import "context"

// Record is one row of an Engine query result. Keys are column or
// projection names; values follow the engine's native scan types (string,
// int64, float64, bool, time.Time, or nil).
type Record map[string]any

// Get returns a value and whether the key was present.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

// String returns the value at key as a string, or "" if absent or not a
// string.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int64 returns the value at key as an int64, accepting int64 and float64
// (SQLite and Neo4j disagree on which numeric type a driver hands back).
func (r Record) Int64(key string) int64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}

// Engine is the out-of-scope external collaborator: any concrete graph
// database satisfying parameterised queries and primary-key-indexed
// lookups. Execute takes a query in whatever dialect the concrete engine
// understands (SQL for SQLiteEngine, Cypher for Neo4jEngine). Node and
// edge primitives go through a QueryBuilder matched to the engine in use;
// scans that the builder does not cover (gateway Find* queries,
// Client.ScanEdges) are written by hand per Dialect.
type Engine interface {
	Execute(ctx context.Context, query string, params map[string]any) ([]Record, error)
	Close(ctx context.Context) error
}

// Dialect identifies which query language an Engine's QueryBuilder should
// target.
type Dialect int

const (
	DialectSQL Dialect = iota
	DialectCypher
)
