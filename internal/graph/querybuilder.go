package graph

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches safe label/column/relationship names — letters,
// digits, underscore, not starting with a digit. Both SQL identifiers and
// Cypher labels share this rule.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func isValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// QueryBuilder builds parameterised queries against one dialect (SQL or
// Cypher) without ever interpolating a caller-supplied value into the
// query text — every value travels through the params map. Gateways hold
// one QueryBuilder per Client, matched to that Client's Engine.
type QueryBuilder interface {
	// Dialect reports which engine this builder targets.
	Dialect() Dialect

	// UpsertNode builds a query that creates-or-replaces a node identified
	// by (table/label, keyColumn, keyValue), setting the given properties.
	UpsertNode(label, keyColumn string, keyValue any, properties map[string]any) (query string, params map[string]any, err error)

	// GetNode builds a query that fetches a single node by primary key.
	GetNode(label, keyColumn string, keyValue any) (query string, params map[string]any, err error)

	// DeleteNode builds a detach-delete: the node and its incident edges.
	DeleteNode(label, keyColumn string, keyValue any) (query string, params map[string]any, err error)

	// MergeEdge builds a query that creates an edge between two existing
	// nodes if it does not already exist.
	MergeEdge(fromLabel, fromKey string, fromValue any, toLabel, toKey string, toValue any, edgeType string) (query string, params map[string]any, err error)
}

// NewQueryBuilder returns the QueryBuilder matched to a dialect.
func NewQueryBuilder(d Dialect) QueryBuilder {
	switch d {
	case DialectCypher:
		return &cypherQueryBuilder{}
	default:
		return &sqlQueryBuilder{}
	}
}

// ─── SQL dialect (SQLiteEngine) ──────────────────────────────────────────

// sqlTableNames maps the logical node label every gateway uses (matching
// the Cypher label schema.go installs as a Neo4j constraint) to this
// dialect's physical table name, so gateways never hand-pick a naming
// convention per engine.
var sqlTableNames = map[string]string{
	"Repository": "repositories",
	"Metadata":   "metadata",
	"Context":    "contexts",
	"Component":  "components",
	"Decision":   "decisions",
	"Rule":       "rules",
	"File":       "files",
	"Tag":        "tags",
}

func sqlTableName(label string) string {
	if table, ok := sqlTableNames[label]; ok {
		return table
	}
	return label
}

// SQLTableName exposes the same label-to-table mapping UpsertNode/GetNode/
// DeleteNode use internally, for gateways that need to hand-build a scan
// query the four QueryBuilder primitives don't cover (date ranges, status
// filters, scope filters).
func SQLTableName(label string) string {
	return sqlTableName(label)
}

type sqlQueryBuilder struct{}

func (b *sqlQueryBuilder) Dialect() Dialect { return DialectSQL }

func (b *sqlQueryBuilder) UpsertNode(label, keyColumn string, keyValue any, properties map[string]any) (string, map[string]any, error) {
	if !isValidIdentifier(label) {
		return "", nil, fmt.Errorf("invalid node table: %s", label)
	}
	if !isValidIdentifier(keyColumn) {
		return "", nil, fmt.Errorf("invalid key column: %s", keyColumn)
	}
	label = sqlTableName(label)

	params := map[string]any{keyColumn: keyValue}
	columns := []string{keyColumn}
	placeholders := []string{":" + keyColumn}
	updateClauses := []string{}

	for col, val := range properties {
		if !isValidIdentifier(col) {
			return "", nil, fmt.Errorf("invalid property column: %s", col)
		}
		if col == keyColumn {
			continue
		}
		params[col] = val
		columns = append(columns, col)
		placeholders = append(placeholders, ":"+col)
		updateClauses = append(updateClauses, fmt.Sprintf("%s = :%s", col, col))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		label,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		keyColumn,
		strings.Join(updateClauses, ", "),
	)
	return query, params, nil
}

func (b *sqlQueryBuilder) GetNode(label, keyColumn string, keyValue any) (string, map[string]any, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(keyColumn) {
		return "", nil, fmt.Errorf("invalid identifier: %s.%s", label, keyColumn)
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s = :%s", sqlTableName(label), keyColumn, keyColumn)
	return query, map[string]any{keyColumn: keyValue}, nil
}

func (b *sqlQueryBuilder) DeleteNode(label, keyColumn string, keyValue any) (string, map[string]any, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(keyColumn) {
		return "", nil, fmt.Errorf("invalid identifier: %s.%s", label, keyColumn)
	}
	// Edge rows are removed first by the caller (Client.DeleteNode), since
	// a single SQL statement can't detach-delete across the shared edges
	// table the way a Cypher DETACH DELETE does in one step.
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = :%s", sqlTableName(label), keyColumn, keyColumn)
	return query, map[string]any{keyColumn: keyValue}, nil
}

func (b *sqlQueryBuilder) MergeEdge(fromLabel, fromKey string, fromValue any, toLabel, toKey string, toValue any, edgeType string) (string, map[string]any, error) {
	if !isValidIdentifier(fromLabel) || !isValidIdentifier(fromKey) || !isValidIdentifier(toLabel) || !isValidIdentifier(toKey) || !isValidIdentifier(edgeType) {
		return "", nil, fmt.Errorf("invalid identifier in edge merge")
	}
	fromTable, toTable := sqlTableName(fromLabel), sqlTableName(toLabel)
	query := `
		INSERT INTO edges (edge_type, from_label, from_id, to_label, to_id)
		SELECT :edge_type, :from_label, f.` + fromKey + `, :to_label, t.` + toKey + `
		FROM ` + fromTable + ` f, ` + toTable + ` t
		WHERE f.` + fromKey + ` = :from_value AND t.` + toKey + ` = :to_value
		ON CONFLICT(edge_type, from_id, to_id) DO NOTHING
	`
	params := map[string]any{
		"edge_type":  edgeType,
		"from_label": fromLabel,
		"to_label":   toLabel,
		"from_value": fromValue,
		"to_value":   toValue,
	}
	return query, params, nil
}

// ─── Cypher dialect (Neo4jEngine) ────────────────────────────────────────

type cypherQueryBuilder struct{}

func (b *cypherQueryBuilder) Dialect() Dialect { return DialectCypher }

func (b *cypherQueryBuilder) UpsertNode(label, keyColumn string, keyValue any, properties map[string]any) (string, map[string]any, error) {
	if !isValidIdentifier(label) {
		return "", nil, fmt.Errorf("invalid node label: %s", label)
	}
	if !isValidIdentifier(keyColumn) {
		return "", nil, fmt.Errorf("invalid key property: %s", keyColumn)
	}

	params := map[string]any{"key_value": keyValue}
	setClauses := []string{}
	for prop, val := range properties {
		if !isValidIdentifier(prop) {
			return "", nil, fmt.Errorf("invalid property key: %s", prop)
		}
		params[prop] = val
		setClauses = append(setClauses, fmt.Sprintf("n.%s = $%s", prop, prop))
	}

	query := fmt.Sprintf(
		"MERGE (n:%s {%s: $key_value}) SET %s RETURN n",
		label, keyColumn, strings.Join(setClauses, ", "),
	)
	return query, params, nil
}

func (b *cypherQueryBuilder) GetNode(label, keyColumn string, keyValue any) (string, map[string]any, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(keyColumn) {
		return "", nil, fmt.Errorf("invalid identifier: %s.%s", label, keyColumn)
	}
	query := fmt.Sprintf("MATCH (n:%s {%s: $key_value}) RETURN n", label, keyColumn)
	return query, map[string]any{"key_value": keyValue}, nil
}

func (b *cypherQueryBuilder) DeleteNode(label, keyColumn string, keyValue any) (string, map[string]any, error) {
	if !isValidIdentifier(label) || !isValidIdentifier(keyColumn) {
		return "", nil, fmt.Errorf("invalid identifier: %s.%s", label, keyColumn)
	}
	query := fmt.Sprintf("MATCH (n:%s {%s: $key_value}) DETACH DELETE n", label, keyColumn)
	return query, map[string]any{"key_value": keyValue}, nil
}

func (b *cypherQueryBuilder) MergeEdge(fromLabel, fromKey string, fromValue any, toLabel, toKey string, toValue any, edgeType string) (string, map[string]any, error) {
	if !isValidIdentifier(fromLabel) || !isValidIdentifier(fromKey) || !isValidIdentifier(toLabel) || !isValidIdentifier(toKey) || !isValidIdentifier(edgeType) {
		return "", nil, fmt.Errorf("invalid identifier in edge merge")
	}
	query := fmt.Sprintf(
		"MATCH (f:%s {%s: $from_value}) MATCH (t:%s {%s: $to_value}) MERGE (f)-[r:%s]->(t) RETURN r",
		fromLabel, fromKey, toLabel, toKey, edgeType,
	)
	params := map[string]any{"from_value": fromValue, "to_value": toValue}
	return query, params, nil
}
