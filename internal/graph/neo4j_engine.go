package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/kodegraph/membank/internal/logging"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jEngine is the optional networked Engine, selected when
// MEMBANK_NEO4J_URI is set. It accepts literal Cypher through the same
// Execute contract SQLiteEngine satisfies, letting CypherQueryBuilder emit
// queries this engine understands without the kernel ever knowing which
// engine is active.
type Neo4jEngine struct {
	driver   neo4j.DriverWithContext
	logger   *logging.Logger
	database string
}

// OpenNeo4jEngine connects to a Neo4j instance and verifies connectivity
// before returning, so a misconfigured engine fails at startup rather than
// on the first tool call.
func OpenNeo4jEngine(ctx context.Context, uri, user, password string) (*Neo4jEngine, error) {
	if uri == "" || user == "" || password == "" {
		return nil, fmt.Errorf("neo4j credentials missing: uri=%s, user=%s", uri, user)
	}

	driver, err := neo4j.NewDriverWithContext(uri,
		neo4j.BasicAuth(user, password, ""),
		func(config *neo4j.Config) {
			config.MaxConnectionPoolSize = 50
			config.ConnectionAcquisitionTimeout = 60 * time.Second
			config.MaxConnectionLifetime = 3600 * time.Second
			config.SocketConnectTimeout = 5 * time.Second
			config.SocketKeepalive = true
		})
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", uri, err)
	}

	logger := logging.With("component", "neo4j_engine")
	logger.Info("neo4j engine connected", "uri", uri, "user", user)

	return &Neo4jEngine{
		driver:   driver,
		logger:   logger,
		database: "neo4j",
	}, nil
}

// Execute runs a parameterised Cypher statement and converts the result
// into the engine-agnostic Record shape.
func (e *Neo4jEngine) Execute(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	if params == nil {
		params = map[string]any{}
	}

	result, err := neo4j.ExecuteQuery(ctx, e.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.database))
	if err != nil {
		return nil, fmt.Errorf("cypher execution failed: %w", err)
	}

	records := make([]Record, 0, len(result.Records))
	for _, rec := range result.Records {
		row := rec.AsMap()
		for k, v := range row {
			if node, ok := v.(neo4j.Node); ok {
				row[k] = node.Props
			}
		}
		// A single-column projection of one node (RETURN n) collapses to
		// that node's own properties, so a Record's keys are always
		// property names regardless of whether the query came from the SQL
		// or Cypher QueryBuilder.
		if len(row) == 1 {
			for _, v := range row {
				if props, ok := v.(map[string]any); ok {
					row = props
				}
			}
		}
		records = append(records, Record(row))
	}

	e.logger.Debug("cypher executed", "record_count", len(records))
	return records, nil
}

// Close closes the underlying driver connection.
func (e *Neo4jEngine) Close(ctx context.Context) error {
	if err := e.driver.Close(ctx); err != nil {
		return fmt.Errorf("failed to close neo4j driver: %w", err)
	}
	e.logger.Info("neo4j engine closed")
	return nil
}
