package graph

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/kodegraph/membank/internal/logging"
	_ "modernc.org/sqlite"
)

// SQLiteEngine is the default embedded Engine: one file per project root,
// opened through the pure-Go modernc.org/sqlite driver and accessed via
// jmoiron/sqlx for named-parameter binding. SQLite permits exactly one
// writer per handle; Client is responsible for serializing writes, not
// this type.
type SQLiteEngine struct {
	db     *sqlx.DB
	logger *logging.Logger
	path   string
}

// OpenSQLiteEngine opens (creating if absent) the SQLite file at path and
// applies the pragmas the corpus reaches for on every local SQLite store:
// WAL for concurrent readers, a busy timeout instead of immediate
// SQLITE_BUSY, and foreign keys on.
func OpenSQLiteEngine(ctx context.Context, path string) (*SQLiteEngine, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &SQLiteEngine{
		db:     db,
		logger: logging.With("component", "sqlite_engine", "path", path),
		path:   path,
	}, nil
}

// Execute runs a named-parameter SQL statement. SELECTs return one Record
// per row; everything else runs as a write and returns an empty slice.
func (e *SQLiteEngine) Execute(ctx context.Context, query string, params map[string]any) ([]Record, error) {
	if params == nil {
		params = map[string]any{}
	}

	trimmed := strings.TrimSpace(strings.ToUpper(query))
	if strings.HasPrefix(trimmed, "SELECT") {
		rows, err := e.db.NamedQueryContext(ctx, query, params)
		if err != nil {
			return nil, err
		}
		defer rows.Close()

		var records []Record
		for rows.Next() {
			row := map[string]any{}
			if err := rows.MapScan(row); err != nil {
				return nil, err
			}
			records = append(records, Record(row))
		}
		return records, rows.Err()
	}

	if _, err := e.db.NamedExecContext(ctx, query, params); err != nil {
		return nil, err
	}
	return nil, nil
}

// Close closes the underlying database handle.
func (e *SQLiteEngine) Close(ctx context.Context) error {
	e.logger.Info("sqlite engine closed")
	return e.db.Close()
}

// Path returns the file path backing this engine.
func (e *SQLiteEngine) Path() string {
	return e.path
}
