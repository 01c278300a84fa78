// Package registry implements the Client Registry: it maps each client
// project root to a lazily-created, cached Store Client and guarantees
// at-most-one initialization per root under concurrent demand.
package registry

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/kodegraph/membank/internal/config"
	"github.com/kodegraph/membank/internal/errors"
	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Registry owns the mapping of project-root to Store Client. Concurrent
// calls to GetClient for the same root coalesce into one winner via
// singleflight; the loser receives the winner's result rather than
// opening its own engine.
type Registry struct {
	cfg    *config.Config
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[string]*graph.Client

	group singleflight.Group
}

// New creates a Client Registry bound to the given configuration.
func New(cfg *config.Config) *Registry {
	return &Registry{
		cfg:     cfg,
		logger:  logging.With("component", "registry"),
		clients: make(map[string]*graph.Client),
	}
}

// GetClient returns the cached Store Client for root, creating and
// installing its schema on first use. root is canonicalized so that
// relative and absolute spellings of the same directory share one Client.
func (r *Registry) GetClient(ctx context.Context, root string) (*graph.Client, error) {
	key, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.IoErrorWrap(err, "failed to resolve project root")
	}

	r.mu.RLock()
	if client, ok := r.clients[key]; ok {
		r.mu.RUnlock()
		return client, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.group.Do(key, func() (interface{}, error) {
		// Another goroutine may have won the race between the RUnlock
		// above and acquiring the singleflight key.
		r.mu.RLock()
		if client, ok := r.clients[key]; ok {
			r.mu.RUnlock()
			return client, nil
		}
		r.mu.RUnlock()

		client, err := r.openClient(ctx, key)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.clients[key] = client
		r.mu.Unlock()

		return client, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*graph.Client), nil
}

func (r *Registry) openClient(ctx context.Context, root string) (*graph.Client, error) {
	if r.cfg.UseNeo4j() {
		engine, err := graph.OpenNeo4jEngine(ctx, r.cfg.Neo4j.URI, r.cfg.Neo4j.User, r.cfg.Neo4j.Password)
		if err != nil {
			return nil, errors.EngineErrorWrap(err, "failed to open neo4j engine")
		}
		client := graph.NewClient(engine, graph.DialectCypher, root)
		if err := graph.InstallSchema(ctx, engine, graph.DialectCypher); err != nil {
			engine.Close(ctx)
			return nil, errors.EngineErrorWrap(err, "failed to install schema")
		}
		r.logger.Info("opened client", "root", root, "engine", "neo4j")
		return client, nil
	}

	dbPath := filepath.Join(root, r.cfg.DBFilename)
	engine, err := graph.OpenSQLiteEngine(ctx, dbPath)
	if err != nil {
		return nil, errors.EngineErrorWrap(err, "failed to open sqlite engine")
	}
	client := graph.NewClient(engine, graph.DialectSQL, root)
	if err := graph.InstallSchema(ctx, engine, graph.DialectSQL); err != nil {
		engine.Close(ctx)
		return nil, errors.EngineErrorWrap(err, "failed to install schema")
	}
	r.logger.Info("opened client", "root", root, "engine", "sqlite", "path", dbPath)
	return client, nil
}

// Evict closes and forgets the Client for root, if one exists. Used by
// tests and by CLI commands that need to reset state between runs.
func (r *Registry) Evict(ctx context.Context, root string) error {
	key, err := filepath.Abs(root)
	if err != nil {
		return errors.IoErrorWrap(err, "failed to resolve project root")
	}

	r.mu.Lock()
	client, ok := r.clients[key]
	delete(r.clients, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return client.Close(ctx)
}

// CloseAll closes every cached Client, used on graceful shutdown.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for root, client := range r.clients {
		if err := client.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.clients, root)
	}
	return firstErr
}

// Len returns the number of currently cached clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Roots returns the canonical project roots with a cached Client, used by
// the status CLI command to report what is currently open.
func (r *Registry) Roots() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roots := make([]string, 0, len(r.clients))
	for root := range r.clients {
		roots = append(roots, root)
	}
	return roots
}
