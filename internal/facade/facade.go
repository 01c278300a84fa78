// Package facade implements the Service Façade: per spec.md §4.6, the
// one place that resolves a Store Client via the registry, constructs
// the gateways it needs, and invokes an Operations Layer function with
// an explicit (context, projectRoot, repository, branch, args) tuple.
// It holds no per-request mutable state.
package facade

import (
	"context"

	"github.com/kodegraph/membank/internal/graph"
	"github.com/kodegraph/membank/internal/ops"
	"github.com/kodegraph/membank/internal/progress"
	"github.com/kodegraph/membank/internal/registry"
)

// Facade is a thin, stateless wrapper around the Client Registry. One
// instance is shared process-wide; all scoping travels through call
// arguments, never through Facade fields.
type Facade struct {
	registry *registry.Registry
}

// New constructs a Facade over a process-wide Client Registry.
func New(reg *registry.Registry) *Facade {
	return &Facade{registry: reg}
}

// Call is the single entry point spec.md §4.6 describes: resolve the
// Client for projectRoot, build gateways against it, and hand control to
// fn — the Tool Dispatcher's handler for one tool — with the resolved
// Client, Gateways, and Scope ready to use.
func (f *Facade) Call(ctx context.Context, projectRoot, repository, branch string, fn func(ctx context.Context, client *graph.Client, gw *ops.Gateways, scope ops.Scope) (any, error)) (any, error) {
	client, err := f.registry.GetClient(ctx, projectRoot)
	if err != nil {
		return nil, err
	}
	gw := ops.NewGateways(client)
	scope := ops.Scope{Repository: repository, Branch: branch}
	return fn(ctx, client, gw, scope)
}

// EnsureClient resolves (cold-starting if necessary) the Store Client for
// projectRoot without invoking an operation, so init-memory-bank can
// surface a failed cold-start immediately rather than on the session's
// first real call.
func (f *Facade) EnsureClient(ctx context.Context, projectRoot string) (*graph.Client, error) {
	return f.registry.GetClient(ctx, projectRoot)
}

// Notifier is re-exported so dispatch handlers constructed through the
// façade don't need a second import for the capability they're handed.
type Notifier = progress.Notifier
