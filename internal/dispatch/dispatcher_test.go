package dispatch

import (
	"context"
	"testing"

	"github.com/kodegraph/membank/internal/config"
	"github.com/kodegraph/membank/internal/facade"
	"github.com/kodegraph/membank/internal/progress"
	"github.com/kodegraph/membank/internal/registry"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	reg := registry.New(config.Default())
	t.Cleanup(func() { reg.CloseAll(context.Background()) })
	return New(facade.New(reg))
}

func TestDispatchInitBindsSessionAndOpensClient(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()

	env := d.Dispatch(ctx, "conn-1", "init-memory-bank", map[string]any{
		"projectRoot": t.TempDir(),
		"repository":  "acme/widget",
		"branch":      "main",
	}, progress.NoopNotifier{})

	require.False(t, env.IsError)
	require.Equal(t, 1, d.Sessions.Len())
}

func TestDispatchInitRequiresProjectRoot(t *testing.T) {
	d := newTestDispatcher(t)
	env := d.Dispatch(context.Background(), "conn-1", "init-memory-bank", map[string]any{}, nil)
	require.True(t, env.IsError)
}

func TestDispatchUnknownToolFails(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	d.Dispatch(ctx, "conn-1", "init-memory-bank", map[string]any{"projectRoot": t.TempDir(), "repository": "acme/widget"}, nil)

	env := d.Dispatch(ctx, "conn-1", "not-a-real-tool", map[string]any{}, nil)
	require.True(t, env.IsError)
}

func TestDispatchWithoutSessionFallsBackToArgumentProjectRoot(t *testing.T) {
	d := newTestDispatcher(t)
	root := t.TempDir()

	env := d.Dispatch(context.Background(), "stateless-conn", "upsert_component", map[string]any{
		"projectRoot": root,
		"repository":  "acme/widget",
		"branch":      "main",
		"id":          "comp-a",
		"status":      "active",
	}, nil)

	require.False(t, env.IsError)
}

func TestDispatchEndToEndUpsertThenQuery(t *testing.T) {
	d := newTestDispatcher(t)
	ctx := context.Background()
	root := t.TempDir()

	env := d.Dispatch(ctx, "conn-1", "init-memory-bank", map[string]any{
		"projectRoot": root,
		"repository":  "acme/widget",
		"branch":      "main",
	}, nil)
	require.False(t, env.IsError)

	env = d.Dispatch(ctx, "conn-1", "upsert_component", map[string]any{"id": "comp-a", "status": "active"}, nil)
	require.False(t, env.IsError)

	env = d.Dispatch(ctx, "conn-1", "count", map[string]any{"label": "Component"}, nil)
	require.False(t, env.IsError)
	require.Equal(t, 1, env.StructuredContent)
}
