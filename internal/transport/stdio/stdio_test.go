package stdio

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kodegraph/membank/internal/config"
	"github.com/kodegraph/membank/internal/dispatch"
	"github.com/kodegraph/membank/internal/facade"
	"github.com/kodegraph/membank/internal/registry"
	"github.com/stretchr/testify/require"
)

func TestRunDispatchesOneLinePerRequest(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(config.Default())
	t.Cleanup(func() { reg.CloseAll(ctx) })
	d := dispatch.New(facade.New(reg))

	root := t.TempDir()
	initReq, _ := json.Marshal(Request{Tool: "init-memory-bank", Arguments: map[string]any{
		"projectRoot": root, "repository": "acme/widget", "branch": "main",
	}})
	upsertReq, _ := json.Marshal(Request{Tool: "upsert_component", Arguments: map[string]any{
		"id": "comp-a", "status": "active",
	}})

	in := bytes.NewBufferString(string(initReq) + "\n" + string(upsertReq) + "\n")
	var out bytes.Buffer

	transport := New(in, &out, d)
	require.NoError(t, transport.Run(ctx))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first dispatch.Envelope
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.False(t, first.IsError)

	var second dispatch.Envelope
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.False(t, second.IsError)
}

func TestRunWritesFailureEnvelopeOnParseError(t *testing.T) {
	ctx := context.Background()
	reg := registry.New(config.Default())
	t.Cleanup(func() { reg.CloseAll(ctx) })
	d := dispatch.New(facade.New(reg))

	in := bytes.NewBufferString("not json\n")
	var out bytes.Buffer

	transport := New(in, &out, d)
	require.NoError(t, transport.Run(ctx))

	var env dispatch.Envelope
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(out.Bytes()), &env))
	require.True(t, env.IsError)
}
