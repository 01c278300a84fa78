package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuccessCarriesResultWithoutError(t *testing.T) {
	env := Success(map[string]any{"ok": true})
	require.False(t, env.IsError)
	require.Empty(t, env.Content)
}

func TestFailureCarriesMessageAsContentBlock(t *testing.T) {
	env := Failure("boom")
	require.True(t, env.IsError)
	require.Len(t, env.Content, 1)
	require.Equal(t, "boom", env.Content[0].Text)
}
