package session

import (
	"testing"

	"github.com/kodegraph/membank/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestBindDefaultsBranchToMain(t *testing.T) {
	m := NewManager()
	sess := m.Bind("conn-1", "/repo", "acme/widget", "")
	require.Equal(t, "main", sess.Branch)
	require.Equal(t, 1, m.Len())
}

func TestGetUnboundConnectionReturnsSessionUnbound(t *testing.T) {
	m := NewManager()
	_, err := m.Get("nope")
	require.Error(t, err)
	require.True(t, errors.IsCode(err, errors.SessionUnbound))
}

func TestReleaseRemovesSession(t *testing.T) {
	m := NewManager()
	m.Bind("conn-1", "/repo", "acme/widget", "main")
	m.Release("conn-1")
	require.Equal(t, 0, m.Len())
	_, err := m.Get("conn-1")
	require.Error(t, err)
}

func TestResolveScopeArgumentsOverrideSessionDefaults(t *testing.T) {
	sess := &Session{Repository: "acme/widget", Branch: "main"}

	repo, branch := sess.ResolveScope("", "")
	require.Equal(t, "acme/widget", repo)
	require.Equal(t, "main", branch)

	repo, branch = sess.ResolveScope("other/repo", "feature-x")
	require.Equal(t, "other/repo", repo)
	require.Equal(t, "feature-x", branch)
}
