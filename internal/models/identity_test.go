package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGraphUniqueIDAndSplitRoundTrip(t *testing.T) {
	guid := GraphUniqueID("acme/widget", "main", "comp-a")
	require.Equal(t, "acme/widget:main:comp-a", guid)

	repo, branch, id, err := SplitGraphUniqueID(guid)
	require.NoError(t, err)
	require.Equal(t, "acme/widget", repo)
	require.Equal(t, "main", branch)
	require.Equal(t, "comp-a", id)
}

func TestSplitGraphUniqueIDAllowsColonsInsideLogicalID(t *testing.T) {
	repo, branch, id, err := SplitGraphUniqueID("acme/widget:main:comp-a:v2")
	require.NoError(t, err)
	require.Equal(t, "acme/widget", repo)
	require.Equal(t, "main", branch)
	require.Equal(t, "comp-a:v2", id)
}

func TestSplitGraphUniqueIDRejectsMalformedInput(t *testing.T) {
	_, _, _, err := SplitGraphUniqueID("not-enough-segments")
	require.Error(t, err)
}

func TestRepositoryNodeIDFormat(t *testing.T) {
	require.Equal(t, "acme/widget:main", RepositoryNodeID("acme/widget", "main"))
}

func TestValidateScopeAgreementAcceptsMatchingScope(t *testing.T) {
	guid := GraphUniqueID("acme/widget", "main", "comp-a")
	require.NoError(t, ValidateScopeAgreement(guid, "acme/widget", "main"))
}

func TestValidateScopeAgreementRejectsMismatchedBranch(t *testing.T) {
	guid := GraphUniqueID("acme/widget", "main", "comp-a")
	require.Error(t, ValidateScopeAgreement(guid, "acme/widget", "feature-x"))
}

func TestSameScope(t *testing.T) {
	require.True(t, SameScope("acme/widget", "main", "acme/widget", "main"))
	require.False(t, SameScope("acme/widget", "main", "acme/widget", "dev"))
	require.False(t, SameScope("acme/widget", "main", "acme/other", "main"))
}
