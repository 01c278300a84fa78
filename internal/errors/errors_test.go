package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapReturnsNilOnNilError(t *testing.T) {
	require.Nil(t, Wrap(nil, EngineError, "should not happen"))
}

func TestWrapPreservesCauseAndUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := IoErrorWrap(cause, "failed to write snapshot")

	require.Equal(t, IoError, err.Code)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "disk full")
}

func TestCodeOfDefaultsToInternalForPlainError(t *testing.T) {
	require.Equal(t, Internal, CodeOf(errors.New("plain")))
	require.Equal(t, Internal, CodeOf(nil))
}

func TestCodeOfExtractsCodeFromStructuredError(t *testing.T) {
	err := SessionUnboundError("no session bound")
	require.Equal(t, SessionUnbound, CodeOf(err))
}

func TestIsCodeMatchesOnlyStructuredErrorsWithThatCode(t *testing.T) {
	require.True(t, IsCode(ConflictError("bad transition"), Conflict))
	require.False(t, IsCode(ConflictError("bad transition"), NotFound))
	require.False(t, IsCode(errors.New("plain"), Conflict))
}

func TestWithContextAccumulatesKeys(t *testing.T) {
	err := InvalidArgumentError("bad id").WithContext("id", "xyz").WithContext("field", "status")
	require.Equal(t, "xyz", err.Context["id"])
	require.Equal(t, "status", err.Context["field"])
}

func TestDetailedStringIncludesCodeMessageAndCause(t *testing.T) {
	cause := errors.New("root cause")
	err := EngineErrorWrap(cause, "query failed")
	detail := err.DetailedString()

	require.Contains(t, detail, "ENGINE_ERROR")
	require.Contains(t, detail, "query failed")
	require.Contains(t, detail, "root cause")
}
