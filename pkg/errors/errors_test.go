package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeObligationNotFound, "obligation not found")
	assert.Equal(t, "[OBL_001] obligation not found", e.Error())

	withDetail := e.WithDetail("id=ob-42")
	assert.Equal(t, "[OBL_001] obligation not found: id=ob-42", withDetail.Error())
	// WithDetail must not mutate the receiver.
	assert.Empty(t, e.Detail)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "insert failed"))
}

func TestWrap_PreservesCodeOnUnknown(t *testing.T) {
	inner := MissingAnchor("formation date required")
	wrapped := Wrap(inner, ErrCodeUnknown, "template skipped")
	assert.Equal(t, ErrCodeMissingAnchor, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, wrapped))

	var ae *AppError
	require.True(t, stderrors.As(wrapped, &ae))
}

func TestWrap_ChainTraversal(t *testing.T) {
	root := fmt.Errorf("driver: connection refused")
	wrapped := Wrap(Wrap(root, ErrCodeDatabaseError, "query failed"), ErrCodeInternal, "generation aborted")

	assert.True(t, IsCode(wrapped, ErrCodeDatabaseError))
	assert.True(t, IsCode(wrapped, ErrCodeInternal))
	assert.False(t, IsCode(wrapped, ErrCodeMissingAnchor))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(New(ErrCodeObligationNotFound, "gone")))
	assert.True(t, IsNotFound(NotFound("gone")))
	assert.False(t, IsNotFound(InvalidParam("bad")))
	assert.False(t, IsNotFound(nil))
}

func TestIsConflict(t *testing.T) {
	assert.True(t, IsConflict(New(ErrCodeAlreadyCompleted, "done twice")))
	assert.True(t, IsConflict(InvalidState("bad transition")))
	assert.False(t, IsConflict(Internal("boom")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(fmt.Errorf("plain")))
	assert.Equal(t, ErrCodeInvalidFeeRange, GetCode(InvalidRange("min > max")))
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeObligationNotFound, http.StatusNotFound},
		{ErrCodeAlreadyCompleted, http.StatusConflict},
		{ErrCodeMissingAnchor, http.StatusUnprocessableEntity},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrorCode("BOGUS_999"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatusForCode(tt.code), string(tt.code))
	}
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "OBL", ModuleForCode(ErrCodeObligationNotFound))
	assert.Equal(t, "RULE", ModuleForCode(ErrCodeMissingAnchor))
	assert.Equal(t, "CATALOG", ModuleForCode(ErrCodeConfiguration))
}

func TestClientServerClassification(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.False(t, IsServerError(ErrCodeBadRequest))
	assert.True(t, IsServerError(ErrCodeDatabaseError))
}
