package exceptions

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    *ServiceError
		status int
		kind   Kind
	}{
		{Validation("title is required"), http.StatusBadRequest, KindValidation},
		{Unauthenticated("missing token"), http.StatusUnauthorized, KindUnauthenticated},
		{Forbidden("not a manager"), http.StatusForbidden, KindForbidden},
		{NotFound("sharepoint", "abc"), http.StatusNotFound, KindNotFound},
		{Conflict("stale"), http.StatusConflict, KindConflict},
		{Internal("db down", errors.New("boom")), http.StatusInternalServerError, KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.err.StatusCode)
		assert.Equal(t, tc.kind, tc.err.Kind)
	}
}

func TestAsFindsWrappedError(t *testing.T) {
	base := Forbidden("manager approval required").WithCode("MANAGER_APPROVAL_REQUIRED")
	wrapped := fmt.Errorf("sign: %w", base)

	se, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "MANAGER_APPROVAL_REQUIRED", se.Code)
	assert.True(t, IsKind(wrapped, KindForbidden))
	assert.False(t, IsKind(errors.New("plain"), KindForbidden))
}

func TestInternalUnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load sharepoint", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}
