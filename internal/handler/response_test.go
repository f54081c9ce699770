package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-api/internal/model"
	"chat-api/pkg/apierror"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) model.APIResponse {
	t.Helper()
	var body model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteError_MapsStoreSentinels(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"user not found", model.ErrUserNotFound, http.StatusNotFound, "user not found"},
		{"role not found", model.ErrRoleNotFound, http.StatusNotFound, "role not found"},
		{"endpoint not found", model.ErrEndpointNotFound, http.StatusNotFound, "endpoint not found"},
		{"duplicate user", fmt.Errorf("%w: username already in use", model.ErrUserAlreadyExists), http.StatusBadRequest, "user already exists"},
		{"endpoint conflict", model.ErrEndpointConflict, http.StatusBadRequest, "an active endpoint already exists for that route and verb"},
		{"password mismatch", model.ErrPasswordMismatch, http.StatusBadRequest, "password does not match"},
		{"account locked", fmt.Errorf("%w: too many failed login attempts", model.ErrAccountLocked), http.StatusBadRequest, "account is locked"},
		{"invalid token", fmt.Errorf("%w: issuer mismatch", model.ErrInvalidToken), http.StatusUnauthorized, "invalid or expired token"},
		{"expired token", model.ErrTokenExpired, http.StatusUnauthorized, "invalid or expired token"},
		{"refresh mismatch", model.ErrRefreshMismatch, http.StatusUnauthorized, "refresh token does not match the one on record"},
		{"invalid input", fmt.Errorf("%w: at least one message is required", model.ErrInvalidInput), http.StatusBadRequest, "invalid input"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeEnvelope(t, rec)
			assert.False(t, body.Success)
			require.NotNil(t, body.Message)
			assert.Equal(t, tc.message, *body.Message)
		})
	}
}

func TestWriteError_APIErrorTakesPrecedence(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apierror.Forbidden("no access to this resource"))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	body := decodeEnvelope(t, rec)
	require.NotNil(t, body.Message)
	assert.Equal(t, "no access to this resource", *body.Message)
}

func TestWriteError_UnclassifiedIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pool exhausted"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.False(t, body.Success)
	require.NotNil(t, body.Message)
	assert.Equal(t, "unexpected server error", *body.Message)
}
