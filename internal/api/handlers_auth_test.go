package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/auth"
)

func newTestCore(t *testing.T) *auth.Core {
	t.Helper()
	registry, err := auth.NewRegistry(map[string]string{"client-a": "secret-a"})
	require.NoError(t, err)
	sessions := auth.NewSessionIssuer("session-secret-at-least-32-bytes!!", 1200*time.Second)
	nonces := auth.NewNonceLedger(5*time.Minute, 1000)
	return auth.NewCore(registry, sessions, nonces, nil)
}

func TestLoginHandler_IssuesTokenForRegisteredClient(t *testing.T) {
	core := newTestCore(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"client_id":"client-a"}`))
	req.Header.Set("X-Client-Id", "client-a")
	rec := httptest.NewRecorder()

	LoginHandler(core, 1200*time.Second)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)
}

func TestLoginHandler_RejectsClientIDMismatch(t *testing.T) {
	core := newTestCore(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"client_id":"client-a"}`))
	req.Header.Set("X-Client-Id", "someone-else")
	rec := httptest.NewRecorder()

	LoginHandler(core, 1200*time.Second)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler_RejectsUnknownClient(t *testing.T) {
	core := newTestCore(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"client_id":"ghost"}`))
	req.Header.Set("X-Client-Id", "ghost")
	rec := httptest.NewRecorder()

	LoginHandler(core, 1200*time.Second)(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
