package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/auth"
)

func newTestGate(t *testing.T) (*RequestGate, *auth.Core, string) {
	t.Helper()
	registry, err := auth.NewRegistry(map[string]string{"client-1": "secret-1"})
	require.NoError(t, err)
	sessions := auth.NewSessionIssuer("session-secret-session-secret", time.Minute)
	core := auth.NewCore(registry, sessions, auth.NewNonceLedger(5*time.Minute, 0), nil)

	gate := NewRequestGate(core,
		[]string{"/api/", "/auth/"},
		[]string{"/health", "/"},
		[]string{"/auth/login"},
		nil,
	)
	return gate, core, "client-1"
}

func signRequest(t *testing.T, core *auth.Core, clientID, method, path string, body []byte) (string, string, string) {
	t.Helper()
	secret, ok := core.Registry().Secret(clientID)
	require.True(t, ok)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	nonce := "nonce-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	msg := auth.CanonicalMessage(method, path, body, ts, nonce)
	sig := auth.NewSigner().Sign(secret, msg)
	return ts, nonce, sig
}

func TestRequestGate_ExemptPathBypasses(t *testing.T) {
	gate, _, _ := newTestGate(t)
	called := false
	handler := gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestGate_LoginRequiresNoBearer(t *testing.T) {
	gate, core, clientID := newTestGate(t)
	handler := gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ts, nonce, sig := signRequest(t, core, clientID, http.MethodPost, "/auth/login", nil)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Client-Id", clientID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Nonce", nonce)
	req.Header.Set("X-Signature", sig)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestGate_ProtectedRequiresBearerMatchingClientID(t *testing.T) {
	gate, core, clientID := newTestGate(t)
	handler := gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	token, err := core.Sessions().Issue(clientID)
	require.NoError(t, err)

	ts, nonce, sig := signRequest(t, core, clientID, http.MethodGet, "/api/watchlist", nil)
	req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
	req.Header.Set("X-Client-Id", clientID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Nonce", nonce)
	req.Header.Set("X-Signature", sig)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestGate_RejectsMissingSignatureHeaders(t *testing.T) {
	gate, _, _ := newTestGate(t)
	handler := gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestGate_BodyIsRestoredForHandler(t *testing.T) {
	gate, core, clientID := newTestGate(t)
	payload := []byte(`{"appids":[730]}`)

	var seenBody []byte
	handler := gate.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, len(payload))
		n, _ := r.Body.Read(buf)
		seenBody = buf[:n]
		w.WriteHeader(http.StatusOK)
	}))

	token, err := core.Sessions().Issue(clientID)
	require.NoError(t, err)
	ts, nonce, sig := signRequest(t, core, clientID, http.MethodPost, "/api/games/tags/batch", payload)

	req := httptest.NewRequest(http.MethodPost, "/api/games/tags/batch", bytes.NewReader(payload))
	req.Header.Set("X-Client-Id", clientID)
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Nonce", nonce)
	req.Header.Set("X-Signature", sig)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, seenBody)
}
