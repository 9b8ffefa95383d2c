package auth

import (
	"context"
	"strconv"
	"testing"
	"time"
)

func testCore(t *testing.T) (*Core, string) {
	t.Helper()
	registry, err := NewRegistry(map[string]string{"client-1": "secret-1"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	sessions := NewSessionIssuer("session-secret-session-secret", time.Minute)
	nonces := NewNonceLedger(5*time.Minute, 0)
	return NewCore(registry, sessions, nonces, nil), "client-1"
}

func signedInput(core *Core, clientID, nonce string, ts time.Time) SignedRequestInput {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	secret, _ := core.registry.Secret(clientID)
	msg := CanonicalMessage("GET", "/api/watchlist", nil, timestamp, nonce)
	sig := core.signer.Sign(secret, msg)
	return SignedRequestInput{
		Method: "GET", Path: "/api/watchlist", Body: nil,
		ClientID: clientID, Timestamp: timestamp, Nonce: nonce, Signature: sig,
	}
}

func TestCore_VerifySignedRequest_Valid(t *testing.T) {
	core, clientID := testCore(t)
	in := signedInput(core, clientID, "nonce-alpha-0001", time.Now())
	if err := core.VerifySignedRequest(context.Background(), in); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestCore_VerifySignedRequest_MissingHeaders(t *testing.T) {
	core, _ := testCore(t)
	err := core.VerifySignedRequest(context.Background(), SignedRequestInput{Method: "GET", Path: "/x"})
	if err == nil || err.Code != "AUTH_MISSING_HEADERS" {
		t.Fatalf("expected missing headers error, got %v", err)
	}
}

func TestCore_VerifySignedRequest_UnknownClient(t *testing.T) {
	core, _ := testCore(t)
	in := SignedRequestInput{
		Method: "GET", Path: "/x", ClientID: "ghost",
		Timestamp: "1700000000", Nonce: "nonce-unknown-01", Signature: "sig",
	}
	err := core.VerifySignedRequest(context.Background(), in)
	if err == nil || err.Code != "AUTH_UNKNOWN_CLIENT" {
		t.Fatalf("expected unknown client error, got %v", err)
	}
}

func TestCore_VerifySignedRequest_StaleRequestBoundary(t *testing.T) {
	core, clientID := testCore(t)

	// Exactly 60s old must still pass.
	atBoundary := signedInput(core, clientID, "nonce-boundary01", time.Now().Add(-StaleWindow))
	if err := core.VerifySignedRequest(context.Background(), atBoundary); err != nil {
		t.Errorf("request exactly at the stale window boundary should pass, got %v", err)
	}

	// 61s old must be rejected.
	pastBoundary := signedInput(core, clientID, "nonce-past-00001", time.Now().Add(-StaleWindow-time.Second))
	err := core.VerifySignedRequest(context.Background(), pastBoundary)
	if err == nil || err.Code != "AUTH_STALE_REQUEST" {
		t.Fatalf("request past the stale window should be rejected, got %v", err)
	}
}

func TestCore_VerifySignedRequest_NonceLengthBoundary(t *testing.T) {
	core, clientID := testCore(t)

	// Exactly 16 bytes must still pass.
	atBoundary := signedInput(core, clientID, "sixteen-byte-non", time.Now())
	if err := core.VerifySignedRequest(context.Background(), atBoundary); err != nil {
		t.Errorf("16-byte nonce should pass, got %v", err)
	}

	// 15 bytes must be rejected.
	underBoundary := signedInput(core, clientID, "fifteen-byte-no", time.Now())
	err := core.VerifySignedRequest(context.Background(), underBoundary)
	if err == nil || err.Code != "AUTH_MISSING_HEADERS" {
		t.Fatalf("sub-16-byte nonce should be rejected, got %v", err)
	}
}

func TestCore_VerifySignedRequest_ReplayRejected(t *testing.T) {
	core, clientID := testCore(t)
	in := signedInput(core, clientID, "nonce-replay0001", time.Now())

	if err := core.VerifySignedRequest(context.Background(), in); err != nil {
		t.Fatalf("first use should pass, got %v", err)
	}
	err := core.VerifySignedRequest(context.Background(), in)
	if err == nil || err.Code != "AUTH_REPLAY" {
		t.Fatalf("replayed nonce should be rejected, got %v", err)
	}
}

func TestCore_VerifySignedRequest_BadSignatureStillConsumesNonce(t *testing.T) {
	core, clientID := testCore(t)
	in := signedInput(core, clientID, "nonce-badsig0001", time.Now())
	in.Signature = "clearly-wrong"

	err := core.VerifySignedRequest(context.Background(), in)
	if err == nil || err.Code != "AUTH_BAD_SIGNATURE" {
		t.Fatalf("expected bad signature error, got %v", err)
	}

	// The nonce was consumed even though the signature check failed.
	retry := in
	retry.Signature = core.signer.Sign("secret-1", CanonicalMessage("GET", "/api/watchlist", nil, in.Timestamp, in.Nonce))
	err = core.VerifySignedRequest(context.Background(), retry)
	if err == nil || err.Code != "AUTH_REPLAY" {
		t.Fatalf("nonce should already be consumed, got %v", err)
	}
}

func TestCore_VerifyProtected_ClientMismatch(t *testing.T) {
	registry, err := NewRegistry(map[string]string{"client-1": "secret-1", "client-2": "secret-2"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	sessions := NewSessionIssuer("session-secret-session-secret", time.Minute)
	core := NewCore(registry, sessions, NewNonceLedger(5*time.Minute, 0), nil)

	// Bearer token belongs to client-1, but the signed request claims client-2.
	token, err := core.sessions.Issue("client-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	in := signedInput(core, "client-2", "nonce-mismatch01", time.Now())

	if _, svcErr := core.VerifyProtected(context.Background(), token, in); svcErr == nil || svcErr.Code != "AUTH_CLIENT_MISMATCH" {
		t.Fatalf("expected client mismatch, got %v", svcErr)
	}
}
