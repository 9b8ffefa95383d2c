package auth

import (
	"testing"
	"time"
)

func TestSessionIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewSessionIssuer("a-session-secret-of-sufficient-length", time.Minute)

	token, err := issuer.Issue("client-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clientID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if clientID != "client-1" {
		t.Errorf("client_id = %q, want client-1", clientID)
	}
}

func TestSessionIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewSessionIssuer("secret-one-secret-one", time.Minute)
	other := NewSessionIssuer("secret-two-secret-two", time.Minute)

	token, err := issuer.Issue("client-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := other.Verify(token); err == nil {
		t.Error("token signed under a different secret must not verify")
	}
}

func TestSessionIssuer_LeewayAbsorbsClockSkew(t *testing.T) {
	// A token whose TTL just expired should still verify within the leeway window.
	// NewSessionIssuer replaces a non-positive TTL with the default, so the
	// negative TTL is set on the issuer directly.
	issuer := NewSessionIssuer("a-session-secret-of-sufficient-length", time.Minute)
	issuer.ttl = -time.Second
	token, err := issuer.Issue("client-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("expired-but-within-leeway token should verify, got %v", err)
	}
}

func TestSessionIssuer_RejectsExpiredBeyondLeeway(t *testing.T) {
	issuer := NewSessionIssuer("a-session-secret-of-sufficient-length", time.Minute)
	issuer.ttl = -(DefaultLeeway + time.Minute)
	token, err := issuer.Issue("client-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := issuer.Verify(token); err == nil {
		t.Error("token expired beyond leeway must not verify")
	}
}
