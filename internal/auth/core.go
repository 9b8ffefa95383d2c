package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
)

// StaleWindow bounds |now - timestamp| for a request to be accepted (spec §4.3.3 step 3).
const StaleWindow = 60 * time.Second

// minNonceLength rejects nonces too short to carry meaningful replay
// protection (spec §8).
const minNonceLength = 16

// Core composes the client registry, session issuer, signature verifier,
// and nonce ledger into the checks the Request Gate and API handlers need.
type Core struct {
	registry *Registry
	sessions *SessionIssuer
	signer   Signer
	nonces   *NonceLedger
	logger   *logging.Logger
}

// NewCore builds the Auth Core from its already-validated dependencies.
func NewCore(registry *Registry, sessions *SessionIssuer, nonces *NonceLedger, logger *logging.Logger) *Core {
	return &Core{registry: registry, sessions: sessions, signer: NewSigner(), nonces: nonces, logger: logger}
}

// Sessions exposes the underlying issuer, e.g. for the login handler.
func (c *Core) Sessions() *SessionIssuer { return c.sessions }

// Registry exposes the underlying client registry.
func (c *Core) Registry() *Registry { return c.registry }

// VerifySession validates a bearer token and returns the embedded client_id.
// This is the "has a valid session" check of spec §4.3.5.
func (c *Core) VerifySession(token string) (string, *apierrors.ServiceError) {
	clientID, err := c.sessions.Verify(token)
	if err != nil {
		return "", apierrors.InvalidToken(err)
	}
	return clientID, nil
}

// SignedRequestInput carries everything needed to run the signed-request
// check independent of how the caller extracted it from an *http.Request.
type SignedRequestInput struct {
	Method    string
	Path      string
	Body      []byte
	ClientID  string
	Timestamp string
	Nonce     string
	Signature string
}

// VerifySignedRequest runs steps 1-5 of spec §4.3.3, in order. The nonce is
// recorded only once steps 1-3 pass (before the signature check runs): a
// failed signature check on a fresh nonce still consumes that nonce, per the
// documented policy trading a small denial-of-self risk for simplicity.
func (c *Core) VerifySignedRequest(ctx context.Context, in SignedRequestInput) *apierrors.ServiceError {
	if in.ClientID == "" || in.Timestamp == "" || in.Nonce == "" || in.Signature == "" {
		c.logReject(ctx, "missing_headers")
		return apierrors.MissingHeaders()
	}
	if len(in.Nonce) < minNonceLength {
		c.logReject(ctx, "missing_headers")
		return apierrors.MissingHeaders()
	}

	secret, ok := c.registry.Secret(in.ClientID)
	if !ok {
		c.logReject(ctx, "unknown_client")
		return apierrors.UnknownClient()
	}

	if !withinStaleWindow(in.Timestamp) {
		c.logReject(ctx, "stale_request")
		return apierrors.StaleRequest()
	}

	if !c.nonces.CheckAndInsert(in.Nonce) {
		c.logReject(ctx, "replay")
		return apierrors.Replay()
	}

	message := CanonicalMessage(in.Method, in.Path, in.Body, in.Timestamp, in.Nonce)
	if !c.signer.Verify(secret, message, in.Signature) {
		c.logReject(ctx, "bad_signature")
		return apierrors.BadSignature()
	}

	return nil
}

// VerifyProtected composes both checks for a protected endpoint: a valid
// session AND a valid signed request, additionally asserting the bearer's
// client_id matches X-Client-Id (spec §4.3.5).
func (c *Core) VerifyProtected(ctx context.Context, bearer string, in SignedRequestInput) (string, *apierrors.ServiceError) {
	clientID, svcErr := c.VerifySession(bearer)
	if svcErr != nil {
		return "", svcErr
	}
	if svcErr := c.VerifySignedRequest(ctx, in); svcErr != nil {
		return "", svcErr
	}
	if clientID != in.ClientID {
		c.logReject(ctx, "client_mismatch")
		return "", apierrors.ClientMismatch()
	}
	return clientID, nil
}

// RateLimitKey derives the rate-limit key from a bearer token when present
// and valid, falling back to the transport peer address otherwise. It MUST
// use the exact same decoding rules (including leeway) as VerifySession so a
// token considered valid by the endpoint is also valid for the limiter
// (spec §4.3.6).
func (c *Core) RateLimitKey(r *http.Request, peerAddr string) string {
	bearer := bearerToken(r)
	if bearer != "" {
		if clientID, err := c.sessions.Verify(bearer); err == nil {
			return "client:" + clientID
		}
	}
	return "peer:" + peerAddr
}

func (c *Core) logReject(ctx context.Context, reason string) {
	if c.logger == nil {
		return
	}
	c.logger.LogSecurityEvent(ctx, "auth_rejected", map[string]interface{}{"reason": reason})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || h[:len(prefix)] != prefix {
		return ""
	}
	return h[len(prefix):]
}

func withinStaleWindow(timestamp string) bool {
	ts, err := parseUnixTimestamp(timestamp)
	if err != nil {
		return false
	}
	// The header carries whole seconds, so compare at second granularity:
	// a timestamp exactly StaleWindow away is still accepted.
	delta := time.Now().Unix() - ts.Unix()
	if delta < 0 {
		delta = -delta
	}
	return time.Duration(delta)*time.Second <= StaleWindow
}
