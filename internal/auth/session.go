package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway absorbs clock skew when checking token expiry (spec §4.3.2).
const DefaultLeeway = 120 * time.Second

// sessionClaims is the self-contained session token payload. There is no
// server-side token store; revocation is by expiry only.
type sessionClaims struct {
	ClientID string `json:"client_id"`
	Type     string `json:"type"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies session tokens with an HMAC-family
// algorithm under a single process-wide secret.
type SessionIssuer struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
}

// NewSessionIssuer builds a SessionIssuer. secret must be non-empty; the
// caller enforces that invariant at startup.
func NewSessionIssuer(secret string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = 1200 * time.Second
	}
	return &SessionIssuer{secret: []byte(secret), ttl: ttl, leeway: DefaultLeeway}
}

// Issue mints a new session token for clientID.
func (s *SessionIssuer) Issue(clientID string) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		ClientID: clientID,
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   clientID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify validates tokenString's signature and expiry (with leeway) and
// returns the embedded client_id. Signature verification is constant-time,
// performed internally by golang-jwt's HMAC implementation via hmac.Equal.
func (s *SessionIssuer) Verify(tokenString string) (string, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(jwt.WithLeeway(s.leeway), jwt.WithValidMethods([]string{"HS256"}))
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("auth: token not valid")
	}
	if claims.Type != "access" {
		return "", fmt.Errorf("auth: unexpected token type %q", claims.Type)
	}
	if claims.ClientID == "" {
		return "", fmt.Errorf("auth: token missing client_id")
	}
	return claims.ClientID, nil
}
