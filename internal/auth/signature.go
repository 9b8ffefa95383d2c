package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// CanonicalMessage builds the exact string a client and server both sign:
// METHOD | PATH | HEX(SHA256(body)) | TIMESTAMP | NONCE
func CanonicalMessage(method, path string, body []byte, timestamp, nonce string) []byte {
	sum := sha256.Sum256(body)
	parts := []string{
		strings.ToUpper(method),
		path,
		hex.EncodeToString(sum[:]),
		timestamp,
		nonce,
	}
	return []byte(strings.Join(parts, " | "))
}

// Signer computes and verifies canonical-message HMAC-SHA256 signatures,
// grounded on the teacher's HMACSign/HMACVerify helpers.
type Signer struct{}

// NewSigner returns a Signer. It carries no state: every call takes the
// per-client secret explicitly, since secrets are looked up per request.
func NewSigner() *Signer { return &Signer{} }

// Sign returns BASE64(HMAC-SHA256(secret, message)).
func (Signer) Sign(secret string, message []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the expected HMAC of message
// under secret, using a constant-time comparison.
func (Signer) Verify(secret string, message []byte, signature string) bool {
	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(message)
	computed := mac.Sum(nil)
	return subtle.ConstantTimeCompare(expected, computed) == 1
}
