package httputil

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the best-effort client IP address from the request.
//
// If the direct peer is on a private network (typical for a reverse proxy
// in front of this service), X-Forwarded-For / X-Real-IP are trusted. If the
// request arrives directly from the internet, those spoofable headers are
// ignored and RemoteAddr is used instead.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}

	remoteIP := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remoteIP); err == nil {
		remoteIP = host
	}

	parsedRemote := net.ParseIP(remoteIP)
	trustForwarded := parsedRemote != nil && (parsedRemote.IsPrivate() || parsedRemote.IsLoopback() || parsedRemote.IsLinkLocalUnicast())

	if trustForwarded {
		if xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xff != "" {
			candidate := strings.TrimSpace(strings.Split(xff, ",")[0])
			if host, _, err := net.SplitHostPort(candidate); err == nil {
				candidate = host
			}
			if candidate != "" {
				return candidate
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			if host, _, err := net.SplitHostPort(xri); err == nil {
				xri = host
			}
			if xri != "" {
				return xri
			}
		}
	}

	return remoteIP
}
