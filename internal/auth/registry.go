// Package auth implements the two-layer client authentication scheme: a
// short-lived HMAC session token layered on top of per-request canonical
// message signatures.
package auth

import "fmt"

// Registry is the immutable, process-wide client_id -> client_secret mapping
// loaded once at startup (spec §4.3.1). The process MUST refuse to start if
// this mapping is empty: NewRegistry returns an error for an empty map and
// cmd/server exits on it, mirroring the teacher's fail-fast JWT_SECRET check.
type Registry struct {
	clients map[string]string
}

// NewRegistry builds a Registry from a resolved client map, copying it. It
// returns an error if clients is empty.
func NewRegistry(clients map[string]string) (*Registry, error) {
	if len(clients) == 0 {
		return nil, fmt.Errorf("auth: client registry must not be empty")
	}
	copied := make(map[string]string, len(clients))
	for k, v := range clients {
		copied[k] = v
	}
	return &Registry{clients: copied}, nil
}

// Secret returns the shared secret for clientID and whether it is known.
func (r *Registry) Secret(clientID string) (string, bool) {
	secret, ok := r.clients[clientID]
	return secret, ok
}

// Contains reports whether clientID is a registered client.
func (r *Registry) Contains(clientID string) bool {
	_, ok := r.clients[clientID]
	return ok
}
