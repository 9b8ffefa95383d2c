package api

import (
	"net/http"
	"time"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/auth"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
)

type loginRequest struct {
	ClientID string `json:"client_id"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// LoginHandler issues a session token once the Request Gate has already
// verified the signed-request headers (spec §4.3.5, §6). The body's
// client_id must match the already-verified X-Client-Id header.
func LoginHandler(core *auth.Core, sessionTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body loginRequest
		if svcErr := httputil.DecodeJSON(r, &body); svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		headerClientID := r.Header.Get("X-Client-Id")
		if body.ClientID == "" || body.ClientID != headerClientID {
			httputil.WriteError(w, r, apierrors.InvalidInput("client_id", "must match X-Client-Id header"))
			return
		}
		if !core.Registry().Contains(body.ClientID) {
			httputil.WriteError(w, r, apierrors.UnknownClient())
			return
		}

		token, err := core.Sessions().Issue(body.ClientID)
		if err != nil {
			httputil.WriteError(w, r, apierrors.Internal(err))
			return
		}

		httputil.WriteJSON(w, http.StatusOK, loginResponse{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresIn:   int(sessionTTL.Seconds()),
		})
	}
}
