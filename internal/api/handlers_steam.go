package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

const defaultMostPlayedN = 25

// MostPlayedHandler returns the current top-N most played titles, enriched
// with catalog details (spec §4.2, §6).
func MostPlayedHandler(catalog *upstream.CatalogAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := httputil.QueryInt(r, "n", defaultMostPlayedN)
		if svcErr := validateRange("n", n, 1, 100); svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		games, err := catalog.GetMostPlayedTopN(r.Context(), n)
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"games": games})
	}
}

// ComingSoonHandler returns upcoming titles, enriched with catalog details.
func ComingSoonHandler(catalog *upstream.CatalogAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := catalog.GetComingSoon(r.Context())
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"games": games})
	}
}

// PlayerSummaryHandler returns a resolved player's public profile summary.
func PlayerSummaryHandler(user *upstream.UserAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		steamID, svcErr := resolvedSteamID(r, user)
		if svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		summary, err := user.GetPlayerSummary(r.Context(), steamID)
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		if summary == nil {
			httputil.WriteError(w, r, apierrors.NotFound("steam profile"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summary)
	}
}

// OwnedGamesHandler returns a resolved player's owned games library.
func OwnedGamesHandler(user *upstream.UserAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		steamID, svcErr := resolvedSteamID(r, user)
		if svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		games, err := user.GetOwnedGames(r.Context(), steamID)
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"games": games})
	}
}

// RecentlyPlayedHandler returns a resolved player's recently played games.
func RecentlyPlayedHandler(user *upstream.UserAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		steamID, svcErr := resolvedSteamID(r, user)
		if svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		games, err := user.GetRecentlyPlayed(r.Context(), steamID)
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"games": games})
	}
}

// BadgesHandler returns a resolved player's badge list.
func BadgesHandler(user *upstream.UserAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		steamID, svcErr := resolvedSteamID(r, user)
		if svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		badges, err := user.GetBadges(r.Context(), steamID)
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"badges": badges})
	}
}

func resolvedSteamID(r *http.Request, user *upstream.UserAdapter) (string, *apierrors.ServiceError) {
	raw := mux.Vars(r)["steamid"]
	if raw == "" {
		return "", apierrors.MissingParameter("steamid")
	}
	return resolveSteamID(r.Context(), user, raw)
}
