package api

import (
	"net/http"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/storage"
)

// GetWatchlistHandler returns every watchlisted title (spec §6).
func GetWatchlistHandler(store *storage.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := store.GetWatchlist(r.Context())
		if err != nil {
			httputil.WriteError(w, r, apierrors.StorageUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"watchlist": entries})
	}
}
