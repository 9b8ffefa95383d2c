package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/storage"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

var errNoCachedCount = errors.New("no live or cached player count available")

// ListGamesHandler returns the full catalog cache (spec §6).
func ListGamesHandler(store *storage.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := store.GetAllGames(r.Context())
		if err != nil {
			httputil.WriteError(w, r, apierrors.StorageUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"games": games})
	}
}

// GetGameHandler returns a single catalog row with its genres and categories.
func GetGameHandler(store *storage.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appid, svcErr := pathAppID(r)
		if svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		game, err := store.GetGame(r.Context(), appid)
		if err != nil {
			httputil.WriteError(w, r, apierrors.StorageUnavailable(err))
			return
		}
		if game == nil {
			httputil.WriteError(w, r, apierrors.NotFound("game"))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, game)
	}
}

// CurrentPlayersHandler returns a live player count, falling back to the
// watchlist's last known sample when the upstream call fails, and 503 only
// when neither source has data (spec §7's "best available cached data" policy).
func CurrentPlayersHandler(store *storage.Gateway, players *upstream.PlayerCountAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appid, svcErr := pathAppID(r)
		if svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		if count, ok := players.GetPlayerCount(r.Context(), appid); ok {
			httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"appid":        appid,
				"player_count": count,
				"source":       "live",
			})
			return
		}

		entry, err := store.GetWatchlistEntry(r.Context(), appid)
		if err != nil {
			httputil.WriteError(w, r, apierrors.StorageUnavailable(err))
			return
		}
		if entry == nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(errNoCachedCount))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"appid":        appid,
			"player_count": entry.LastCount,
			"source":       "cached",
		})
	}
}

type batchTagsRequest struct {
	AppIDs []int64 `json:"appids"`
}

type gameTags struct {
	AppID      int64    `json:"appid"`
	Genres     []string `json:"genres"`
	Categories []string `json:"categories"`
}

// BatchTagsHandler returns per-appid genre/category tags for up to 100
// appids in a single request (spec §6).
func BatchTagsHandler(store *storage.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body batchTagsRequest
		if svcErr := httputil.DecodeJSON(r, &body); svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}
		if svcErr := validateBatchAppIDs(body.AppIDs); svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		results, failed := upstream.BoundedMap(body.AppIDs, tagLookupFanOut, func(appid int64) (gameTags, error) {
			game, err := store.GetGame(r.Context(), appid)
			if err != nil {
				return gameTags{}, err
			}
			if game == nil {
				return gameTags{AppID: appid}, nil
			}
			return gameTags{AppID: appid, Genres: game.Genres, Categories: game.Categories}, nil
		})

		tags := make([]gameTags, 0, len(results))
		for i, tag := range results {
			if failed[i] {
				continue
			}
			tags = append(tags, tag)
		}

		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
	}
}

const tagLookupFanOut = 10

func pathAppID(r *http.Request) (int64, *apierrors.ServiceError) {
	raw := mux.Vars(r)["appid"]
	appid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apierrors.InvalidInput("appid", "must be an integer")
	}
	if svcErr := validateAppID(appid); svcErr != nil {
		return 0, svcErr
	}
	return appid, nil
}
