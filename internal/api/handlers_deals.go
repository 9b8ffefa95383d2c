package api

import (
	"errors"
	"net/http"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/apierrors"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/httputil"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

var errDealsNotConfigured = errors.New("deals provider not configured")

const (
	defaultDealsLimit = 20
	maxDealsLimit     = 50
)

// BestDealsHandler returns the current best deals within limit/min_discount
// bounds (spec §6, §8).
func BestDealsHandler(deals *upstream.DealsAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deals.HasCredentials() {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(errDealsNotConfigured))
			return
		}

		limit := httputil.QueryInt(r, "limit", defaultDealsLimit)
		if svcErr := validateRange("limit", limit, 1, maxDealsLimit); svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}
		minDiscount := httputil.QueryInt(r, "min_discount", 0)
		if svcErr := validateRange("min_discount", minDiscount, 0, 100); svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		list, err := deals.GetBestDeals(r.Context(), limit, minDiscount)
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"deals": list})
	}
}

// GamePricesHandler returns every known shop price for a single appid.
func GamePricesHandler(deals *upstream.DealsAdapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deals.HasCredentials() {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(errDealsNotConfigured))
			return
		}

		appid, svcErr := pathAppID(r)
		if svcErr != nil {
			httputil.WriteError(w, r, svcErr)
			return
		}

		prices, err := deals.GetGamePrices(r.Context(), appid)
		if err != nil {
			httputil.WriteError(w, r, apierrors.UpstreamUnavailable(err))
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"prices": prices})
	}
}
