package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultDealsTokenURL = "https://api.isthereanydeal.com/oauth/token"
	defaultDealsBaseURL  = "https://api.isthereanydeal.com"

	tokenSafetyMargin = 30 * time.Second
	dealsFanOut       = 10
)

// DealsAdapter implements the deals provider contract: get_best_deals,
// get_game_prices (spec §4.2), using an internal client-credentials token
// cache. Concurrent calls past expiry collapse to one refresh (spec §5).
type DealsAdapter struct {
	client       *Client
	clientID     string
	clientSecret string
	tokenURL     string
	baseURL      string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// DealsOptions overrides the provider URLs, primarily for tests.
type DealsOptions struct {
	TokenURL string
	BaseURL  string
}

// NewDealsAdapter builds the adapter from client credentials.
func NewDealsAdapter(client *Client, clientID, clientSecret string, opts DealsOptions) *DealsAdapter {
	a := &DealsAdapter{
		client:       client,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     opts.TokenURL,
		baseURL:      opts.BaseURL,
	}
	if a.tokenURL == "" {
		a.tokenURL = defaultDealsTokenURL
	}
	if a.baseURL == "" {
		a.baseURL = defaultDealsBaseURL
	}
	return a
}

// HasCredentials reports whether client-credentials are configured.
func (a *DealsAdapter) HasCredentials() bool {
	return a.clientID != "" && a.clientSecret != ""
}

// token returns a valid access token, refreshing it if absent or within the
// safety margin of expiry. The mutex ensures concurrent refreshes collapse
// into one upstream call: every caller blocks on the same lock, and only
// the first past expiry actually performs the HTTP round trip.
func (a *DealsAdapter) token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.accessToken != "" && time.Now().Before(a.expiresAt.Add(-tokenSafetyMargin)) {
		return a.accessToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req, "deals_token")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("upstream: decode deals token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("upstream: deals token response missing access_token")
	}

	a.accessToken = payload.AccessToken
	a.expiresAt = time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return a.accessToken, nil
}

func (a *DealsAdapter) authedGet(ctx context.Context, path string, params url.Values) ([]byte, error) {
	tok, err := a.token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := a.client.Do(req, "deals")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readAll(resp.Body)
}

// GetBestDeals returns up to limit deals with discount >= minDiscountPct.
func (a *DealsAdapter) GetBestDeals(ctx context.Context, limit, minDiscountPct int) ([]DealInfo, error) {
	body, err := a.authedGet(ctx, "/deals/v2", url.Values{
		"limit":    {fmt.Sprintf("%d", limit)},
		"nondeals": {"false"},
	})
	if err != nil {
		return nil, err
	}

	var deals []DealInfo
	gjson.GetBytes(body, "list").ForEach(func(_, d gjson.Result) bool {
		deal := parseDealInfo(d)
		if deal.DiscountPct >= minDiscountPct {
			deals = append(deals, deal)
		}
		return len(deals) < limit
	})
	return deals, nil
}

// GetGamePrices returns every known shop price for appid.
func (a *DealsAdapter) GetGamePrices(ctx context.Context, appid int64) ([]DealInfo, error) {
	body, err := a.authedGet(ctx, "/games/prices/v3", url.Values{
		"games": {fmt.Sprintf("%d", appid)},
	})
	if err != nil {
		return nil, err
	}

	var deals []DealInfo
	gjson.GetBytes(body, "0.deals").ForEach(func(_, d gjson.Result) bool {
		deal := parseDealInfo(d)
		deal.AppID = appid
		deals = append(deals, deal)
		return true
	})
	return deals, nil
}

// GetGamePricesBatch looks up prices for multiple appids under the deals
// fan-out bound (spec §4.2's "deals batch lookups <= 10").
func (a *DealsAdapter) GetGamePricesBatch(ctx context.Context, appids []int64) map[int64][]DealInfo {
	results, failed := BoundedMap(appids, dealsFanOut, func(appid int64) ([]DealInfo, error) {
		return a.GetGamePrices(ctx, appid)
	})

	out := make(map[int64][]DealInfo, len(appids))
	for i, appid := range appids {
		if !failed[i] {
			out[appid] = results[i]
		}
	}
	return out
}

func parseDealInfo(d gjson.Result) DealInfo {
	return DealInfo{
		Title:       d.Get("title").String(),
		NormalPrice: d.Get("deal.regular.amount").Float(),
		SalePrice:   d.Get("deal.price.amount").Float(),
		DiscountPct: int(d.Get("deal.cut").Int()),
		Shop:        d.Get("deal.shop.name").String(),
		URL:         d.Get("deal.url").String(),
	}
}
