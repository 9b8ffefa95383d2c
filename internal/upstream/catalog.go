package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const (
	defaultAppDetailsBaseURL = "https://store.steampowered.com/api/appdetails"
	defaultMostPlayedBaseURL = "https://store.steampowered.com/api/charts/mostplayed"
	defaultComingSoonBaseURL = "https://store.steampowered.com/api/comingsoon"

	catalogFanOut = 10
)

// CatalogAdapter implements the catalog provider contract: get_app_details,
// get_most_played_top_n, get_coming_soon (spec §4.2).
type CatalogAdapter struct {
	client             *Client
	appDetailsBaseURL  string
	mostPlayedBaseURL  string
	comingSoonBaseURL  string
}

// CatalogOptions overrides the provider base URLs, primarily for tests.
type CatalogOptions struct {
	AppDetailsBaseURL string
	MostPlayedBaseURL string
	ComingSoonBaseURL string
}

// NewCatalogAdapter builds the adapter, falling back to the real Steam Store
// endpoints for any unset option.
func NewCatalogAdapter(client *Client, opts CatalogOptions) *CatalogAdapter {
	a := &CatalogAdapter{
		client:            client,
		appDetailsBaseURL: opts.AppDetailsBaseURL,
		mostPlayedBaseURL: opts.MostPlayedBaseURL,
		comingSoonBaseURL: opts.ComingSoonBaseURL,
	}
	if a.appDetailsBaseURL == "" {
		a.appDetailsBaseURL = defaultAppDetailsBaseURL
	}
	if a.mostPlayedBaseURL == "" {
		a.mostPlayedBaseURL = defaultMostPlayedBaseURL
	}
	if a.comingSoonBaseURL == "" {
		a.comingSoonBaseURL = defaultComingSoonBaseURL
	}
	return a
}

// GetAppDetails fetches and parses catalog details for a single appid, or
// nil if the upstream has no entry / the request ultimately failed.
func (a *CatalogAdapter) GetAppDetails(ctx context.Context, appid int64, country, lang string) (*GameDetails, error) {
	q := url.Values{
		"appids": {fmt.Sprintf("%d", appid)},
		"cc":     {country},
		"l":      {lang},
	}
	reqURL := a.appDetailsBaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req, "catalog")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readAll(resp.Body)
	if err != nil {
		return nil, err
	}

	appKey := fmt.Sprintf("%d", appid)
	root := gjson.GetBytes(body, appKey)
	if !root.Get("success").Bool() {
		return nil, nil
	}

	data := root.Get("data")
	return parseGameDetails(appid, data), nil
}

// GetMostPlayedTopN fetches the top-N most played titles, enriching each
// with full catalog details under a bounded-concurrency fan-out.
func (a *CatalogAdapter) GetMostPlayedTopN(ctx context.Context, n int) ([]GameDetails, error) {
	appids, err := a.fetchAppIDList(ctx, a.mostPlayedBaseURL, "ranks", n)
	if err != nil {
		return nil, err
	}
	return a.enrich(ctx, appids), nil
}

// GetComingSoon fetches upcoming titles, enriching each the same way.
func (a *CatalogAdapter) GetComingSoon(ctx context.Context) ([]GameDetails, error) {
	appids, err := a.fetchAppIDList(ctx, a.comingSoonBaseURL, "items", 0)
	if err != nil {
		return nil, err
	}
	return a.enrich(ctx, appids), nil
}

func (a *CatalogAdapter) fetchAppIDList(ctx context.Context, baseURL, arrayPath string, limit int) ([]int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req, "catalog")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var appids []int64
	gjson.GetBytes(body, arrayPath+"#.appid").ForEach(func(_, value gjson.Result) bool {
		appids = append(appids, value.Int())
		return limit <= 0 || len(appids) < limit
	})
	return appids, nil
}

// enrich fetches full details for every appid under the catalog fan-out
// bound, dropping entries whose detail fetch failed (spec §4.2).
func (a *CatalogAdapter) enrich(ctx context.Context, appids []int64) []GameDetails {
	results, failed := BoundedMap(appids, catalogFanOut, func(appid int64) (GameDetails, error) {
		details, err := a.GetAppDetails(ctx, appid, "US", "en")
		if err != nil || details == nil {
			return GameDetails{}, fmt.Errorf("no details for appid %d", appid)
		}
		return *details, nil
	})

	out := make([]GameDetails, 0, len(results))
	for i, r := range results {
		if !failed[i] {
			out = append(out, r)
		}
	}
	return out
}

func parseGameDetails(appid int64, data gjson.Result) *GameDetails {
	var genres, categories []string
	data.Get("genres.#.description").ForEach(func(_, v gjson.Result) bool {
		genres = append(genres, v.String())
		return true
	})
	data.Get("categories.#.description").ForEach(func(_, v gjson.Result) bool {
		categories = append(categories, v.String())
		return true
	})

	price := 0.0
	if !data.Get("is_free").Bool() {
		price = data.Get("price_overview.final").Float() / 100
	}

	return &GameDetails{
		AppID:               appid,
		Name:                data.Get("name").String(),
		IsFree:              data.Get("is_free").Bool(),
		Price:               price,
		ReleaseDate:         data.Get("release_date.date").String(),
		ComingSoon:          data.Get("release_date.coming_soon").Bool(),
		HeaderImage:         data.Get("header_image").String(),
		BackgroundImage:     data.Get("background_raw").String(),
		DetailedDescription: StripHTML(data.Get("detailed_description").String()),
		Genres:              genres,
		Categories:          categories,
	}
}
