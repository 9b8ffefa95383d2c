package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogAdapter_GetAppDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"730": {
				"success": true,
				"data": {
					"name": "Counter-Strike 2",
					"is_free": true,
					"detailed_description": "<p>Tactical <b>shooter</b></p>",
					"header_image": "https://example.com/header.jpg",
					"release_date": {"coming_soon": false, "date": "21 Aug, 2012"},
					"genres": [{"description": "Action"}],
					"categories": [{"description": "Multi-player"}]
				}
			}
		}`))
	}))
	defer srv.Close()

	a := NewCatalogAdapter(NewClient(0, nil, nil), CatalogOptions{AppDetailsBaseURL: srv.URL})
	details, err := a.GetAppDetails(context.Background(), 730, "US", "en")
	require.NoError(t, err)
	require.NotNil(t, details)

	assert.Equal(t, "Counter-Strike 2", details.Name)
	assert.True(t, details.IsFree)
	assert.Equal(t, "Tactical shooter", details.DetailedDescription)
	assert.Equal(t, []string{"Action"}, details.Genres)
	assert.Equal(t, []string{"Multi-player"}, details.Categories)
}

func TestCatalogAdapter_GetAppDetails_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"999": {"success": false}}`))
	}))
	defer srv.Close()

	a := NewCatalogAdapter(NewClient(0, nil, nil), CatalogOptions{AppDetailsBaseURL: srv.URL})
	details, err := a.GetAppDetails(context.Background(), 999, "US", "en")
	require.NoError(t, err)
	assert.Nil(t, details)
}

func TestCatalogAdapter_GetMostPlayedTopN_SkipsFailedEnrichment(t *testing.T) {
	listSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ranks": [{"appid": 1}, {"appid": 2}]}`))
	}))
	defer listSrv.Close()

	detailsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		appid := r.URL.Query().Get("appids")
		if appid == "1" {
			w.Write([]byte(`{"1": {"success": true, "data": {"name": "Game One"}}}`))
			return
		}
		w.Write([]byte(`{"2": {"success": false}}`))
	}))
	defer detailsSrv.Close()

	a := NewCatalogAdapter(NewClient(0, nil, nil), CatalogOptions{
		MostPlayedBaseURL: listSrv.URL,
		AppDetailsBaseURL: detailsSrv.URL,
	})
	games, err := a.GetMostPlayedTopN(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Game One", games[0].Name)
}
