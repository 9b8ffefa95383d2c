package upstream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

const defaultPlayerCountBaseURL = "https://api.steampowered.com/ISteamUserStats/GetNumberOfCurrentPlayers/v1"

// PlayerCountAdapter implements the player-count provider contract:
// get_player_count(appid) -> integer | nil.
type PlayerCountAdapter struct {
	client  *Client
	baseURL string
}

// NewPlayerCountAdapter builds the adapter. baseURL overrides the default
// Steam endpoint, primarily for tests.
func NewPlayerCountAdapter(client *Client, baseURL string) *PlayerCountAdapter {
	if baseURL == "" {
		baseURL = defaultPlayerCountBaseURL
	}
	return &PlayerCountAdapter{client: client, baseURL: baseURL}
}

// GetPlayerCount returns the current player count for appid. ok is false on
// any permanent failure (non-success response, malformed body, unreachable
// after retries); callers fall back to the last known sample.
func (a *PlayerCountAdapter) GetPlayerCount(ctx context.Context, appid int64) (count int, ok bool) {
	url := fmt.Sprintf("%s/?appid=%d", a.baseURL, appid)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, false
	}

	resp, err := a.client.Do(req, "player_count")
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	body, err := readAll(resp.Body)
	if err != nil {
		return 0, false
	}

	result := gjson.GetBytes(body, "response.result")
	if result.Int() != 1 {
		return 0, false
	}

	playerCount := gjson.GetBytes(body, "response.player_count")
	if !playerCount.Exists() {
		return 0, false
	}
	return int(playerCount.Int()), true
}
