package upstream

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const (
	defaultOwnedGamesURL    = "https://api.steampowered.com/IPlayerService/GetOwnedGames/v1"
	defaultRecentlyPlayedURL = "https://api.steampowered.com/IPlayerService/GetRecentlyPlayedGames/v1"
	defaultPlayerSummaryURL = "https://api.steampowered.com/ISteamUser/GetPlayerSummaries/v2"
	defaultBadgesURL        = "https://api.steampowered.com/IPlayerService/GetBadges/v1"
	defaultResolveVanityURL = "https://api.steampowered.com/ISteamUser/ResolveVanityURL/v1"
)

// UserOptions overrides the provider base URLs, primarily for tests.
type UserOptions struct {
	OwnedGamesURL    string
	RecentlyPlayedURL string
	PlayerSummaryURL string
	BadgesURL        string
	ResolveVanityURL string
}

// UserAdapter implements the user provider contract (spec §4.2). It requires
// an API key; callers must check HasAPIKey before use.
type UserAdapter struct {
	client *Client
	apiKey string
	urls   UserOptions
}

// NewUserAdapter builds the adapter. apiKey may be empty; HasAPIKey reports it.
func NewUserAdapter(client *Client, apiKey string, opts ...UserOptions) *UserAdapter {
	var o UserOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.OwnedGamesURL == "" {
		o.OwnedGamesURL = defaultOwnedGamesURL
	}
	if o.RecentlyPlayedURL == "" {
		o.RecentlyPlayedURL = defaultRecentlyPlayedURL
	}
	if o.PlayerSummaryURL == "" {
		o.PlayerSummaryURL = defaultPlayerSummaryURL
	}
	if o.BadgesURL == "" {
		o.BadgesURL = defaultBadgesURL
	}
	if o.ResolveVanityURL == "" {
		o.ResolveVanityURL = defaultResolveVanityURL
	}
	return &UserAdapter{client: client, apiKey: apiKey, urls: o}
}

// HasAPIKey reports whether user-endpoint calls are possible.
func (a *UserAdapter) HasAPIKey() bool {
	return a.apiKey != ""
}

func (a *UserAdapter) get(ctx context.Context, baseURL string, params url.Values) ([]byte, error) {
	params.Set("key", a.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req, "user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return readAll(resp.Body)
}

// GetOwnedGames returns the owned games list for steamID64.
func (a *UserAdapter) GetOwnedGames(ctx context.Context, steamID64 string) ([]OwnedGame, error) {
	body, err := a.get(ctx, a.urls.OwnedGamesURL, url.Values{
		"steamid":                   {steamID64},
		"include_appinfo":           {"1"},
		"include_played_free_games": {"1"},
	})
	if err != nil {
		return nil, err
	}

	var games []OwnedGame
	gjson.GetBytes(body, "response.games").ForEach(func(_, g gjson.Result) bool {
		games = append(games, OwnedGame{
			AppID:           g.Get("appid").Int(),
			Name:            g.Get("name").String(),
			PlaytimeForever: int(g.Get("playtime_forever").Int()),
		})
		return true
	})
	return games, nil
}

// GetRecentlyPlayed returns the recently-played games list for steamID64.
func (a *UserAdapter) GetRecentlyPlayed(ctx context.Context, steamID64 string) ([]RecentlyPlayedGame, error) {
	body, err := a.get(ctx, a.urls.RecentlyPlayedURL, url.Values{"steamid": {steamID64}})
	if err != nil {
		return nil, err
	}

	var games []RecentlyPlayedGame
	gjson.GetBytes(body, "response.games").ForEach(func(_, g gjson.Result) bool {
		games = append(games, RecentlyPlayedGame{
			AppID:          g.Get("appid").Int(),
			Name:           g.Get("name").String(),
			Playtime2Weeks: int(g.Get("playtime_2weeks").Int()),
		})
		return true
	})
	return games, nil
}

// GetPlayerSummary returns the public profile summary for steamID64.
func (a *UserAdapter) GetPlayerSummary(ctx context.Context, steamID64 string) (*PlayerSummary, error) {
	body, err := a.get(ctx, a.urls.PlayerSummaryURL, url.Values{"steamids": {steamID64}})
	if err != nil {
		return nil, err
	}

	player := gjson.GetBytes(body, "response.players.0")
	if !player.Exists() {
		return nil, nil
	}
	return &PlayerSummary{
		SteamID:     player.Get("steamid").String(),
		PersonaName: player.Get("personaname").String(),
		AvatarURL:   player.Get("avatarfull").String(),
		ProfileURL:  player.Get("profileurl").String(),
		Online:      player.Get("personastate").Int() != 0,
	}, nil
}

// GetBadges returns the badge list for steamID64.
func (a *UserAdapter) GetBadges(ctx context.Context, steamID64 string) ([]Badge, error) {
	body, err := a.get(ctx, a.urls.BadgesURL, url.Values{"steamid": {steamID64}})
	if err != nil {
		return nil, err
	}

	var badges []Badge
	gjson.GetBytes(body, "response.badges").ForEach(func(_, b gjson.Result) bool {
		badges = append(badges, Badge{
			BadgeID: int(b.Get("badgeid").Int()),
			Level:   int(b.Get("level").Int()),
			XP:      int(b.Get("xp").Int()),
		})
		return true
	})
	return badges, nil
}

// ResolveVanity resolves a vanity URL name to a SteamID64, ok is false if
// the upstream reports no match.
func (a *UserAdapter) ResolveVanity(ctx context.Context, name string) (steamID64 string, ok bool, err error) {
	body, err := a.get(ctx, a.urls.ResolveVanityURL, url.Values{"vanityurl": {name}})
	if err != nil {
		return "", false, err
	}

	if gjson.GetBytes(body, "response.success").Int() != 1 {
		return "", false, nil
	}
	return gjson.GetBytes(body, "response.steamid").String(), true, nil
}
