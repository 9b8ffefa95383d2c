// Package api wires the Storage Gateway, Upstream Adapters, and Auth Core
// into the HTTP surface described in spec §4.6/§6.
package api

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/auth"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/metrics"
	appmiddleware "github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/middleware"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/scheduler"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/storage"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

// Deps bundles every component a handler might need. Handlers are thin:
// they validate, call into one of these, and shape the response (spec §4.6).
type Deps struct {
	Store       *storage.Gateway
	PlayerCount *upstream.PlayerCountAdapter
	Catalog     *upstream.CatalogAdapter
	User        *upstream.UserAdapter
	Deals       *upstream.DealsAdapter
	Auth        *auth.Core
	Scheduler   *scheduler.Scheduler
	Logger      *logging.Logger
	Metrics     *metrics.Metrics

	SessionTTL         time.Duration
	RequestTimeout     time.Duration
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
	RateLimits         RateLimits
	Version            string
}

// RateLimits mirrors config.RateLimits without importing internal/config,
// keeping this package's dependency surface limited to what it wires.
type RateLimits struct {
	LoginPerMinute int
	ReadPerMinute  int
	WritePerMinute int
}

// limiterCleanupInterval is how often each limiter runs Cleanup, which
// drops every tracked per-key rate.Limiter once there are more than 10000.
const limiterCleanupInterval = 5 * time.Minute

// NewRouter builds the full gorilla/mux router: the public prefix (/, /health,
// /metrics), the /auth prefix, and the /api prefix, each with the middleware
// chain spec §4.4/§4.6 requires.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	recovery := appmiddleware.NewRecovery(d.Logger)
	cors := appmiddleware.NewCORS(d.CORSAllowedOrigins)
	bodyLimit := appmiddleware.NewBodyLimit(d.MaxBodyBytes)
	gate := appmiddleware.NewRequestGate(d.Auth,
		[]string{"/auth/", "/api/"},
		nil,
		[]string{"/auth/login"},
		d.Logger,
	)
	readLimiter := appmiddleware.NewRateLimiter(d.RateLimits.ReadPerMinute, time.Minute, d.Auth, d.Logger)
	writeLimiter := appmiddleware.NewRateLimiter(d.RateLimits.WritePerMinute, time.Minute, d.Auth, d.Logger)
	loginLimiter := appmiddleware.NewRateLimiter(d.RateLimits.LoginPerMinute, time.Minute, d.Auth, d.Logger)
	readLimiter.StartCleanup(limiterCleanupInterval)
	writeLimiter.StartCleanup(limiterCleanupInterval)
	loginLimiter.StartCleanup(limiterCleanupInterval)

	router.Use(recovery.Handler)
	router.Use(appmiddleware.Logging(d.Logger))
	if d.Metrics != nil {
		router.Use(appmiddleware.Metrics(d.Metrics))
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}
	router.Use(cors.Handler)
	router.Use(bodyLimit.Handler)
	router.Use(appmiddleware.Timeout(d.RequestTimeout))
	router.Use(gate.Handler)

	router.HandleFunc("/", RootHandler(d.Version)).Methods("GET")
	router.HandleFunc("/health", HealthHandler(d.Store, d.Scheduler)).Methods("GET")

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.Use(loginLimiter.Handler)
	authRouter.HandleFunc("/login", LoginHandler(d.Auth, d.SessionTTL)).Methods("POST")

	apiRouter := router.PathPrefix("/api").Subrouter()

	reads := apiRouter.PathPrefix("").Subrouter()
	reads.Use(readLimiter.Handler)
	reads.HandleFunc("/watchlist", GetWatchlistHandler(d.Store)).Methods("GET")
	reads.HandleFunc("/games", ListGamesHandler(d.Store)).Methods("GET")
	reads.HandleFunc("/games/{appid}", GetGameHandler(d.Store)).Methods("GET")
	reads.HandleFunc("/games/{appid}/current-players", CurrentPlayersHandler(d.Store, d.PlayerCount)).Methods("GET")
	reads.HandleFunc("/steam/most-played", MostPlayedHandler(d.Catalog)).Methods("GET")
	reads.HandleFunc("/steam/coming-soon", ComingSoonHandler(d.Catalog)).Methods("GET")
	reads.HandleFunc("/steam/player/{steamid}", PlayerSummaryHandler(d.User)).Methods("GET")
	reads.HandleFunc("/steam/player/{steamid}/owned-games", OwnedGamesHandler(d.User)).Methods("GET")
	reads.HandleFunc("/steam/player/{steamid}/recently-played", RecentlyPlayedHandler(d.User)).Methods("GET")
	reads.HandleFunc("/steam/player/{steamid}/badges", BadgesHandler(d.User)).Methods("GET")
	reads.HandleFunc("/deals/best", BestDealsHandler(d.Deals)).Methods("GET")
	reads.HandleFunc("/deals/game/{appid}", GamePricesHandler(d.Deals)).Methods("GET")

	writes := apiRouter.PathPrefix("").Subrouter()
	writes.Use(writeLimiter.Handler)
	writes.HandleFunc("/games/tags/batch", BatchTagsHandler(d.Store)).Methods("POST")

	return router
}
