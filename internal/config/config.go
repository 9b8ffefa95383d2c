// Package config loads process configuration from the environment, with
// .env support for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Database holds connection and pool settings for the Storage Gateway.
type Database struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SchemaPrefix string
	MinPoolSize  int
	MaxPoolSize  int
}

// DSN builds a lib/pq connection string from the database settings.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name,
	)
}

// Auth holds the process-wide auth secrets described in spec §4.3.
type Auth struct {
	SessionSecret string
	SessionTTL    time.Duration
	Clients       map[string]string
}

// Retention holds the per-granularity retention windows (spec §3).
type Retention struct {
	RawDays    int
	HourlyDays int
	DailyDays  int
}

// RateLimits holds per-endpoint-category token bucket limits (spec §4.3.6).
type RateLimits struct {
	LoginPerMinute int
	ReadPerMinute  int
	WritePerMinute int
}

// Upstream holds API credentials/endpoints for the upstream adapters.
type Upstream struct {
	SteamAPIKey    string
	DealsClientID  string
	DealsSecret    string
	RequestTimeout time.Duration
}

// Server holds HTTP listener and body-limit settings.
type Server struct {
	Port               string
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
}

// Config is the fully resolved process configuration.
type Config struct {
	Env        string
	Server     Server
	Database   Database
	Auth       Auth
	Retention  Retention
	RateLimits RateLimits
	Upstream   Upstream
	LogLevel   string
	LogFormat  string
}

// Load reads configuration from the environment, loading a .env file first
// when present. It fatally exits (mirroring the teacher's fail-fast startup
// checks) when a required secret is missing or empty.
func Load() *Config {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "development"
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("config: no .env file loaded (%v), relying on process environment", err)
	}

	cfg := &Config{
		Env: env,
		Server: Server{
			Port:               envOrDefault("PORT", "8080"),
			MaxBodyBytes:       int64(envIntOrDefault("MAX_BODY_BYTES", 1<<20)),
			CORSAllowedOrigins: splitNonEmpty(os.Getenv("CORS_ALLOWED_ORIGINS"), ","),
		},
		Database: Database{
			Host:         envOrDefault("DB_HOST", "localhost"),
			Port:         envIntOrDefault("DB_PORT", 5432),
			User:         envOrDefault("DB_USER", "postgres"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         envOrDefault("DB_NAME", "steam_dashboard"),
			SchemaPrefix: envOrDefault("DB_SCHEMA_PREFIX", "custom-steam-dashboard"),
			MinPoolSize:  envIntOrDefault("DB_MIN_POOL_SIZE", 10),
			MaxPoolSize:  envIntOrDefault("DB_MAX_POOL_SIZE", 20),
		},
		Auth: Auth{
			SessionSecret: os.Getenv("SESSION_SECRET"),
			SessionTTL:    time.Duration(envIntOrDefault("SESSION_TTL_SECONDS", 1200)) * time.Second,
			Clients:       parseClients(os.Getenv("CLIENTS")),
		},
		Retention: Retention{
			RawDays:    envIntOrDefault("RETENTION_RAW_DAYS", 14),
			HourlyDays: envIntOrDefault("RETENTION_HOURLY_DAYS", 30),
			DailyDays:  envIntOrDefault("RETENTION_DAILY_DAYS", 90),
		},
		RateLimits: RateLimits{
			LoginPerMinute: envIntOrDefault("RATE_LIMIT_LOGIN_PER_MIN", 10),
			ReadPerMinute:  envIntOrDefault("RATE_LIMIT_READ_PER_MIN", 60),
			WritePerMinute: envIntOrDefault("RATE_LIMIT_WRITE_PER_MIN", 20),
		},
		Upstream: Upstream{
			SteamAPIKey:    os.Getenv("STEAM_API_KEY"),
			DealsClientID:  os.Getenv("DEALS_CLIENT_ID"),
			DealsSecret:    os.Getenv("DEALS_CLIENT_SECRET"),
			RequestTimeout: time.Duration(envIntOrDefault("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	cfg.mustValidate()
	return cfg
}

// mustValidate refuses to start the process if a required secret is missing,
// mirroring the teacher's fail-fast JWT_SECRET check in cmd/gateway/main.go.
func (c *Config) mustValidate() {
	if strings.TrimSpace(c.Auth.SessionSecret) == "" {
		log.Fatal("config: SESSION_SECRET is required and must be non-empty")
	}
	if len(c.Auth.Clients) == 0 {
		log.Fatal("config: CLIENTS is required and must define at least one client_id:client_secret pair")
	}
}

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOrDefault(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitNonEmpty(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseClients parses a "id:secret,id:secret" mapping, skipping malformed
// entries rather than failing the whole load (caught by mustValidate if the
// result is empty).
func parseClients(raw string) map[string]string {
	clients := make(map[string]string)
	if strings.TrimSpace(raw) == "" {
		return clients
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.IndexByte(pair, ':')
		if idx <= 0 || idx == len(pair)-1 {
			continue
		}
		id := strings.TrimSpace(pair[:idx])
		secret := strings.TrimSpace(pair[idx+1:])
		if id == "" || secret == "" {
			continue
		}
		clients[id] = secret
	}
	return clients
}
