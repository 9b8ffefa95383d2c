package storage

import (
	"context"
	"fmt"
)

// EnsureInitialized creates the schema and every table if missing. It is
// idempotent and safe to call repeatedly on every process startup.
func (g *Gateway) EnsureInitialized(ctx context.Context) error {
	return g.recordQuery("ensure_initialized", func() error {
		stmts := []string{
			fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, g.schema),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				appid BIGINT PRIMARY KEY,
				name TEXT NOT NULL,
				last_count INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, g.table("watchlist")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				appid BIGINT NOT NULL REFERENCES %s(appid) ON DELETE CASCADE,
				ts TIMESTAMPTZ NOT NULL,
				count INTEGER NOT NULL,
				PRIMARY KEY (appid, ts)
			)`, g.table("raw_samples"), g.table("watchlist")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				appid BIGINT NOT NULL,
				hour_bucket_ts TIMESTAMPTZ NOT NULL,
				avg REAL NOT NULL,
				min INTEGER NOT NULL,
				max INTEGER NOT NULL,
				p95 INTEGER NOT NULL,
				PRIMARY KEY (appid, hour_bucket_ts)
			)`, g.table("hourly_aggregates")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				appid BIGINT NOT NULL,
				day_ymd TEXT NOT NULL,
				avg REAL NOT NULL,
				min INTEGER NOT NULL,
				max INTEGER NOT NULL,
				p95 INTEGER NOT NULL,
				PRIMARY KEY (appid, day_ymd)
			)`, g.table("daily_aggregates")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				appid BIGINT PRIMARY KEY,
				name TEXT NOT NULL,
				is_free BOOLEAN NOT NULL DEFAULT false,
				price REAL NOT NULL DEFAULT 0,
				release_date TEXT,
				coming_soon BOOLEAN NOT NULL DEFAULT false,
				header_image TEXT,
				background_image TEXT,
				detailed_description TEXT
			)`, g.table("games")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				appid BIGINT NOT NULL REFERENCES %s(appid) ON DELETE CASCADE,
				genre TEXT NOT NULL,
				PRIMARY KEY (appid, genre)
			)`, g.table("game_genres"), g.table("games")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				appid BIGINT NOT NULL REFERENCES %s(appid) ON DELETE CASCADE,
				category TEXT NOT NULL,
				PRIMARY KEY (appid, category)
			)`, g.table("game_categories"), g.table("games")),
			fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_raw_samples_ts ON %s (ts)`, g.table("raw_samples")),
		}

		for _, stmt := range stmts {
			if _, err := g.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("storage: ensure_initialized: %w", err)
			}
		}
		return nil
	})
}

// Ping verifies the pool is reachable, used by the /health handler.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.db.PingContext(ctx)
}
