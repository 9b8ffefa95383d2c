package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// WatchlistEntry mirrors the Watchlist entity (spec §3).
type WatchlistEntry struct {
	AppID     int64
	Name      string
	LastCount int
	UpdatedAt string
}

// UpsertWatchlist inserts or updates a watchlist entry, bumping updated_at.
func (g *Gateway) UpsertWatchlist(ctx context.Context, appid int64, name string, lastCount int) error {
	return g.recordQuery("upsert_watchlist", func() error {
		q := fmt.Sprintf(`
			INSERT INTO %s (appid, name, last_count, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (appid) DO UPDATE SET
				name = EXCLUDED.name,
				last_count = EXCLUDED.last_count,
				updated_at = now()
		`, g.table("watchlist"))
		_, err := g.db.ExecContext(ctx, q, appid, name, lastCount)
		return err
	})
}

// GetWatchlist returns every watchlist entry ordered by last_count DESC.
func (g *Gateway) GetWatchlist(ctx context.Context) ([]WatchlistEntry, error) {
	var entries []WatchlistEntry
	err := g.recordQuery("get_watchlist", func() error {
		q := fmt.Sprintf(`
			SELECT appid, name, last_count, updated_at
			FROM %s
			ORDER BY last_count DESC
		`, g.table("watchlist"))
		rows, err := g.db.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e WatchlistEntry
			if err := rows.Scan(&e.AppID, &e.Name, &e.LastCount, &e.UpdatedAt); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})
	return entries, err
}

// GetWatchlistEntry fetches a single watchlist row, returning nil if appid
// is not watchlisted.
func (g *Gateway) GetWatchlistEntry(ctx context.Context, appid int64) (*WatchlistEntry, error) {
	var entry *WatchlistEntry
	err := g.recordQuery("get_watchlist_entry", func() error {
		q := fmt.Sprintf(`
			SELECT appid, name, last_count, updated_at
			FROM %s
			WHERE appid = $1
		`, g.table("watchlist"))
		var e WatchlistEntry
		err := g.db.QueryRowContext(ctx, q, appid).Scan(&e.AppID, &e.Name, &e.LastCount, &e.UpdatedAt)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		entry = &e
		return nil
	})
	return entry, err
}

// RemoveFromWatchlist deletes a watchlist entry, cascading to its samples.
func (g *Gateway) RemoveFromWatchlist(ctx context.Context, appid int64) error {
	return g.recordQuery("remove_from_watchlist", func() error {
		q := fmt.Sprintf(`DELETE FROM %s WHERE appid = $1`, g.table("watchlist"))
		_, err := g.db.ExecContext(ctx, q, appid)
		return err
	})
}
