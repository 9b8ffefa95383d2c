package storage

import (
	"context"
	"fmt"
	"time"
)

// maxPlayerCountHistory is the hard clamp on get_player_count_history's
// limit parameter (spec §4.1).
const maxPlayerCountHistory = 10000

// RawSample mirrors the Raw player sample entity (spec §3).
type RawSample struct {
	AppID int64
	TS    time.Time
	Count int
}

// InsertPlayerCount records a raw sample, ignoring conflicts on (appid, ts)
// so re-inserting a sample with the same appid and timestamp is a no-op.
func (g *Gateway) InsertPlayerCount(ctx context.Context, appid int64, ts time.Time, count int) error {
	return g.recordQuery("insert_player_count", func() error {
		q := fmt.Sprintf(`
			INSERT INTO %s (appid, ts, count)
			VALUES ($1, $2, $3)
			ON CONFLICT (appid, ts) DO NOTHING
		`, g.table("raw_samples"))
		_, err := g.db.ExecContext(ctx, q, appid, ts, count)
		return err
	})
}

// GetPlayerCountHistory returns the most recent raw samples for appid, up to
// limit, ordered ts DESC. limit is clamped to maxPlayerCountHistory.
func (g *Gateway) GetPlayerCountHistory(ctx context.Context, appid int64, limit int) ([]RawSample, error) {
	if limit <= 0 || limit > maxPlayerCountHistory {
		limit = maxPlayerCountHistory
	}

	var samples []RawSample
	err := g.recordQuery("get_player_count_history", func() error {
		q := fmt.Sprintf(`
			SELECT appid, ts, count
			FROM %s
			WHERE appid = $1
			ORDER BY ts DESC
			LIMIT $2
		`, g.table("raw_samples"))
		rows, err := g.db.QueryContext(ctx, q, appid, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var s RawSample
			if err := rows.Scan(&s.AppID, &s.TS, &s.Count); err != nil {
				return err
			}
			samples = append(samples, s)
		}
		return rows.Err()
	})
	return samples, err
}
