package storage

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"
)

// aggregate holds the four derived statistics for a rollup window.
type aggregate struct {
	avg      float64
	min, max int
	p95      int
}

// computeAggregate implements the percentile rule from spec §4.1: p95 is the
// value at ascending index ceil(0.95*N)-1. samples need not be sorted.
func computeAggregate(samples []int) aggregate {
	sorted := append([]int(nil), samples...)
	sort.Ints(sorted)

	n := len(sorted)
	sum := 0
	for _, v := range sorted {
		sum += v
	}

	idx := int(math.Ceil(0.95*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}

	return aggregate{
		avg: float64(sum) / float64(n),
		min: sorted[0],
		max: sorted[n-1],
		p95: sorted[idx],
	}
}

// RollupHourly recomputes hourly aggregates for every hour bucket touching
// [since, until) for the given appids (nil means every watchlisted appid).
// Upserts make repeated calls over an overlapping window idempotent.
func (g *Gateway) RollupHourly(ctx context.Context, since, until time.Time, appids []int64) error {
	return g.recordQuery("rollup_hourly", func() error {
		targets, err := g.resolveAppIDs(ctx, appids)
		if err != nil {
			return err
		}
		for _, appid := range targets {
			if err := g.rollupHourlyForApp(ctx, appid, since, until); err != nil {
				return fmt.Errorf("storage: rollup_hourly appid %d: %w", appid, err)
			}
		}
		return nil
	})
}

func (g *Gateway) rollupHourlyForApp(ctx context.Context, appid int64, since, until time.Time) error {
	for bucket := floorHour(since); bucket.Before(until); bucket = bucket.Add(time.Hour) {
		samples, err := g.rawSamplesInWindow(ctx, appid, bucket, bucket.Add(time.Hour))
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			continue
		}
		agg := computeAggregate(samples)
		q := fmt.Sprintf(`
			INSERT INTO %s (appid, hour_bucket_ts, avg, min, max, p95)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (appid, hour_bucket_ts) DO UPDATE SET
				avg = EXCLUDED.avg, min = EXCLUDED.min, max = EXCLUDED.max, p95 = EXCLUDED.p95
		`, g.table("hourly_aggregates"))
		if _, err := g.db.ExecContext(ctx, q, appid, bucket, agg.avg, agg.min, agg.max, agg.p95); err != nil {
			return err
		}
	}
	return nil
}

// RollupDaily recomputes daily aggregates for every UTC calendar day
// touching [since, until) for the given appids.
func (g *Gateway) RollupDaily(ctx context.Context, since, until time.Time, appids []int64) error {
	return g.recordQuery("rollup_daily", func() error {
		targets, err := g.resolveAppIDs(ctx, appids)
		if err != nil {
			return err
		}
		for _, appid := range targets {
			if err := g.rollupDailyForApp(ctx, appid, since, until); err != nil {
				return fmt.Errorf("storage: rollup_daily appid %d: %w", appid, err)
			}
		}
		return nil
	})
}

func (g *Gateway) rollupDailyForApp(ctx context.Context, appid int64, since, until time.Time) error {
	for day := floorDay(since); day.Before(until); day = day.AddDate(0, 0, 1) {
		samples, err := g.rawSamplesInWindow(ctx, appid, day, day.AddDate(0, 0, 1))
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			continue
		}
		agg := computeAggregate(samples)
		q := fmt.Sprintf(`
			INSERT INTO %s (appid, day_ymd, avg, min, max, p95)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (appid, day_ymd) DO UPDATE SET
				avg = EXCLUDED.avg, min = EXCLUDED.min, max = EXCLUDED.max, p95 = EXCLUDED.p95
		`, g.table("daily_aggregates"))
		if _, err := g.db.ExecContext(ctx, q, appid, day.Format("2006-01-02"), agg.avg, agg.min, agg.max, agg.p95); err != nil {
			return err
		}
	}
	return nil
}

func (g *Gateway) rawSamplesInWindow(ctx context.Context, appid int64, from, to time.Time) ([]int, error) {
	q := fmt.Sprintf(`SELECT count FROM %s WHERE appid = $1 AND ts >= $2 AND ts < $3`, g.table("raw_samples"))
	rows, err := g.db.QueryContext(ctx, q, appid, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []int
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		samples = append(samples, c)
	}
	return samples, rows.Err()
}

func (g *Gateway) resolveAppIDs(ctx context.Context, appids []int64) ([]int64, error) {
	if len(appids) > 0 {
		return appids, nil
	}
	entries, err := g.GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.AppID
	}
	return out, nil
}

func floorHour(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), 0, 0, 0, time.UTC)
}

func floorDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
