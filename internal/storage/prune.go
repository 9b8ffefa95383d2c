package storage

import (
	"context"
	"fmt"
	"time"
)

// PruneRaw deletes raw samples older than olderThan. Called by the
// prune_raw job on the raw-retention schedule (spec §4.5).
func (g *Gateway) PruneRaw(ctx context.Context, olderThan time.Time) (int64, error) {
	return g.pruneByTimestamp(ctx, "prune_raw", "raw_samples", "ts", olderThan)
}

// PruneHourly deletes hourly aggregates whose bucket is older than olderThan.
func (g *Gateway) PruneHourly(ctx context.Context, olderThan time.Time) (int64, error) {
	return g.pruneByTimestamp(ctx, "prune_hourly", "hourly_aggregates", "hour_bucket_ts", olderThan)
}

// PruneDaily deletes daily aggregates whose day is older than olderThan.
// day_ymd is stored as text (YYYY-MM-DD), so the cutoff is compared as text
// too rather than cast back to a timestamp.
func (g *Gateway) PruneDaily(ctx context.Context, olderThan time.Time) (int64, error) {
	var affected int64
	err := g.recordQuery("prune_daily", func() error {
		q := fmt.Sprintf(`DELETE FROM %s WHERE day_ymd < $1`, g.table("daily_aggregates"))
		res, err := g.db.ExecContext(ctx, q, olderThan.UTC().Format("2006-01-02"))
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func (g *Gateway) pruneByTimestamp(ctx context.Context, operation, table, column string, olderThan time.Time) (int64, error) {
	var affected int64
	err := g.recordQuery(operation, func() error {
		q := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`, g.table(table), column)
		res, err := g.db.ExecContext(ctx, q, olderThan)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}
