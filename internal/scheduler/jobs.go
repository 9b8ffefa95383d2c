package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/storage"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

// errNotFound marks a per-item sampling miss (the upstream adapter
// returned ok=false rather than an error) so BoundedMap still counts it
// as a failed item without a transport-level error to wrap.
var errNotFound = errors.New("player count not available")

// samplePlayerCounts fetches the watchlist and samples each appid's current
// player count, bounded to jobFanOut concurrent upstream calls. One appid
// failing to sample does not fail the run (spec §4.2).
func (s *Scheduler) samplePlayerCounts(ctx context.Context) (processed, failed int, err error) {
	entries, err := s.store.GetWatchlist(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(entries) == 0 {
		return 0, 0, nil
	}

	now := time.Now().UTC()
	_, itemFailed := upstream.BoundedMap(entries, jobFanOut, func(entry storage.WatchlistEntry) (struct{}, error) {
		count, found := s.players.GetPlayerCount(ctx, entry.AppID)
		if !found {
			return struct{}{}, errNotFound
		}
		if err := s.store.InsertPlayerCount(ctx, entry.AppID, now, count); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.store.UpsertWatchlist(ctx, entry.AppID, entry.Name, count)
	})

	for _, didFail := range itemFailed {
		if didFail {
			failed++
		} else {
			processed++
		}
	}
	return processed, failed, nil
}

// refreshWatchlist upserts the current top-N most-played titles reported by
// the catalog adapter into the watchlist (spec §4.5). Entries that are no
// longer in the top-N are not removed.
func (s *Scheduler) refreshWatchlist(ctx context.Context) (processed, failed int, err error) {
	games, err := s.catalog.GetMostPlayedTopN(ctx, refreshWatchlistTopN)
	if err != nil {
		return 0, 0, err
	}

	for _, game := range games {
		if uerr := s.store.UpsertWatchlist(ctx, game.AppID, game.Name, 0); uerr != nil {
			failed++
			continue
		}
		processed++
	}
	return processed, failed, nil
}

// backfillGameMetadata fetches full catalog details for every watchlisted
// appid that has no row in the games table, and upserts the game row plus
// its genre/category tags. Appids that already have a game row are skipped.
func (s *Scheduler) backfillGameMetadata(ctx context.Context) (processed, failed int, err error) {
	entries, err := s.store.GetWatchlist(ctx)
	if err != nil {
		return 0, 0, err
	}

	var missing []storage.WatchlistEntry
	for _, entry := range entries {
		existing, gerr := s.store.GetGame(ctx, entry.AppID)
		if gerr != nil {
			failed++
			continue
		}
		if existing == nil {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return processed, failed, nil
	}

	_, itemFailed := upstream.BoundedMap(missing, jobFanOut, func(entry storage.WatchlistEntry) (struct{}, error) {
		details, derr := s.catalog.GetAppDetails(ctx, entry.AppID, "US", "english")
		if derr != nil {
			return struct{}{}, derr
		}
		if details == nil {
			return struct{}{}, errNotFound
		}
		if err := s.store.UpsertGame(ctx, gameFromDetails(*details)); err != nil {
			return struct{}{}, err
		}
		if err := s.store.UpsertGameGenres(ctx, entry.AppID, details.Genres); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, s.store.UpsertGameCategories(ctx, entry.AppID, details.Categories)
	})

	for _, didFail := range itemFailed {
		if didFail {
			failed++
		} else {
			processed++
		}
	}
	return processed, failed, nil
}

func gameFromDetails(d upstream.GameDetails) storage.Game {
	return storage.Game{
		AppID:               d.AppID,
		Name:                d.Name,
		IsFree:              d.IsFree,
		Price:               d.Price,
		ReleaseDate:         d.ReleaseDate,
		ComingSoon:          d.ComingSoon,
		HeaderImage:         d.HeaderImage,
		BackgroundImage:     d.BackgroundImage,
		DetailedDescription: d.DetailedDescription,
	}
}

// rollupHourly re-aggregates the raw samples of the last two hours into
// hourly buckets for every appid, which covers at least the last full hour
// (spec §4.1).
func (s *Scheduler) rollupHourly(ctx context.Context) (processed, failed int, err error) {
	until := time.Now().UTC()
	since := until.Add(-2 * time.Hour)
	if err := s.store.RollupHourly(ctx, since, until, nil); err != nil {
		return 0, 1, err
	}
	return 1, 0, nil
}

// rollupDaily re-aggregates the raw samples of every UTC calendar day that
// overlaps the last 48 hours into the daily aggregate table (spec §4.1).
func (s *Scheduler) rollupDaily(ctx context.Context) (processed, failed int, err error) {
	until := time.Now().UTC()
	since := until.Add(-48 * time.Hour)
	if err := s.store.RollupDaily(ctx, since, until, nil); err != nil {
		return 0, 1, err
	}
	return 1, 0, nil
}

func (s *Scheduler) pruneRaw(ctx context.Context) (processed, failed int, err error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.RawDays)
	n, err := s.store.PruneRaw(ctx, cutoff)
	if err != nil {
		return 0, 1, err
	}
	return int(n), 0, nil
}

func (s *Scheduler) pruneHourly(ctx context.Context) (processed, failed int, err error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.HourlyDays)
	n, err := s.store.PruneHourly(ctx, cutoff)
	if err != nil {
		return 0, 1, err
	}
	return int(n), 0, nil
}

func (s *Scheduler) pruneDaily(ctx context.Context) (processed, failed int, err error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.retention.DailyDays)
	n, err := s.store.PruneDaily(ctx, cutoff)
	if err != nil {
		return 0, 1, err
	}
	return int(n), 0, nil
}
