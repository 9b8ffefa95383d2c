// Package scheduler drives the periodic jobs that keep the watchlist,
// samples, catalog, and aggregates current: sampling, watchlist refresh,
// metadata backfill, hourly/daily roll-up, and retention pruning.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/config"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/metrics"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/storage"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

// jobFanOut bounds adapter concurrency inside the sampling job (spec §4.2).
const jobFanOut = 10

// refreshWatchlistTopN is how many most-played titles the watchlist-refresh
// job pulls from the catalog adapter on every run.
const refreshWatchlistTopN = 50

// Scheduler owns the cron runtime and every registered job. Jobs only read
// and write through the Storage Gateway and the Upstream Adapters passed to
// New; it holds no other process state.
type Scheduler struct {
	cron      *cron.Cron
	store     *storage.Gateway
	players   *upstream.PlayerCountAdapter
	catalog   *upstream.CatalogAdapter
	retention config.Retention
	logger    *logging.Logger
	metrics   *metrics.Metrics

	gracePeriod time.Duration
	jobCtx      context.Context
	cancelJobs  context.CancelFunc
	running     bool
}

// New builds a Scheduler. Call Start only after the Storage Gateway and
// Upstream Adapters are fully initialized (spec §4.5's startup ordering).
func New(store *storage.Gateway, players *upstream.PlayerCountAdapter, catalog *upstream.CatalogAdapter, retention config.Retention, logger *logging.Logger, m *metrics.Metrics) *Scheduler {
	c := cron.New(
		cron.WithLogger(cronLogger{logger: logger}),
		cron.WithChain(
			cron.Recover(cronLogger{logger: logger}),
			cron.SkipIfStillRunning(cronLogger{logger: logger}),
		),
	)
	return &Scheduler{
		cron:        c,
		store:       store,
		players:     players,
		catalog:     catalog,
		retention:   retention,
		logger:      logger,
		metrics:     m,
		gracePeriod: 30 * time.Second,
	}
}

// Start registers every job from spec §4.5 and starts the cron runtime. It
// returns immediately; jobs run on cron's own goroutines.
func (s *Scheduler) Start(ctx context.Context) {
	s.jobCtx, s.cancelJobs = context.WithCancel(context.Background())

	s.cron.Schedule(every(5*time.Minute), s.wrap("sample_player_counts", s.samplePlayerCounts))
	s.cron.Schedule(everyAfter(60*time.Minute, 0), s.wrap("refresh_watchlist", s.refreshWatchlist))
	s.cron.Schedule(everyAfter(65*time.Minute, 2*time.Minute), s.wrap("backfill_game_metadata", s.backfillGameMetadata))
	s.cron.Schedule(every(60*time.Minute), s.wrap("rollup_hourly", s.rollupHourly))
	s.cron.Schedule(every(24*time.Hour), s.wrap("rollup_daily", s.rollupDaily))
	s.cron.Schedule(every(24*time.Hour), s.wrap("prune_raw", s.pruneRaw))
	s.cron.Schedule(every(24*time.Hour), s.wrap("prune_hourly", s.pruneHourly))
	s.cron.Schedule(every(24*time.Hour), s.wrap("prune_daily", s.pruneDaily))

	s.cron.Start()
	s.running = true

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()
}

// Running reports whether the scheduler has been started and not yet shut
// down, for the health endpoint (spec §6).
func (s *Scheduler) Running() bool {
	return s.running
}

// Shutdown stops the cron runtime, waiting up to gracePeriod for in-flight
// jobs to finish before cancelling the job context.
func (s *Scheduler) Shutdown() {
	s.running = false
	stopCtx := s.cron.Stop()

	timer := time.NewTimer(s.gracePeriod)
	defer timer.Stop()

	select {
	case <-stopCtx.Done():
	case <-timer.C:
	}
	if s.cancelJobs != nil {
		s.cancelJobs()
	}
}

// jobFunc is the shape every job implements: run to completion (or
// cancellation), reporting how many items it processed/failed for logging
// and metrics. A non-nil err means the whole job invocation failed, not
// just one item.
type jobFunc func(ctx context.Context) (processed, failed int, err error)

// wrap records duration/outcome metrics and a LogJobResult line around fn,
// and runs it against the scheduler's own cancellable job context rather
// than any single request's context.
func (s *Scheduler) wrap(name string, fn jobFunc) cron.FuncJob {
	return func() {
		start := time.Now()
		processed, failed, err := fn(s.jobCtx)
		duration := time.Since(start)

		s.logger.LogJobResult(name, duration, processed, failed, err)

		outcome := "ok"
		if err != nil {
			outcome = "error"
		} else if failed > 0 {
			outcome = "partial"
		}
		if s.metrics != nil {
			s.metrics.RecordSchedulerJob(name, outcome, duration)
		}
	}
}
