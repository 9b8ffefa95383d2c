// Package main is the Custom Steam Dashboard API entry point: it wires the
// Storage Gateway, Upstream Adapters, Auth Core, and Scheduler into the HTTP
// surface and runs the server until a shutdown signal arrives.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/api"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/auth"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/config"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/logging"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/metrics"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/scheduler"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/storage"
	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/upstream"
)

const (
	nonceLedgerTTL      = 5 * time.Minute
	nonceLedgerCapacity = 10_000
	shutdownGrace       = 30 * time.Second
)

func main() {
	cfg := config.Load()
	logger := logging.New("dashboard", cfg.LogLevel, cfg.LogFormat)

	m := metrics.New(prometheus.DefaultRegisterer)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Database.DSN(), cfg.Database.SchemaPrefix, cfg.Database.MinPoolSize, cfg.Database.MaxPoolSize, m)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	if err := store.EnsureInitialized(ctx); err != nil {
		log.Fatalf("storage: ensure_initialized: %v", err)
	}

	httpClient := upstream.NewClient(cfg.Upstream.RequestTimeout, m, logger)
	players := upstream.NewPlayerCountAdapter(httpClient, "")
	catalog := upstream.NewCatalogAdapter(httpClient, upstream.CatalogOptions{})
	user := upstream.NewUserAdapter(httpClient, cfg.Upstream.SteamAPIKey)
	deals := upstream.NewDealsAdapter(httpClient, cfg.Upstream.DealsClientID, cfg.Upstream.DealsSecret, upstream.DealsOptions{})

	registry, err := auth.NewRegistry(cfg.Auth.Clients)
	if err != nil {
		log.Fatalf("auth: %v", err)
	}
	sessions := auth.NewSessionIssuer(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL)
	nonces := auth.NewNonceLedger(nonceLedgerTTL, nonceLedgerCapacity)
	core := auth.NewCore(registry, sessions, nonces, logger)

	sched := scheduler.New(store, players, catalog, cfg.Retention, logger, m)
	sched.Start(ctx)
	defer sched.Shutdown()

	router := api.NewRouter(api.Deps{
		Store:              store,
		PlayerCount:        players,
		Catalog:            catalog,
		User:               user,
		Deals:              deals,
		Auth:               core,
		Scheduler:          sched,
		Logger:             logger,
		Metrics:            m,
		SessionTTL:         cfg.Auth.SessionTTL,
		RequestTimeout:     cfg.Upstream.RequestTimeout,
		MaxBodyBytes:       cfg.Server.MaxBodyBytes,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RateLimits: api.RateLimits{
			LoginPerMinute: cfg.RateLimits.LoginPerMinute,
			ReadPerMinute:  cfg.RateLimits.ReadPerMinute,
			WritePerMinute: cfg.RateLimits.WritePerMinute,
		},
		Version: "1.0.0",
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Infof("server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
}
