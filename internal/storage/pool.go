// Package storage is the Storage Gateway: pooled Postgres access with
// schema isolation and upsert/query primitives. It is the exclusive owner of
// the connection pool and the schema lifecycle.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/lib/pq"

	"github.com/SzyMm0n/Custom-Steam-Dashboard-sub001/internal/metrics"
)

var validSchemaName = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Gateway owns the connection pool and exposes every storage operation.
type Gateway struct {
	db      *sql.DB
	schema  string
	metrics *metrics.Metrics
}

// Open establishes a Postgres connection pool, verifies connectivity, and
// configures min/max pool sizes. schemaPrefix is validated to be a safe
// identifier fragment since it is later interpolated into table names.
func Open(ctx context.Context, dsn, schemaPrefix string, minPoolSize, maxPoolSize int, m *metrics.Metrics) (*Gateway, error) {
	if !validSchemaName.MatchString(schemaPrefix) {
		return nil, fmt.Errorf("storage: invalid schema prefix %q", schemaPrefix)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}

	if maxPoolSize <= 0 {
		maxPoolSize = 20
	}
	if minPoolSize <= 0 {
		minPoolSize = 10
	}
	db.SetMaxOpenConns(maxPoolSize)
	db.SetMaxIdleConns(minPoolSize)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping postgres: %w", err)
	}

	return &Gateway{db: db, schema: schemaIdent(schemaPrefix), metrics: m}, nil
}

// NewWithDB builds a Gateway around an already-open *sql.DB, bypassing
// Open's connection setup. Callers outside this package use it to wire a
// sqlmock-backed Gateway into their own tests.
func NewWithDB(db *sql.DB, schemaPrefix string, m *metrics.Metrics) *Gateway {
	return &Gateway{db: db, schema: schemaIdent(schemaPrefix), metrics: m}
}

// Close releases the underlying connection pool.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// PublishPoolStats reports the current pool occupancy to Prometheus.
func (g *Gateway) PublishPoolStats() {
	if g.metrics == nil {
		return
	}
	stats := g.db.Stats()
	g.metrics.SetPoolStats(stats.OpenConnections, stats.InUse)
}

// schemaIdent turns a validated prefix into the Postgres schema identifier
// used throughout this package. Never derive this from untrusted input.
func schemaIdent(prefix string) string {
	return prefix
}

// table returns "schema"."name" for the given bare table name. Table names
// passed here are always compile-time string literals from this package,
// never user input.
func (g *Gateway) table(name string) string {
	return fmt.Sprintf(`"%s"."%s"`, g.schema, name)
}

// recordQuery wraps a query invocation with duration/outcome metrics.
func (g *Gateway) recordQuery(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	status := "ok"
	if err != nil {
		status = "error"
	}
	if g.metrics != nil {
		g.metrics.RecordDatabaseQuery(operation, status, time.Since(start))
	}
	return err
}
