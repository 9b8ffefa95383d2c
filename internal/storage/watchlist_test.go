package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUpsertWatchlist(t *testing.T) {
	g, mock := newTestGateway(t)

	mock.ExpectExec(`INSERT INTO "test_schema"\."watchlist"`).
		WithArgs(int64(730), "Counter-Strike 2", 1500).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := g.UpsertWatchlist(context.Background(), 730, "Counter-Strike 2", 1500); err != nil {
		t.Fatalf("upsert watchlist: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetWatchlist(t *testing.T) {
	g, mock := newTestGateway(t)

	rows := sqlmock.NewRows([]string{"appid", "name", "last_count", "updated_at"}).
		AddRow(int64(730), "Counter-Strike 2", 1500, "2026-07-30T00:00:00Z").
		AddRow(int64(570), "Dota 2", 900, "2026-07-30T00:00:00Z")

	mock.ExpectQuery(`SELECT appid, name, last_count, updated_at`).WillReturnRows(rows)

	entries, err := g.GetWatchlist(context.Background())
	if err != nil {
		t.Fatalf("get watchlist: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].AppID != 730 || entries[0].LastCount != 1500 {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
}

func TestGetWatchlistEntry_Found(t *testing.T) {
	g, mock := newTestGateway(t)

	rows := sqlmock.NewRows([]string{"appid", "name", "last_count", "updated_at"}).
		AddRow(int64(730), "Counter-Strike 2", 1500, "2026-07-30T00:00:00Z")
	mock.ExpectQuery(`SELECT appid, name, last_count, updated_at`).
		WithArgs(int64(730)).
		WillReturnRows(rows)

	entry, err := g.GetWatchlistEntry(context.Background(), 730)
	if err != nil {
		t.Fatalf("get watchlist entry: %v", err)
	}
	if entry == nil || entry.LastCount != 1500 {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestGetWatchlistEntry_NotFound(t *testing.T) {
	g, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT appid, name, last_count, updated_at`).
		WithArgs(int64(99999)).
		WillReturnError(sql.ErrNoRows)

	entry, err := g.GetWatchlistEntry(context.Background(), 99999)
	if err != nil {
		t.Fatalf("get watchlist entry: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected nil entry, got %+v", entry)
	}
}

func TestRemoveFromWatchlist(t *testing.T) {
	g, mock := newTestGateway(t)

	mock.ExpectExec(`DELETE FROM "test_schema"\."watchlist" WHERE appid = \$1`).
		WithArgs(int64(730)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := g.RemoveFromWatchlist(context.Background(), 730); err != nil {
		t.Fatalf("remove from watchlist: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
