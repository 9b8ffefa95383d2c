package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertPlayerCount(t *testing.T) {
	g, mock := newTestGateway(t)
	ts := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO "test_schema"\."raw_samples"`).
		WithArgs(int64(730), ts, 15000).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := g.InsertPlayerCount(context.Background(), 730, ts, 15000)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlayerCountHistory_ClampsLimit(t *testing.T) {
	g, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT appid, ts, count`).
		WithArgs(int64(730), maxPlayerCountHistory).
		WillReturnRows(sqlmock.NewRows([]string{"appid", "ts", "count"}))

	_, err := g.GetPlayerCountHistory(context.Background(), 730, 999999999)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPlayerCountHistory_ReturnsSamples(t *testing.T) {
	g, mock := newTestGateway(t)
	ts1 := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	ts2 := time.Date(2026, 7, 30, 11, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"appid", "ts", "count"}).
		AddRow(int64(730), ts1, 15000).
		AddRow(int64(730), ts2, 14000)

	mock.ExpectQuery(`SELECT appid, ts, count`).
		WithArgs(int64(730), 50).
		WillReturnRows(rows)

	samples, err := g.GetPlayerCountHistory(context.Background(), 730, 50)
	require.NoError(t, err)
	assert.Len(t, samples, 2)
	assert.Equal(t, 15000, samples[0].Count)
}
