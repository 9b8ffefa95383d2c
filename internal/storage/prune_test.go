package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPruneRaw(t *testing.T) {
	g, mock := newTestGateway(t)
	cutoff := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM "test_schema"\."raw_samples" WHERE ts < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 42))

	affected, err := g.PruneRaw(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(42), affected)
}

func TestPruneHourly(t *testing.T) {
	g, mock := newTestGateway(t)
	cutoff := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM "test_schema"\."hourly_aggregates" WHERE hour_bucket_ts < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	affected, err := g.PruneHourly(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), affected)
}

func TestPruneDaily_ComparesByTextDate(t *testing.T) {
	g, mock := newTestGateway(t)
	cutoff := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM "test_schema"\."daily_aggregates" WHERE day_ymd < \$1`).
		WithArgs("2026-05-01").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := g.PruneDaily(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}
