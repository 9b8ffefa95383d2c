package storage

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

// newTestGateway builds a Gateway wired to a sqlmock-backed *sql.DB. Callers
// get back the mock to set expectations against; schema is fixed so tests
// can assert on the exact quoted identifiers the package emits.
func newTestGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Gateway{db: db, schema: "test_schema"}, mock
}
