package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestEnsureInitialized_RunsEveryStatement(t *testing.T) {
	g, mock := newTestGateway(t)

	for i := 0; i < 9; i++ {
		mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := g.EnsureInitialized(context.Background()); err != nil {
		t.Fatalf("ensure initialized: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPing(t *testing.T) {
	g, mock := newTestGateway(t)
	mock.ExpectPing()

	if err := g.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
