package storage

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestUpsertGame(t *testing.T) {
	g, mock := newTestGateway(t)

	mock.ExpectExec(`INSERT INTO "test_schema"\."games"`).
		WithArgs(int64(730), "Counter-Strike 2", false, 0.0, nil, false, nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	game := Game{AppID: 730, Name: "Counter-Strike 2"}
	if err := g.UpsertGame(context.Background(), game); err != nil {
		t.Fatalf("upsert game: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertGameGenres_EmptyIsNoop(t *testing.T) {
	g, mock := newTestGateway(t)

	if err := g.UpsertGameGenres(context.Background(), 730, nil); err != nil {
		t.Fatalf("upsert game genres: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expected no queries for empty genre list: %v", err)
	}
}

func TestUpsertGameGenres(t *testing.T) {
	g, mock := newTestGateway(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(`INSERT INTO "test_schema"\."game_genres"`)
	prep.ExpectExec().WithArgs(int64(730), "Action").WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().WithArgs(int64(730), "FPS").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := g.UpsertGameGenres(context.Background(), 730, []string{"Action", "FPS"}); err != nil {
		t.Fatalf("upsert game genres: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetGame_NotFound(t *testing.T) {
	g, mock := newTestGateway(t)

	mock.ExpectQuery(`SELECT .+ FROM "test_schema"\."games" WHERE appid = \$1`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	game, err := g.GetGame(context.Background(), 999)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game != nil {
		t.Fatalf("expected nil game, got %+v", game)
	}
}

func TestGetGamesByGenre(t *testing.T) {
	g, mock := newTestGateway(t)

	rows := sqlmock.NewRows([]string{
		"appid", "name", "is_free", "price", "release_date", "coming_soon",
		"header_image", "background_image", "detailed_description",
	}).AddRow(int64(730), "Counter-Strike 2", false, 0.0, nil, false, nil, nil, nil)

	mock.ExpectQuery(`SELECT .+ FROM "test_schema"\."games" WHERE appid IN \(SELECT appid FROM "test_schema"\."game_genres" WHERE genre = \$1\)`).
		WithArgs("Action").
		WillReturnRows(rows)

	games, err := g.GetGamesByGenre(context.Background(), "Action")
	if err != nil {
		t.Fatalf("get games by genre: %v", err)
	}
	if len(games) != 1 || games[0].Name != "Counter-Strike 2" {
		t.Fatalf("unexpected result: %+v", games)
	}
}
