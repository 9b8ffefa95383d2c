package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Game mirrors the Game entity (spec §3).
type Game struct {
	AppID                int64
	Name                 string
	IsFree               bool
	Price                float64
	ReleaseDate          string
	ComingSoon           bool
	HeaderImage          string
	BackgroundImage      string
	DetailedDescription  string
	Genres               []string
	Categories           []string
}

// UpsertGame inserts or updates a catalog row. It does not touch the genre
// or category child tables; callers pair this with UpsertGameGenres /
// UpsertGameCategories.
func (g *Gateway) UpsertGame(ctx context.Context, game Game) error {
	return g.recordQuery("upsert_game", func() error {
		q := fmt.Sprintf(`
			INSERT INTO %s (
				appid, name, is_free, price, release_date, coming_soon,
				header_image, background_image, detailed_description
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (appid) DO UPDATE SET
				name = EXCLUDED.name,
				is_free = EXCLUDED.is_free,
				price = EXCLUDED.price,
				release_date = EXCLUDED.release_date,
				coming_soon = EXCLUDED.coming_soon,
				header_image = EXCLUDED.header_image,
				background_image = EXCLUDED.background_image,
				detailed_description = EXCLUDED.detailed_description
		`, g.table("games"))
		_, err := g.db.ExecContext(ctx, q,
			game.AppID, game.Name, game.IsFree, game.Price, nullableString(game.ReleaseDate),
			game.ComingSoon, nullableString(game.HeaderImage), nullableString(game.BackgroundImage),
			nullableString(game.DetailedDescription))
		return err
	})
}

// UpsertGameGenres bulk-inserts genre rows for appid, ignoring duplicates.
// The Game row MUST already exist (spec §3 invariant).
func (g *Gateway) UpsertGameGenres(ctx context.Context, appid int64, genres []string) error {
	return g.bulkUpsertTags(ctx, "game_genres", "genre", "upsert_game_genres", appid, genres)
}

// UpsertGameCategories bulk-inserts category rows for appid, ignoring duplicates.
func (g *Gateway) UpsertGameCategories(ctx context.Context, appid int64, categories []string) error {
	return g.bulkUpsertTags(ctx, "game_categories", "category", "upsert_game_categories", appid, categories)
}

func (g *Gateway) bulkUpsertTags(ctx context.Context, table, column, operation string, appid int64, values []string) error {
	if len(values) == 0 {
		return nil
	}
	return g.recordQuery(operation, func() error {
		tx, err := g.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		q := fmt.Sprintf(`
			INSERT INTO %s (appid, %s) VALUES ($1, $2)
			ON CONFLICT (appid, %s) DO NOTHING
		`, g.table(table), column, column)

		stmt, err := tx.PrepareContext(ctx, q)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, v := range values {
			if _, err := stmt.ExecContext(ctx, appid, v); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// GetGame fetches a single catalog row with its genres and categories.
func (g *Gateway) GetGame(ctx context.Context, appid int64) (*Game, error) {
	var game *Game
	err := g.recordQuery("get_game", func() error {
		var err error
		game, err = g.scanGame(ctx, appid)
		return err
	})
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, nil
	}
	if err := g.attachTags(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// GetAllGames returns every catalog row, without genre/category expansion
// (callers needing tags should call GetGame per appid).
func (g *Gateway) GetAllGames(ctx context.Context) ([]Game, error) {
	var games []Game
	err := g.recordQuery("get_all_games", func() error {
		q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY appid`, gameColumns, g.table("games"))
		rows, err := g.db.QueryContext(ctx, q)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			game, err := scanGameRow(rows)
			if err != nil {
				return err
			}
			games = append(games, *game)
		}
		return rows.Err()
	})
	return games, err
}

// GetGamesByGenre returns every game tagged with genre.
func (g *Gateway) GetGamesByGenre(ctx context.Context, genre string) ([]Game, error) {
	return g.gamesByTag(ctx, "game_genres", "genre", "get_games_by_genre", genre)
}

// GetGamesByCategory returns every game tagged with category.
func (g *Gateway) GetGamesByCategory(ctx context.Context, category string) ([]Game, error) {
	return g.gamesByTag(ctx, "game_categories", "category", "get_games_by_category", category)
}

func (g *Gateway) gamesByTag(ctx context.Context, tagTable, column, operation, value string) ([]Game, error) {
	var games []Game
	err := g.recordQuery(operation, func() error {
		q := fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE appid IN (SELECT appid FROM %s WHERE %s = $1)
			ORDER BY appid
		`, gameColumns, g.table("games"), g.table(tagTable), column)
		rows, err := g.db.QueryContext(ctx, q, value)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			game, err := scanGameRow(rows)
			if err != nil {
				return err
			}
			games = append(games, *game)
		}
		return rows.Err()
	})
	return games, err
}

func (g *Gateway) scanGame(ctx context.Context, appid int64) (*Game, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE appid = $1`, gameColumns, g.table("games"))
	row := g.db.QueryRowContext(ctx, q, appid)
	game, err := scanGameRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return game, err
}

func (g *Gateway) attachTags(ctx context.Context, game *Game) error {
	genres, err := g.tagsFor(ctx, "game_genres", "genre", game.AppID)
	if err != nil {
		return err
	}
	game.Genres = genres

	categories, err := g.tagsFor(ctx, "game_categories", "category", game.AppID)
	if err != nil {
		return err
	}
	game.Categories = categories
	return nil
}

func (g *Gateway) tagsFor(ctx context.Context, table, column string, appid int64) ([]string, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE appid = $1 ORDER BY %s`, column, g.table(table), column)
	rows, err := g.db.QueryContext(ctx, q, appid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

const gameColumnList = "appid, name, is_free, price, release_date, coming_soon, header_image, background_image, detailed_description"

var gameColumns = gameColumnList

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGameRow(row rowScanner) (*Game, error) {
	var game Game
	var releaseDate, headerImage, backgroundImage, description sql.NullString
	if err := row.Scan(
		&game.AppID, &game.Name, &game.IsFree, &game.Price, &releaseDate, &game.ComingSoon,
		&headerImage, &backgroundImage, &description,
	); err != nil {
		return nil, err
	}
	game.ReleaseDate = releaseDate.String
	game.HeaderImage = headerImage.String
	game.BackgroundImage = backgroundImage.String
	game.DetailedDescription = description.String
	return &game, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
