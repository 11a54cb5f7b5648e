// Package store holds the persistence adapters: game sources backed by
// Postgres or SQLite, the Redis cache and the ClickHouse result writer.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openmohaa/bracket-api/internal/models"
)

// pgUndefinedTable is the SQLSTATE for a missing relation.
const pgUndefinedTable = "42P01"

// DBStore is the subset of pgxpool.Pool the Postgres source uses.
type DBStore interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads the historical tables from Postgres.
type PostgresSource struct {
	db DBStore
}

func NewPostgresSource(db DBStore) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Teams(ctx context.Context) ([]int, error) {
	rows, err := s.db.Query(ctx, `SELECT team_id FROM teams ORDER BY team_id`)
	if err != nil {
		return nil, pgTableErr("teams", err)
	}
	teams, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("scan teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: teams table is empty", models.ErrMissingDataSource)
	}
	return teams, nil
}

// Games returns regular-season and tournament results in replay order.
func (s *PostgresSource) Games(ctx context.Context) ([]models.Game, error) {
	rows, err := s.db.Query(ctx, `
		SELECT season, day_num, w_team_id, l_team_id, w_score, l_score, w_loc, is_tourney
		FROM games
		ORDER BY season, day_num, game_id
	`)
	if err != nil {
		return nil, pgTableErr("games", err)
	}
	games, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Game, error) {
		var (
			g   models.Game
			loc string
		)
		err := row.Scan(&g.Season, &g.DayNum, &g.WTeamID, &g.LTeamID, &g.WScore, &g.LScore, &loc, &g.IsTourney)
		g.WLoc = models.Location(loc)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan games: %w", err)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: games table is empty", models.ErrMissingDataSource)
	}
	return games, nil
}

func (s *PostgresSource) Seeds(ctx context.Context) ([]models.SeedRow, error) {
	rows, err := s.db.Query(ctx, `SELECT season, seed, team_id FROM tourney_seeds ORDER BY season, seed`)
	if err != nil {
		return nil, pgTableErr("tourney_seeds", err)
	}
	seeds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.SeedRow, error) {
		var r models.SeedRow
		err := row.Scan(&r.Season, &r.Seed, &r.TeamID)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan seeds: %w", err)
	}
	return seeds, nil
}

// Slots returns one season's bracket in stored processing order.
func (s *PostgresSource) Slots(ctx context.Context, season int) ([]models.Slot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT slot, strong_seed, weak_seed
		FROM tourney_slots
		WHERE season = $1
		ORDER BY ordinal
	`, season)
	if err != nil {
		return nil, pgTableErr("tourney_slots", err)
	}
	slots, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Slot, error) {
		var sl models.Slot
		err := row.Scan(&sl.Slot, &sl.StrongSeed, &sl.WeakSeed)
		return sl, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan slots: %w", err)
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("slots for season %d: %w", season, models.ErrNotFound)
	}
	return slots, nil
}

// Rankings is optional: a missing table yields no rows.
func (s *PostgresSource) Rankings(ctx context.Context) ([]models.RankingRow, error) {
	rows, err := s.db.Query(ctx, `SELECT season, team_id, ordinal_rank FROM rankings`)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query rankings: %w", err)
	}
	ranks, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.RankingRow, error) {
		var r models.RankingRow
		err := row.Scan(&r.Season, &r.TeamID, &r.OrdinalRank)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan rankings: %w", err)
	}
	return ranks, nil
}

func pgTableErr(table string, err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("%w: table %s", models.ErrMissingDataSource, table)
	}
	return fmt.Errorf("query %s: %w", table, err)
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
