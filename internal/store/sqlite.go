package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/openmohaa/bracket-api/internal/models"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		team_id INTEGER PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS games (
		game_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		season     INTEGER NOT NULL,
		day_num    INTEGER NOT NULL,
		w_team_id  INTEGER NOT NULL,
		l_team_id  INTEGER NOT NULL,
		w_score    INTEGER NOT NULL,
		l_score    INTEGER NOT NULL,
		w_loc      TEXT    NOT NULL,
		is_tourney INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS tourney_seeds (
		season  INTEGER NOT NULL,
		seed    TEXT    NOT NULL,
		team_id INTEGER NOT NULL,
		PRIMARY KEY (season, seed)
	)`,
	`CREATE TABLE IF NOT EXISTS tourney_slots (
		season      INTEGER NOT NULL,
		ordinal     INTEGER NOT NULL,
		slot        TEXT    NOT NULL,
		strong_seed TEXT    NOT NULL,
		weak_seed   TEXT    NOT NULL,
		PRIMARY KEY (season, slot)
	)`,
	`CREATE TABLE IF NOT EXISTS rankings (
		season       INTEGER NOT NULL,
		team_id      INTEGER NOT NULL,
		ordinal_rank REAL    NOT NULL
	)`,
}

// SQLiteSource serves the same tables as PostgresSource from a local file,
// for offline runs.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return &SQLiteSource{db: db}, nil
}

func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) Teams(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT team_id FROM teams ORDER BY team_id`)
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var teams []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan teams: %w", err)
		}
		teams = append(teams, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: teams table is empty", models.ErrMissingDataSource)
	}
	return teams, nil
}

func (s *SQLiteSource) Games(ctx context.Context) ([]models.Game, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT season, day_num, w_team_id, l_team_id, w_score, l_score, w_loc, is_tourney
		FROM games
		ORDER BY season, day_num, game_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var (
			g   models.Game
			loc string
		)
		if err := rows.Scan(&g.Season, &g.DayNum, &g.WTeamID, &g.LTeamID, &g.WScore, &g.LScore, &loc, &g.IsTourney); err != nil {
			return nil, fmt.Errorf("scan games: %w", err)
		}
		g.WLoc = models.Location(loc)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: games table is empty", models.ErrMissingDataSource)
	}
	return games, nil
}

func (s *SQLiteSource) Seeds(ctx context.Context) ([]models.SeedRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT season, seed, team_id FROM tourney_seeds ORDER BY season, seed`)
	if err != nil {
		return nil, fmt.Errorf("query seeds: %w", err)
	}
	defer rows.Close()

	var seeds []models.SeedRow
	for rows.Next() {
		var r models.SeedRow
		if err := rows.Scan(&r.Season, &r.Seed, &r.TeamID); err != nil {
			return nil, fmt.Errorf("scan seeds: %w", err)
		}
		seeds = append(seeds, r)
	}
	return seeds, rows.Err()
}

func (s *SQLiteSource) Slots(ctx context.Context, season int) ([]models.Slot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slot, strong_seed, weak_seed
		FROM tourney_slots
		WHERE season = ?
		ORDER BY ordinal
	`, season)
	if err != nil {
		return nil, fmt.Errorf("query slots: %w", err)
	}
	defer rows.Close()

	var slots []models.Slot
	for rows.Next() {
		var sl models.Slot
		if err := rows.Scan(&sl.Slot, &sl.StrongSeed, &sl.WeakSeed); err != nil {
			return nil, fmt.Errorf("scan slots: %w", err)
		}
		slots = append(slots, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("slots for season %d: %w", season, models.ErrNotFound)
	}
	return slots, nil
}

func (s *SQLiteSource) Rankings(ctx context.Context) ([]models.RankingRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT season, team_id, ordinal_rank FROM rankings`)
	if err != nil {
		return nil, fmt.Errorf("query rankings: %w", err)
	}
	defer rows.Close()

	var ranks []models.RankingRow
	for rows.Next() {
		var r models.RankingRow
		if err := rows.Scan(&r.Season, &r.TeamID, &r.OrdinalRank); err != nil {
			return nil, fmt.Errorf("scan rankings: %w", err)
		}
		ranks = append(ranks, r)
	}
	return ranks, rows.Err()
}

// SaveTeams inserts team ids, ignoring ones already present.
func (s *SQLiteSource) SaveTeams(ctx context.Context, teams []int) error {
	return s.inTx(ctx, `INSERT OR IGNORE INTO teams (team_id) VALUES (?)`, len(teams), func(i int) []any {
		return []any{teams[i]}
	})
}

// SaveGames appends results; callers insert in replay order within a day.
func (s *SQLiteSource) SaveGames(ctx context.Context, games []models.Game) error {
	return s.inTx(ctx, `
		INSERT INTO games (season, day_num, w_team_id, l_team_id, w_score, l_score, w_loc, is_tourney)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, len(games), func(i int) []any {
		g := games[i]
		return []any{g.Season, g.DayNum, g.WTeamID, g.LTeamID, g.WScore, g.LScore, string(g.WLoc), g.IsTourney}
	})
}

func (s *SQLiteSource) SaveSeeds(ctx context.Context, seeds []models.SeedRow) error {
	return s.inTx(ctx, `INSERT OR REPLACE INTO tourney_seeds (season, seed, team_id) VALUES (?, ?, ?)`, len(seeds), func(i int) []any {
		r := seeds[i]
		return []any{r.Season, r.Seed, r.TeamID}
	})
}

// SaveSlots stores one season's bracket; the slice order becomes the
// processing order.
func (s *SQLiteSource) SaveSlots(ctx context.Context, season int, slots []models.Slot) error {
	return s.inTx(ctx, `
		INSERT OR REPLACE INTO tourney_slots (season, ordinal, slot, strong_seed, weak_seed)
		VALUES (?, ?, ?, ?, ?)
	`, len(slots), func(i int) []any {
		sl := slots[i]
		return []any{season, i, sl.Slot, sl.StrongSeed, sl.WeakSeed}
	})
}

func (s *SQLiteSource) SaveRankings(ctx context.Context, ranks []models.RankingRow) error {
	return s.inTx(ctx, `INSERT INTO rankings (season, team_id, ordinal_rank) VALUES (?, ?, ?)`, len(ranks), func(i int) []any {
		r := ranks[i]
		return []any{r.Season, r.TeamID, r.OrdinalRank}
	})
}

// inTx executes one prepared statement n times inside a transaction.
func (s *SQLiteSource) inTx(ctx context.Context, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return tx.Commit()
}
