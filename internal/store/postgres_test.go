package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openmohaa/bracket-api/internal/models"
)

var allTables = []string{"teams", "games", "tourney_seeds", "tourney_slots", "rankings"}

func TestPostgresSource_Reads(t *testing.T) {
	db := &MockDBStore{
		Tables: allTables,
		Rows: map[string][][]any{
			"teams": {{1101}, {1102}},
			"games": {
				{2024, 10, 1101, 1102, 70, 60, "H", false},
				{2024, 136, 1102, 1101, 55, 54, "N", true},
			},
			"tourney_seeds": {{2024, "W01", 1101}, {2024, "W16", 1102}},
			"tourney_slots": {{"R1W1", "W01", "W16"}},
			"rankings":      {{2024, 1101, 3.0}},
		},
	}
	src := NewPostgresSource(db)
	ctx := context.Background()

	teams, err := src.Teams(ctx)
	if err != nil || len(teams) != 2 || teams[1] != 1102 {
		t.Fatalf("Teams() = %v, %v", teams, err)
	}

	games, err := src.Games(ctx)
	if err != nil {
		t.Fatalf("Games() error = %v", err)
	}
	want := models.Game{Season: 2024, DayNum: 136, WTeamID: 1102, LTeamID: 1101, WScore: 55, LScore: 54, WLoc: models.LocationNeutral, IsTourney: true}
	if len(games) != 2 || games[1] != want {
		t.Errorf("Games() = %+v, want second game %+v", games, want)
	}

	seeds, err := src.Seeds(ctx)
	if err != nil || len(seeds) != 2 || seeds[0].Seed != "W01" {
		t.Errorf("Seeds() = %+v, %v", seeds, err)
	}

	slots, err := src.Slots(ctx, 2024)
	if err != nil || len(slots) != 1 || slots[0].WeakSeed != "W16" {
		t.Errorf("Slots() = %+v, %v", slots, err)
	}

	ranks, err := src.Rankings(ctx)
	if err != nil || len(ranks) != 1 || ranks[0].OrdinalRank != 3 {
		t.Errorf("Rankings() = %+v, %v", ranks, err)
	}
}

func TestPostgresSource_Missing(t *testing.T) {
	undefined := &pgconn.PgError{Code: pgUndefinedTable, Message: "relation does not exist"}
	ctx := context.Background()

	tests := []struct {
		name    string
		db      *MockDBStore
		call    func(*PostgresSource) error
		wantErr error
	}{
		{
			name: "empty teams",
			db:   &MockDBStore{Tables: allTables},
			call: func(s *PostgresSource) error {
				_, err := s.Teams(ctx)
				return err
			},
			wantErr: models.ErrMissingDataSource,
		},
		{
			name: "games table absent",
			db:   &MockDBStore{Tables: allTables, Errs: map[string]error{"games": undefined}},
			call: func(s *PostgresSource) error {
				_, err := s.Games(ctx)
				return err
			},
			wantErr: models.ErrMissingDataSource,
		},
		{
			name: "no slots for season",
			db:   &MockDBStore{Tables: allTables},
			call: func(s *PostgresSource) error {
				_, err := s.Slots(ctx, 1999)
				return err
			},
			wantErr: models.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(NewPostgresSource(tt.db)); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostgresSource_RankingsOptional(t *testing.T) {
	db := &MockDBStore{
		Tables: allTables,
		Errs:   map[string]error{"rankings": &pgconn.PgError{Code: pgUndefinedTable}},
	}

	ranks, err := NewPostgresSource(db).Rankings(context.Background())
	if err != nil {
		t.Fatalf("Rankings() error = %v, want none for an absent table", err)
	}
	if ranks != nil {
		t.Errorf("Rankings() = %v, want nil", ranks)
	}
}

func TestPostgresSource_QueryError(t *testing.T) {
	boom := errors.New("connection reset")
	db := &MockDBStore{Tables: allTables, Errs: map[string]error{"games": boom}}

	_, err := NewPostgresSource(db).Games(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
	if errors.Is(err, models.ErrMissingDataSource) {
		t.Error("transport error reported as a missing table")
	}
}
