package logic

import (
	"errors"
	"strings"
	"testing"

	"github.com/openmohaa/bracket-api/internal/models"
)

func TestCleanSeed(t *testing.T) {
	tests := []struct {
		label   string
		want    int
		wantErr bool
	}{
		{label: "W16", want: 16},
		{label: "Y01a", want: 1},
		{label: "X11b", want: 11},
		{label: "Z08", want: 8},
		{label: "", wantErr: true},
		{label: "W1", wantErr: true},
		{label: "116", wantErr: true},
		{label: "W1x", wantErr: true},
		{label: "W16c", wantErr: true},
		{label: "W16ab", wantErr: true},
		{label: "W00", wantErr: true},
		{label: "W17", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := CleanSeed(tt.label)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CleanSeed(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, models.ErrMalformedSeed) {
					t.Errorf("error %v is not ErrMalformedSeed", err)
				}
				if !strings.Contains(err.Error(), `"`+tt.label+`"`) {
					t.Errorf("error %q does not name the label", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("CleanSeed(%q) = %d, want %d", tt.label, got, tt.want)
			}
		})
	}
}

func TestSeedValues(t *testing.T) {
	rows := []models.SeedRow{
		{Season: 2023, Seed: "W01", TeamID: 1},
		{Season: 2024, Seed: "X03", TeamID: 1},
		{Season: 2024, Seed: "Y16a", TeamID: 2},
	}

	got, err := SeedValues(rows)
	if err != nil {
		t.Fatalf("SeedValues() error = %v", err)
	}
	if got[1] != 2 || got[2] != 16 {
		t.Errorf("SeedValues() = %v, want {1:2, 2:16}", got)
	}

	_, err = SeedValues([]models.SeedRow{{Season: 2024, Seed: "bad", TeamID: 9}})
	if !errors.Is(err, models.ErrMalformedSeed) {
		t.Errorf("error = %v, want ErrMalformedSeed", err)
	}
}

func TestRankingValues(t *testing.T) {
	if got := RankingValues(nil); got != nil {
		t.Errorf("RankingValues(nil) = %v, want nil", got)
	}

	got := RankingValues([]models.RankingRow{
		{Season: 2024, TeamID: 1, OrdinalRank: 4},
		{Season: 2024, TeamID: 1, OrdinalRank: 6},
		{Season: 2024, TeamID: 2, OrdinalRank: 30},
	})
	if got[1] != 5 || got[2] != 30 {
		t.Errorf("RankingValues() = %v, want {1:5, 2:30}", got)
	}
}

func TestSeedAssignmentFor(t *testing.T) {
	rows := []models.SeedRow{
		{Season: 2023, Seed: "W01", TeamID: 7},
		{Season: 2024, Seed: "W01", TeamID: 1},
		{Season: 2024, Seed: "W16a", TeamID: 2},
		{Season: 2024, Seed: "W16b", TeamID: 3},
	}

	got, err := SeedAssignmentFor(rows, 2024)
	if err != nil {
		t.Fatalf("SeedAssignmentFor() error = %v", err)
	}
	want := models.SeedAssignment{"W01": 1, "W16a": 2, "W16b": 3}
	if len(got) != len(want) {
		t.Fatalf("SeedAssignmentFor() = %v, want %v", got, want)
	}
	for label, team := range want {
		if got[label] != team {
			t.Errorf("seed %s = %d, want %d", label, got[label], team)
		}
	}

	if teams := SeededTeams(got); len(teams) != 3 || teams[0] != 1 || teams[2] != 3 {
		t.Errorf("SeededTeams() = %v, want [1 2 3]", teams)
	}

	if _, err := SeedAssignmentFor(rows, 1999); !errors.Is(err, models.ErrMissingDataSource) {
		t.Errorf("error = %v, want ErrMissingDataSource", err)
	}

	conflict := append(rows, models.SeedRow{Season: 2024, Seed: "W01", TeamID: 9})
	if _, err := SeedAssignmentFor(conflict, 2024); err == nil {
		t.Error("expected error for a seed label assigned twice")
	}
}
