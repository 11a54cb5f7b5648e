package logic

import (
	"testing"

	"github.com/openmohaa/bracket-api/internal/models"
)

func TestSlotRound(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{"R1W1", 1},
		{"R3Z2", 3},
		{"R6CH", 6},
		{"W16", 0},
		{"R", 0},
		{"RX1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := SlotRound(tt.label); got != tt.want {
				t.Errorf("SlotRound(%q) = %d, want %d", tt.label, got, tt.want)
			}
		})
	}
}

func TestSummarizeRuns(t *testing.T) {
	_, slots := fourTeamBracket()
	results := []models.SlotResult{
		{Run: 1, Slot: "R1W1", TeamID: 1, Seed: "W01"},
		{Run: 1, Slot: "R1W2", TeamID: 2, Seed: "W02"},
		{Run: 1, Slot: "R2W1", TeamID: 1, Seed: "W01"},
		{Run: 2, Slot: "R1W1", TeamID: 1, Seed: "W01"},
		{Run: 2, Slot: "R1W2", TeamID: 3, Seed: "W03"},
		{Run: 2, Slot: "R2W1", TeamID: 3, Seed: "W03"},
	}

	s := SummarizeRuns(results, slots)

	if s.Runs != 2 {
		t.Fatalf("Runs = %d, want 2", s.Runs)
	}
	if s.Champions[1] != 0.5 || s.Champions[3] != 0.5 {
		t.Errorf("Champions = %v, want {1:0.5, 3:0.5}", s.Champions)
	}
	if _, ok := s.Champions[2]; ok {
		t.Error("team 2 never won the final")
	}
	if s.SlotWins["R1W1"][1] != 2 {
		t.Errorf("R1W1 wins for team 1 = %d, want 2", s.SlotWins["R1W1"][1])
	}
	if s.Advancement[1][1] != 1 || s.Advancement[1][2] != 0.5 {
		t.Errorf("team 1 advancement = %v, want {1:1, 2:0.5}", s.Advancement[1])
	}
	if s.Advancement[2][1] != 0.5 {
		t.Errorf("team 2 round 1 rate = %v, want 0.5", s.Advancement[2][1])
	}
}

func TestSummarizeRuns_Empty(t *testing.T) {
	s := SummarizeRuns(nil, nil)
	if s.Runs != 0 || len(s.Champions) != 0 {
		t.Errorf("SummarizeRuns(nil) = %+v, want empty", s)
	}
}
