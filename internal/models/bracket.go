package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Slot is one bracket match-up. StrongSeed and WeakSeed reference either an
// initial seed label or the Slot label of an earlier slot.
type Slot struct {
	Slot       string `json:"slot"`
	StrongSeed string `json:"strong_seed"`
	WeakSeed   string `json:"weak_seed"`
}

// SeedAssignment maps seed labels to team ids.
type SeedAssignment map[string]int

// Clone returns an independent copy.
func (s SeedAssignment) Clone() SeedAssignment {
	out := make(SeedAssignment, len(s))
	for label, team := range s {
		out[label] = team
	}
	return out
}

// Inverse maps team ids back to their seed labels.
func (s SeedAssignment) Inverse() map[int]string {
	out := make(map[int]string, len(s))
	for label, team := range s {
		out[team] = label
	}
	return out
}

// WinProbabilityTable maps (team, opponent) to the probability that team wins.
type WinProbabilityTable map[PairKey]float64

// Lookup returns P(team beats opp). Unknown pairs are an error rather than a
// silent coin flip.
func (t WinProbabilityTable) Lookup(team, opp int) (float64, error) {
	p, ok := t[PairKey{TeamID: team, OppTeamID: opp}]
	if !ok {
		return 0, fmt.Errorf("%w: %d vs %d", ErrMissingProbability, team, opp)
	}
	return p, nil
}

// ProbabilityEntry is the wire form of one table cell.
type ProbabilityEntry struct {
	TeamID      int     `json:"team_id"`
	OppTeamID   int     `json:"opp_team_id"`
	Probability float64 `json:"probability"`
}

func (t WinProbabilityTable) MarshalJSON() ([]byte, error) {
	entries := make([]ProbabilityEntry, 0, len(t))
	for k, p := range t {
		entries = append(entries, ProbabilityEntry{TeamID: k.TeamID, OppTeamID: k.OppTeamID, Probability: p})
	}
	return json.Marshal(entries)
}

func (t *WinProbabilityTable) UnmarshalJSON(data []byte) error {
	var entries []ProbabilityEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	out := make(WinProbabilityTable, len(entries))
	for _, e := range entries {
		out[PairKey{TeamID: e.TeamID, OppTeamID: e.OppTeamID}] = e.Probability
	}
	*t = out
	return nil
}

// SlotResult records the winner of one slot in one simulated bracket.
type SlotResult struct {
	Run    int    `json:"run"`
	Slot   string `json:"slot"`
	TeamID int    `json:"team_id"`
	Seed   string `json:"seed"` // winner's initial seed label
}

// BracketSummary aggregates many simulated brackets.
type BracketSummary struct {
	Runs        int                     `json:"runs"`
	Champions   map[int]float64         `json:"champions"`
	SlotWins    map[string]map[int]int  `json:"slot_wins"`
	Advancement map[int]map[int]float64 `json:"advancement"` // team -> round -> share of runs
}

// SimulationResult is the outcome of one simulation request.
type SimulationResult struct {
	ID      string         `json:"id"`
	Season  int            `json:"season"`
	Runs    int            `json:"runs"`
	Results []SlotResult   `json:"-"`
	Summary BracketSummary `json:"summary"`
}

// Job states.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// JobStatus tracks an asynchronous simulation.
type JobStatus struct {
	ID         string          `json:"id"`
	Status     string          `json:"status"`
	Season     int             `json:"season"`
	Runs       int             `json:"runs"`
	Error      string          `json:"error,omitempty"`
	Summary    *BracketSummary `json:"summary,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
