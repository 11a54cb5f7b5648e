package logic

import (
	"strconv"

	"github.com/openmohaa/bracket-api/internal/models"
)

// SlotRound parses the round number from labels like "R3W1". Anything else,
// e.g. the play-in slot "W16", is round 0.
func SlotRound(label string) int {
	if len(label) < 2 || label[0] != 'R' {
		return 0
	}
	end := 1
	for end < len(label) && isDigit(label[end]) {
		end++
	}
	n, err := strconv.Atoi(label[1:end])
	if err != nil {
		return 0
	}
	return n
}

// SummarizeRuns counts slot winners across runs. The champion of a run is the
// winner of the final slot in processing order.
func SummarizeRuns(results []models.SlotResult, slots []models.Slot) models.BracketSummary {
	summary := models.BracketSummary{
		Champions:   make(map[int]float64),
		SlotWins:    make(map[string]map[int]int),
		Advancement: make(map[int]map[int]float64),
	}
	if len(slots) == 0 {
		return summary
	}
	final := slots[len(slots)-1].Slot

	runs := make(map[int]struct{})
	// team -> round -> number of runs in which the team won a slot of that round
	wins := make(map[int]map[int]int)

	for _, r := range results {
		runs[r.Run] = struct{}{}

		byTeam, ok := summary.SlotWins[r.Slot]
		if !ok {
			byTeam = make(map[int]int)
			summary.SlotWins[r.Slot] = byTeam
		}
		byTeam[r.TeamID]++

		rounds, ok := wins[r.TeamID]
		if !ok {
			rounds = make(map[int]int)
			wins[r.TeamID] = rounds
		}
		rounds[SlotRound(r.Slot)]++

		if r.Slot == final {
			summary.Champions[r.TeamID]++
		}
	}

	summary.Runs = len(runs)
	if summary.Runs == 0 {
		return summary
	}
	n := float64(summary.Runs)

	for team := range summary.Champions {
		summary.Champions[team] /= n
	}
	for team, rounds := range wins {
		rates := make(map[int]float64, len(rounds))
		for round, count := range rounds {
			rates[round] = float64(count) / n
		}
		summary.Advancement[team] = rates
	}
	return summary
}
