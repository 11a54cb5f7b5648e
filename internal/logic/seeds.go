package logic

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/openmohaa/bracket-api/internal/models"
)

// CleanSeed parses a seed label such as "W16" or "Y01a" into its numeric
// seed: region letter and play-in suffix are dropped.
func CleanSeed(label string) (int, error) {
	if len(label) != 3 && len(label) != 4 {
		return 0, fmt.Errorf("%w: %q", models.ErrMalformedSeed, label)
	}
	if !isLetter(label[0]) {
		return 0, fmt.Errorf("%w: %q: region must be a letter", models.ErrMalformedSeed, label)
	}
	if len(label) == 4 && label[3] != 'a' && label[3] != 'b' {
		return 0, fmt.Errorf("%w: %q: play-in suffix must be a or b", models.ErrMalformedSeed, label)
	}

	core := label[1:3]
	if !isDigit(core[0]) || !isDigit(core[1]) {
		return 0, fmt.Errorf("%w: %q: seed must be two digits", models.ErrMalformedSeed, label)
	}
	n, err := strconv.Atoi(core)
	if err != nil || n < 1 || n > 16 {
		return 0, fmt.Errorf("%w: %q: seed out of range", models.ErrMalformedSeed, label)
	}
	return n, nil
}

func isLetter(b byte) bool { return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }

// SeedValues cleans every row and averages the numeric seed per team.
// Callers choose which seasons to pass in.
func SeedValues(rows []models.SeedRow) (map[int]float64, error) {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range rows {
		n, err := CleanSeed(r.Seed)
		if err != nil {
			return nil, fmt.Errorf("team %d season %d: %w", r.TeamID, r.Season, err)
		}
		sums[r.TeamID] += float64(n)
		counts[r.TeamID]++
	}
	for team, n := range counts {
		sums[team] /= float64(n)
	}
	return sums, nil
}

// RankingValues averages ordinal ranks per team. It returns nil for no rows
// so callers can tell "no rankings" from "ranked".
func RankingValues(rows []models.RankingRow) map[int]float64 {
	if len(rows) == 0 {
		return nil
	}
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, r := range rows {
		sums[r.TeamID] += r.OrdinalRank
		counts[r.TeamID]++
	}
	for team, n := range counts {
		sums[team] /= float64(n)
	}
	return sums
}

// SeedAssignmentFor builds the label -> team map for one season's bracket.
func SeedAssignmentFor(rows []models.SeedRow, season int) (models.SeedAssignment, error) {
	out := make(models.SeedAssignment)
	for _, r := range rows {
		if r.Season != season {
			continue
		}
		if prev, dup := out[r.Seed]; dup && prev != r.TeamID {
			return nil, fmt.Errorf("seed %q assigned to both %d and %d", r.Seed, prev, r.TeamID)
		}
		out[r.Seed] = r.TeamID
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no seeds for season %d", models.ErrMissingDataSource, season)
	}
	return out, nil
}

// SeededTeams returns the teams in a seed assignment, sorted by id.
func SeededTeams(seeds models.SeedAssignment) []int {
	seen := make(map[int]struct{}, len(seeds))
	teams := make([]int, 0, len(seeds))
	for _, team := range seeds {
		if _, ok := seen[team]; ok {
			continue
		}
		seen[team] = struct{}{}
		teams = append(teams, team)
	}
	sort.Ints(teams)
	return teams
}
