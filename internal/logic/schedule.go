package logic

import (
	"sort"

	"github.com/openmohaa/bracket-api/internal/models"
)

// Strength-of-schedule weights: own, opponent, opponents' opponents.
const (
	strengthOwnWeight = 0.25
	strengthOppWeight = 0.50
	strengthOOWeight  = 0.25
)

// PairStats folds every game into two directed records, (winner, loser) and
// (loser, winner).
func PairStats(games []models.Game) map[models.PairKey]models.PairRecord {
	acc := make(map[models.PairKey]models.PairRecord)

	for _, g := range games {
		diff := g.WScore - g.LScore

		wk := models.PairKey{TeamID: g.WTeamID, OppTeamID: g.LTeamID}
		w := acc[wk]
		w.Wins++
		w.Games++
		w.ScoreDiff += diff
		if g.WLoc == models.LocationHome {
			w.Home++
		}
		acc[wk] = w

		// The location flag describes the winner only; the loser side never
		// records a home game.
		lk := wk.Reverse()
		l := acc[lk]
		l.Losses++
		l.Games++
		l.ScoreDiff -= diff
		acc[lk] = l
	}

	return acc
}

// Strength computes the RPI-style metric for every pair:
//
//	0.25*WP[T] + 0.50*WP[O] + 0.25*WP_OO[T]
//
// where WP is a team's mean win ratio over its opponents and WP_OO[T] is the
// mean WP of T's opponents. Keys are visited in sorted order so repeated runs
// produce bit-identical sums.
func Strength(pairs map[models.PairKey]models.PairRecord) map[models.PairKey]float64 {
	keys := sortedPairKeys(pairs)

	wp := teamMeans(keys, func(k models.PairKey) float64 { return pairs[k].WinRatio() })

	// Opponents without records of their own contribute 0.
	wpOO := teamMeans(keys, func(k models.PairKey) float64 { return wp[k.OppTeamID] })

	out := make(map[models.PairKey]float64, len(keys))
	for _, k := range keys {
		out[k] = strengthOwnWeight*wp[k.TeamID] +
			strengthOppWeight*wp[k.OppTeamID] +
			strengthOOWeight*wpOO[k.TeamID]
	}
	return out
}

// teamMeans averages value(k) over each team's pairs.
func teamMeans(keys []models.PairKey, value func(models.PairKey) float64) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, k := range keys {
		sums[k.TeamID] += value(k)
		counts[k.TeamID]++
	}
	for team, n := range counts {
		sums[team] /= float64(n)
	}
	return sums
}

func sortedPairKeys[V any](m map[models.PairKey]V) []models.PairKey {
	keys := make([]models.PairKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
