package logic

import (
	"fmt"

	"github.com/openmohaa/bracket-api/internal/models"
)

// HistoryInput gathers the tables joined by BuildHistory. Only Pairs is
// required; every other table is a left join filled with 0.
type HistoryInput struct {
	Pairs    map[models.PairKey]models.PairRecord
	Seeds    map[int]float64
	Ratings  map[int]models.RatingSummary
	Strength map[models.PairKey]float64
	// Rankings is optional; nil leaves the ranking columns at 0.
	Rankings map[int]float64
}

// BuildHistory produces one feature row per directed pair, sorted by
// (team, opponent).
func BuildHistory(in HistoryInput) ([]models.FeatureRow, error) {
	if in.Pairs == nil {
		return nil, fmt.Errorf("%w: pair records", models.ErrMissingDataSource)
	}

	keys := sortedPairKeys(in.Pairs)
	rows := make([]models.FeatureRow, 0, len(keys))

	for _, k := range keys {
		rec := in.Pairs[k]
		row := models.FeatureRow{
			TeamID:    k.TeamID,
			OppTeamID: k.OppTeamID,
			Wins:      float64(rec.Wins),
			Losses:    float64(rec.Losses),
			Games:     float64(rec.Games),
			ScoreDiff: float64(rec.ScoreDiff),
			Home:      float64(rec.Home),
			WinRatio:  rec.WinRatio(),

			// Missing map entries read as zero values, which is the fill policy.
			Seed:        in.Seeds[k.TeamID],
			OppSeed:     in.Seeds[k.OppTeamID],
			Rating:      in.Ratings[k.TeamID],
			OppRating:   in.Ratings[k.OppTeamID],
			Strength:    in.Strength[k],
			OppStrength: in.Strength[k.Reverse()],
		}
		row.SeedDiff = row.Seed - row.OppSeed

		if in.Rankings != nil {
			row.Ranking = in.Rankings[k.TeamID]
			row.OppRanking = in.Rankings[k.OppTeamID]
			row.RankingsDiff = row.Ranking - row.OppRanking
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// TeamAverages rolls history rows up to one profile per team: games and home
// counts are summed, every other column is averaged.
func TeamAverages(rows []models.FeatureRow) map[int]models.TeamProfile {
	sums := make(map[int]*models.TeamProfile)
	counts := make(map[int]int)

	for _, r := range rows {
		acc, ok := sums[r.TeamID]
		if !ok {
			acc = &models.TeamProfile{TeamID: r.TeamID}
			acc.Rating.TeamID = r.TeamID
			sums[r.TeamID] = acc
		}
		counts[r.TeamID]++

		acc.Games += r.Games
		acc.Home += r.Home

		acc.Wins += r.Wins
		acc.Losses += r.Losses
		acc.ScoreDiff += r.ScoreDiff
		acc.WinRatio += r.WinRatio
		acc.Seed += r.Seed
		acc.OppSeed += r.OppSeed
		acc.SeedDiff += r.SeedDiff
		addSummary(&acc.Rating, r.Rating)
		addSummary(&acc.OppRating, r.OppRating)
		acc.Strength += r.Strength
		acc.OppStrength += r.OppStrength
		acc.Ranking += r.Ranking
		acc.OppRanking += r.OppRanking
		acc.RankingsDiff += r.RankingsDiff
	}

	out := make(map[int]models.TeamProfile, len(sums))
	for team, acc := range sums {
		n := float64(counts[team])
		p := *acc
		p.Wins /= n
		p.Losses /= n
		p.ScoreDiff /= n
		p.WinRatio /= n
		p.Seed /= n
		p.OppSeed /= n
		p.SeedDiff /= n
		scaleSummary(&p.Rating, n)
		scaleSummary(&p.OppRating, n)
		p.Strength /= n
		p.OppStrength /= n
		p.Ranking /= n
		p.OppRanking /= n
		p.RankingsDiff /= n
		out[team] = p
	}
	return out
}

// MatchupRow builds a feature row for a (possibly never played) pairing from
// two team profiles. Team-side columns come from a, opponent-side columns
// from b's own team-side values.
func MatchupRow(a, b models.TeamProfile) models.FeatureRow {
	row := models.FeatureRow{
		TeamID:    a.TeamID,
		OppTeamID: b.TeamID,
		Wins:      a.Wins,
		Losses:    a.Losses,
		Games:     a.Games,
		ScoreDiff: a.ScoreDiff,
		Home:      a.Home,
		WinRatio:  a.WinRatio,

		Seed:        a.Seed,
		OppSeed:     b.Seed,
		Rating:      a.Rating,
		OppRating:   b.Rating,
		Strength:    a.Strength,
		OppStrength: b.Strength,
		Ranking:     a.Ranking,
		OppRanking:  b.Ranking,
	}
	row.SeedDiff = row.Seed - row.OppSeed
	row.RankingsDiff = row.Ranking - row.OppRanking
	return row
}

func addSummary(dst *models.RatingSummary, s models.RatingSummary) {
	dst.Mean += s.Mean
	dst.Median += s.Median
	dst.Std += s.Std
	dst.Min += s.Min
	dst.Max += s.Max
	dst.Last += s.Last
	dst.Trend += s.Trend
}

func scaleSummary(dst *models.RatingSummary, n float64) {
	dst.Mean /= n
	dst.Median /= n
	dst.Std /= n
	dst.Min /= n
	dst.Max /= n
	dst.Last /= n
	dst.Trend /= n
}
