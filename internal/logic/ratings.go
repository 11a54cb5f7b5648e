package logic

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/openmohaa/bracket-api/internal/models"
)

// RatingParams configures the Elo-style rating update.
type RatingParams struct {
	// InitialRating is every team's starting value and also the divisor of
	// the logistic expected-score curve.
	InitialRating float64 `yaml:"initial_rating"`
	K             float64 `yaml:"k"`
	// MarginAlpha scales updates by (winner score - loser score) / MarginAlpha.
	// Zero disables margin scaling.
	MarginAlpha float64 `yaml:"margin_alpha"`
}

func DefaultRatingParams() RatingParams {
	return RatingParams{
		InitialRating: 2000,
		K:             140,
	}
}

// RatingAggregation selects how per-season summaries reach the feature join.
type RatingAggregation string

const (
	// AggregateCareer averages every season's summary per team.
	AggregateCareer RatingAggregation = "career"
	// AggregateSeason keeps only the requested season.
	AggregateSeason RatingAggregation = "season"
)

// RatingRun is the output of ComputeRatings.
type RatingRun struct {
	// Pregame holds, per input game, both teams' ratings before the update.
	Pregame []models.GameRating
	// Final holds every team's rating after the last game.
	Final map[int]float64
}

// ComputeRatings replays games in input order. The order is load-bearing:
// each update depends on every earlier one.
func ComputeRatings(teams []int, games []models.Game, p RatingParams) (*RatingRun, error) {
	if p.InitialRating <= 0 {
		return nil, fmt.Errorf("initial rating must be positive, got %v", p.InitialRating)
	}
	if p.MarginAlpha < 0 {
		return nil, fmt.Errorf("margin alpha must not be negative, got %v", p.MarginAlpha)
	}

	ratings := make(map[int]float64, len(teams))
	for _, id := range teams {
		ratings[id] = p.InitialRating
	}

	run := &RatingRun{Pregame: make([]models.GameRating, 0, len(games))}

	for i, g := range games {
		rw, ok := ratings[g.WTeamID]
		if !ok {
			return nil, fmt.Errorf("game %d (season %d day %d): %w %d", i, g.Season, g.DayNum, models.ErrUnknownTeam, g.WTeamID)
		}
		rl, ok := ratings[g.LTeamID]
		if !ok {
			return nil, fmt.Errorf("game %d (season %d day %d): %w %d", i, g.Season, g.DayNum, models.ErrUnknownTeam, g.LTeamID)
		}

		run.Pregame = append(run.Pregame, models.GameRating{Winner: rw, Loser: rl})

		expW := 1.0 / (1.0 + math.Pow(10, (rl-rw)/p.InitialRating))
		expL := 1.0 / (1.0 + math.Pow(10, (rw-rl)/p.InitialRating))

		margin := 1.0
		if p.MarginAlpha > 0 {
			margin = float64(g.WScore-g.LScore) / p.MarginAlpha
		}

		ratings[g.WTeamID] = rw + p.K*margin*(1-expW)
		ratings[g.LTeamID] = math.Max(rl+p.K*margin*(0-expL), 1)
	}

	run.Final = ratings
	return run, nil
}

type ratingObservation struct {
	day    int
	rating float64
}

// SummarizeRatings computes per (team, season) statistics of the pre-game
// ratings. Tournament games move ratings but are not observed here.
func SummarizeRatings(teams []int, games []models.Game, p RatingParams) (map[models.TeamSeason]models.RatingSummary, error) {
	run, err := ComputeRatings(teams, games, p)
	if err != nil {
		return nil, err
	}

	groups := make(map[models.TeamSeason][]ratingObservation)
	for i, g := range games {
		if g.IsTourney {
			continue
		}
		w := models.TeamSeason{TeamID: g.WTeamID, Season: g.Season}
		l := models.TeamSeason{TeamID: g.LTeamID, Season: g.Season}
		groups[w] = append(groups[w], ratingObservation{day: g.DayNum, rating: run.Pregame[i].Winner})
		groups[l] = append(groups[l], ratingObservation{day: g.DayNum, rating: run.Pregame[i].Loser})
	}

	out := make(map[models.TeamSeason]models.RatingSummary, len(groups))
	for key, obs := range groups {
		sort.SliceStable(obs, func(i, j int) bool { return obs[i].day < obs[j].day })
		summary := summarizeSeries(obs)
		summary.TeamID = key.TeamID
		summary.Season = key.Season
		out[key] = summary
	}
	return out, nil
}

func summarizeSeries(obs []ratingObservation) models.RatingSummary {
	values := make([]float64, len(obs))
	index := make([]float64, len(obs))
	for i, o := range obs {
		values[i] = o.rating
		index[i] = float64(i)
	}

	s := models.RatingSummary{
		Mean:   stat.Mean(values, nil),
		Median: median(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Last:   values[len(values)-1],
	}

	// A single observation has no spread and no trend.
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
		_, s.Trend = stat.LinearRegression(index, values, nil, false)
	}
	return s
}

// median averages the two middle values for even-length input.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// CollapseSeasons averages each team's summaries across all seasons.
func CollapseSeasons(summaries map[models.TeamSeason]models.RatingSummary) map[int]models.RatingSummary {
	keys := sortedTeamSeasons(summaries)

	sums := make(map[int]*models.RatingSummary)
	counts := make(map[int]int)
	for _, key := range keys {
		s := summaries[key]
		acc, ok := sums[key.TeamID]
		if !ok {
			acc = &models.RatingSummary{TeamID: key.TeamID}
			sums[key.TeamID] = acc
		}
		acc.Mean += s.Mean
		acc.Median += s.Median
		acc.Std += s.Std
		acc.Min += s.Min
		acc.Max += s.Max
		acc.Last += s.Last
		acc.Trend += s.Trend
		counts[key.TeamID]++
	}

	out := make(map[int]models.RatingSummary, len(sums))
	for team, acc := range sums {
		n := float64(counts[team])
		out[team] = models.RatingSummary{
			TeamID: team,
			Mean:   acc.Mean / n,
			Median: acc.Median / n,
			Std:    acc.Std / n,
			Min:    acc.Min / n,
			Max:    acc.Max / n,
			Last:   acc.Last / n,
			Trend:  acc.Trend / n,
		}
	}
	return out
}

// SelectSeason keeps one season's summaries, keyed by team.
func SelectSeason(summaries map[models.TeamSeason]models.RatingSummary, season int) map[int]models.RatingSummary {
	out := make(map[int]models.RatingSummary)
	for key, s := range summaries {
		if key.Season == season {
			out[key.TeamID] = s
		}
	}
	return out
}

// AggregateRatings reduces per-season summaries to one summary per team.
func AggregateRatings(summaries map[models.TeamSeason]models.RatingSummary, mode RatingAggregation, season int) (map[int]models.RatingSummary, error) {
	switch mode {
	case AggregateCareer, "":
		return CollapseSeasons(summaries), nil
	case AggregateSeason:
		return SelectSeason(summaries, season), nil
	default:
		return nil, fmt.Errorf("unknown rating aggregation %q", mode)
	}
}

func sortedTeamSeasons(summaries map[models.TeamSeason]models.RatingSummary) []models.TeamSeason {
	keys := make([]models.TeamSeason, 0, len(summaries))
	for k := range summaries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TeamID != keys[j].TeamID {
			return keys[i].TeamID < keys[j].TeamID
		}
		return keys[i].Season < keys[j].Season
	})
	return keys
}
