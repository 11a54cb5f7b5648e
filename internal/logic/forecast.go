package logic

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/openmohaa/bracket-api/internal/models"
)

// ForecastConfig wires a forecast service.
type ForecastConfig struct {
	Source    GameSource
	Cache     ProbabilityCache // optional
	Predictor Predictor

	Rating      RatingParams
	Aggregation RatingAggregation

	DefaultRuns int
	SimWorkers  int

	Logger *zap.Logger
}

type forecastService struct {
	source      GameSource
	cache       ProbabilityCache
	predictor   Predictor
	rating      RatingParams
	aggregation RatingAggregation
	defaultRuns int
	simWorkers  int
	logger      *zap.SugaredLogger
	builds      singleflight.Group
}

func NewForecastService(cfg ForecastConfig) ForecastService {
	if cfg.DefaultRuns <= 0 {
		cfg.DefaultRuns = 1000
	}
	if cfg.Aggregation == "" {
		cfg.Aggregation = AggregateCareer
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &forecastService{
		source:      cfg.Source,
		cache:       cfg.Cache,
		predictor:   cfg.Predictor,
		rating:      cfg.Rating,
		aggregation: cfg.Aggregation,
		defaultRuns: cfg.DefaultRuns,
		simWorkers:  cfg.SimWorkers,
		logger:      cfg.Logger.Sugar(),
	}
}

// Ratings returns one season's rating summaries sorted by team.
func (s *forecastService) Ratings(ctx context.Context, season int) ([]models.RatingSummary, error) {
	var (
		teams []int
		games []models.Game
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teams, err = s.source.Teams(gctx)
		return err
	})
	g.Go(func() (err error) {
		games, err = s.source.Games(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries, err := SummarizeRatings(teams, games, s.rating)
	if err != nil {
		return nil, fmt.Errorf("summarize ratings: %w", err)
	}

	bySeason := SelectSeason(summaries, season)
	if len(bySeason) == 0 {
		return nil, fmt.Errorf("ratings for season %d: %w", season, models.ErrNotFound)
	}

	out := make([]models.RatingSummary, 0, len(bySeason))
	for _, r := range bySeason {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

// tableBuildTimeout bounds a shared table build, which outlives the caller
// that started it.
const tableBuildTimeout = 5 * time.Minute

// WinProbabilities returns the season's table, from cache when possible.
// Concurrent builds of the same season share one computation. The build runs
// detached from any single caller, and each caller waits only as long as its
// own context allows.
func (s *forecastService) WinProbabilities(ctx context.Context, season int) (models.WinProbabilityTable, error) {
	key := fmt.Sprintf("probs:%d:%s", season, s.aggregation)

	if s.cache != nil {
		table, err := s.cache.GetTable(ctx, key)
		if err == nil {
			return table, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warnw("Probability cache read failed", "key", key, "error", err)
		}
	}

	ch := s.builds.DoChan(key, func() (interface{}, error) {
		bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tableBuildTimeout)
		defer cancel()

		table, err := s.buildTable(bctx, season)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetTable(bctx, key, table); err != nil {
				s.logger.Warnw("Probability cache write failed", "key", key, "error", err)
			}
		}
		return table, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.WinProbabilityTable), nil
	}
}

func (s *forecastService) buildTable(ctx context.Context, season int) (models.WinProbabilityTable, error) {
	start := time.Now()

	var (
		teams    []int
		games    []models.Game
		seedRows []models.SeedRow
		rankRows []models.RankingRow
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		teams, err = s.source.Teams(gctx)
		return err
	})
	g.Go(func() (err error) {
		games, err = s.source.Games(gctx)
		return err
	})
	g.Go(func() (err error) {
		seedRows, err = s.source.Seeds(gctx)
		return err
	})
	g.Go(func() (err error) {
		rankRows, err = s.source.Rankings(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(teams) == 0 {
		return nil, fmt.Errorf("%w: teams", models.ErrMissingDataSource)
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("%w: games", models.ErrMissingDataSource)
	}

	summaries, err := SummarizeRatings(teams, games, s.rating)
	if err != nil {
		return nil, fmt.Errorf("summarize ratings: %w", err)
	}
	ratings, err := AggregateRatings(summaries, s.aggregation, season)
	if err != nil {
		return nil, err
	}

	pairs := PairStats(games)
	strength := Strength(pairs)

	featureSeeds := seedRows
	featureRanks := rankRows
	if s.aggregation == AggregateSeason {
		featureSeeds = seedsInSeason(seedRows, season)
		featureRanks = rankingsInSeason(rankRows, season)
	}
	seeds, err := SeedValues(featureSeeds)
	if err != nil {
		return nil, err
	}

	rows, err := BuildHistory(HistoryInput{
		Pairs:    pairs,
		Seeds:    seeds,
		Ratings:  ratings,
		Strength: strength,
		Rankings: RankingValues(featureRanks),
	})
	if err != nil {
		return nil, err
	}

	assignment, err := SeedAssignmentFor(seedRows, season)
	if err != nil {
		return nil, err
	}

	table, err := WinProbabilities(SeededTeams(assignment), TeamAverages(rows), s.predictor)
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Built win probability table",
		"season", season,
		"aggregation", s.aggregation,
		"games", len(games),
		"pairs", len(pairs),
		"entries", len(table),
		"duration", time.Since(start),
	)
	return table, nil
}

// Matchup looks up one directed pairing and attaches both seed labels.
func (s *forecastService) Matchup(ctx context.Context, season, team, opp int) (*models.MatchupPrediction, error) {
	table, err := s.WinProbabilities(ctx, season)
	if err != nil {
		return nil, err
	}
	p, err := table.Lookup(team, opp)
	if err != nil {
		return nil, err
	}

	pred := &models.MatchupPrediction{Season: season, TeamID: team, OppTeamID: opp, WinProb: p}

	seedRows, err := s.source.Seeds(ctx)
	if err != nil {
		return nil, err
	}
	if assignment, err := SeedAssignmentFor(seedRows, season); err == nil {
		labels := assignment.Inverse()
		pred.TeamSeed = labels[team]
		pred.OppTeamSeed = labels[opp]
	}
	return pred, nil
}

// Simulate runs req.Runs brackets for the season and summarises them.
func (s *forecastService) Simulate(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error) {
	runs := req.Runs
	if runs <= 0 {
		runs = s.defaultRuns
	}

	var (
		table    models.WinProbabilityTable
		seedRows []models.SeedRow
		slots    []models.Slot
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		table, err = s.WinProbabilities(gctx, req.Season)
		return err
	})
	g.Go(func() (err error) {
		seedRows, err = s.source.Seeds(gctx)
		return err
	})
	g.Go(func() (err error) {
		slots, err = s.source.Slots(gctx, req.Season)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	assignment, err := SeedAssignmentFor(seedRows, req.Season)
	if err != nil {
		return nil, err
	}
	bracket, err := NewBracket(assignment, slots, table)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := Simulate(ctx, bracket, runs, SimOptions{Workers: s.simWorkers, Seed: req.Seed})
	if err != nil {
		return nil, fmt.Errorf("simulate season %d: %w", req.Season, err)
	}

	s.logger.Infow("Simulated brackets",
		"season", req.Season,
		"runs", runs,
		"slots", len(slots),
		"duration", time.Since(start),
	)

	return &models.SimulationResult{
		ID:      uuid.NewString(),
		Season:  req.Season,
		Runs:    runs,
		Results: results,
		Summary: SummarizeRuns(results, bracket.Slots()),
	}, nil
}

func seedsInSeason(rows []models.SeedRow, season int) []models.SeedRow {
	var out []models.SeedRow
	for _, r := range rows {
		if r.Season == season {
			out = append(out, r)
		}
	}
	return out
}

func rankingsInSeason(rows []models.RankingRow, season int) []models.RankingRow {
	var out []models.RankingRow
	for _, r := range rows {
		if r.Season == season {
			out = append(out, r)
		}
	}
	return out
}
