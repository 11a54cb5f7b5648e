package logic

import (
	"context"

	"github.com/openmohaa/bracket-api/internal/models"
)

// GameSource loads the raw tables the forecasting pipeline consumes.
// Implementations return models.ErrMissingDataSource when a required table
// is absent. Games must come back in replay order (season, day).
type GameSource interface {
	Teams(ctx context.Context) ([]int, error)
	Games(ctx context.Context) ([]models.Game, error)
	Seeds(ctx context.Context) ([]models.SeedRow, error)
	Slots(ctx context.Context, season int) ([]models.Slot, error)
	// Rankings is optional: an empty result means no external rankings.
	Rankings(ctx context.Context) ([]models.RankingRow, error)
}

// ProbabilityCache stores computed win-probability tables.
// Get returns models.ErrNotFound on a miss.
type ProbabilityCache interface {
	GetTable(ctx context.Context, key string) (models.WinProbabilityTable, error)
	SetTable(ctx context.Context, key string, table models.WinProbabilityTable) error
}

// ForecastService exposes the rating pipeline and bracket simulation.
type ForecastService interface {
	Ratings(ctx context.Context, season int) ([]models.RatingSummary, error)
	WinProbabilities(ctx context.Context, season int) (models.WinProbabilityTable, error)
	Matchup(ctx context.Context, season, team, opp int) (*models.MatchupPrediction, error)
	Simulate(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error)
}
