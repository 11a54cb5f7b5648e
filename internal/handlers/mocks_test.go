package handlers

import (
	"context"

	"github.com/openmohaa/bracket-api/internal/models"
)

// MockSimulationQueue implements SimulationQueue for testing
type MockSimulationQueue struct {
	SubmitFunc func(ctx context.Context, req models.SimulationRequest) (*models.JobStatus, error)
	StatusFunc func(ctx context.Context, id string) (*models.JobStatus, error)
}

func (m *MockSimulationQueue) Submit(ctx context.Context, req models.SimulationRequest) (*models.JobStatus, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return &models.JobStatus{ID: "job-1", Status: models.JobQueued, Season: req.Season, Runs: req.Runs}, nil
}

func (m *MockSimulationQueue) Status(ctx context.Context, id string) (*models.JobStatus, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockSimulationQueue) QueueDepth() int { return 0 }

// MockForecastService implements logic.ForecastService for testing
type MockForecastService struct {
	RatingsFunc  func(ctx context.Context, season int) ([]models.RatingSummary, error)
	MatchupFunc  func(ctx context.Context, season, team, opp int) (*models.MatchupPrediction, error)
	SimulateFunc func(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error)
}

func (m *MockForecastService) Ratings(ctx context.Context, season int) ([]models.RatingSummary, error) {
	if m.RatingsFunc != nil {
		return m.RatingsFunc(ctx, season)
	}
	return []models.RatingSummary{}, nil
}

func (m *MockForecastService) WinProbabilities(ctx context.Context, season int) (models.WinProbabilityTable, error) {
	return models.WinProbabilityTable{}, nil
}

func (m *MockForecastService) Matchup(ctx context.Context, season, team, opp int) (*models.MatchupPrediction, error) {
	if m.MatchupFunc != nil {
		return m.MatchupFunc(ctx, season, team, opp)
	}
	return &models.MatchupPrediction{Season: season, TeamID: team, OppTeamID: opp, WinProb: 0.5}, nil
}

func (m *MockForecastService) Simulate(ctx context.Context, req models.SimulationRequest) (*models.SimulationResult, error) {
	if m.SimulateFunc != nil {
		return m.SimulateFunc(ctx, req)
	}
	return &models.SimulationResult{Season: req.Season}, nil
}
