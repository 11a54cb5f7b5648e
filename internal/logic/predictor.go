package logic

import (
	"fmt"
	"math"
	"sort"

	"github.com/openmohaa/bracket-api/internal/models"
)

// Predictor estimates P(row.TeamID beats row.OppTeamID) from a feature row.
// Implementations must return a value in [0, 1].
type Predictor interface {
	Predict(row models.FeatureRow) (float64, error)
}

// PredictorFunc adapts a plain function to Predictor.
type PredictorFunc func(row models.FeatureRow) (float64, error)

func (f PredictorFunc) Predict(row models.FeatureRow) (float64, error) { return f(row) }

// LogisticParams are the coefficients of a LogisticPredictor, keyed by
// feature column name.
type LogisticParams struct {
	Intercept float64            `yaml:"intercept" json:"intercept"`
	Weights   map[string]float64 `yaml:"weights" json:"weights"`
}

// DefaultLogisticParams favours the better seed, rating and schedule strength.
func DefaultLogisticParams() LogisticParams {
	return LogisticParams{
		Weights: map[string]float64{
			"seed_diff":       -0.12,
			"rating_mean":     0.0012,
			"opp_rating_mean": -0.0012,
			"strength":        2.0,
			"opp_strength":    -2.0,
			"rankings_diff":   -0.01,
		},
	}
}

// LogisticPredictor is a linear model on the feature columns squashed
// through the logistic function.
type LogisticPredictor struct {
	intercept float64
	weights   []float64 // aligned with models.FeatureColumns
}

// NewLogisticPredictor rejects weights for columns the feature row does not have.
func NewLogisticPredictor(p LogisticParams) (*LogisticPredictor, error) {
	index := make(map[string]int, len(models.FeatureColumns))
	for i, name := range models.FeatureColumns {
		index[name] = i
	}

	names := make([]string, 0, len(p.Weights))
	for name := range p.Weights {
		names = append(names, name)
	}
	sort.Strings(names)

	weights := make([]float64, len(models.FeatureColumns))
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("unknown feature column %q", name)
		}
		weights[i] = p.Weights[name]
	}

	return &LogisticPredictor{intercept: p.Intercept, weights: weights}, nil
}

func (lp *LogisticPredictor) Predict(row models.FeatureRow) (float64, error) {
	z := lp.intercept
	for i, x := range row.Features() {
		z += lp.weights[i] * x
	}
	p := 1.0 / (1.0 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, fmt.Errorf("prediction for %d vs %d is NaN", row.TeamID, row.OppTeamID)
	}
	return p, nil
}

// WinProbabilities runs the predictor once for every ordered pair of
// tournament teams, ahead of any simulation.
func WinProbabilities(teams []int, profiles map[int]models.TeamProfile, pred Predictor) (models.WinProbabilityTable, error) {
	for _, id := range teams {
		if _, ok := profiles[id]; !ok {
			return nil, fmt.Errorf("%w: no history for tournament team %d", models.ErrMissingDataSource, id)
		}
	}

	table := make(models.WinProbabilityTable, len(teams)*len(teams))
	for _, a := range teams {
		for _, b := range teams {
			if a == b {
				continue
			}
			row := MatchupRow(profiles[a], profiles[b])
			p, err := pred.Predict(row)
			if err != nil {
				return nil, fmt.Errorf("predict %d vs %d: %w", a, b, err)
			}
			if p < 0 || p > 1 || math.IsNaN(p) {
				return nil, fmt.Errorf("predict %d vs %d: probability %v outside [0,1]", a, b, p)
			}
			table[models.PairKey{TeamID: a, OppTeamID: b}] = p
		}
	}
	return table, nil
}
