package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openmohaa/bracket-api/internal/logic"
)

// ModelParams holds the tunable parts of the forecasting pipeline.
type ModelParams struct {
	Rating      logic.RatingParams      `yaml:"rating"`
	Aggregation logic.RatingAggregation `yaml:"aggregation"`
	Predictor   logic.LogisticParams    `yaml:"predictor"`
	DefaultRuns int                     `yaml:"default_runs"`
}

func DefaultModelParams() ModelParams {
	return ModelParams{
		Rating:      logic.DefaultRatingParams(),
		Aggregation: logic.AggregateCareer,
		Predictor:   logic.DefaultLogisticParams(),
		DefaultRuns: 1000,
	}
}

// LoadModelParams reads a YAML file over the defaults. An empty path returns
// the defaults unchanged. Predictor weights merge into the default weights;
// set a column to 0 to disable it.
func LoadModelParams(path string) (ModelParams, error) {
	params := DefaultModelParams()
	if path == "" {
		return params, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ModelParams{}, fmt.Errorf("read model params: %w", err)
	}
	if err := yaml.Unmarshal(data, &params); err != nil {
		return ModelParams{}, fmt.Errorf("parse model params: %w", err)
	}

	switch params.Aggregation {
	case logic.AggregateCareer, logic.AggregateSeason:
	default:
		return ModelParams{}, fmt.Errorf("unknown rating aggregation %q", params.Aggregation)
	}
	if params.Rating.InitialRating <= 0 {
		return ModelParams{}, fmt.Errorf("rating.initial_rating must be positive, got %v", params.Rating.InitialRating)
	}
	if params.Rating.MarginAlpha < 0 {
		return ModelParams{}, fmt.Errorf("rating.margin_alpha must not be negative, got %v", params.Rating.MarginAlpha)
	}
	if params.DefaultRuns <= 0 {
		return ModelParams{}, fmt.Errorf("default_runs must be positive, got %d", params.DefaultRuns)
	}
	return params, nil
}
