package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// UnmarshalJSON accepts both native and string-encoded numbers, so form-style
// clients can send {"season": "2024", "runs": "500"}.
func (r *SimulationRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Season json.Number `json:"season"`
		Runs   json.Number `json:"runs"`
		Seed   json.Number `json:"seed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	var (
		req SimulationRequest
		err error
	)
	if req.Season, err = flexInt("season", raw.Season); err != nil {
		return err
	}
	if req.Runs, err = flexInt("runs", raw.Runs); err != nil {
		return err
	}
	if raw.Seed != "" {
		seed, err := strconv.ParseUint(raw.Seed.String(), 10, 64)
		if err != nil {
			return fmt.Errorf("field %q: %w", "seed", err)
		}
		req.Seed = &seed
	}

	*r = req
	return nil
}

// flexInt parses an optional integer field; absent or null reads as 0.
func flexInt(field string, n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", field, err)
	}
	return v, nil
}
