package models

// GameRating holds both teams' ratings as they stood before a game was applied.
type GameRating struct {
	Winner float64 `json:"winner"`
	Loser  float64 `json:"loser"`
}

// TeamSeason keys per-team, per-season aggregates.
type TeamSeason struct {
	TeamID int `json:"team_id"`
	Season int `json:"season"`
}

// RatingSummary describes a team's rating trajectory over a season
// (or, once collapsed, averaged across seasons).
type RatingSummary struct {
	TeamID int     `json:"team_id"`
	Season int     `json:"season,omitempty"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Last   float64 `json:"last"`
	Trend  float64 `json:"trend"`
}
