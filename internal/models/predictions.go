package models

// MatchupPrediction is the model's estimate for a single directed match-up.
type MatchupPrediction struct {
	Season      int     `json:"season"`
	TeamID      int     `json:"team_id"`
	OppTeamID   int     `json:"opp_team_id"`
	WinProb     float64 `json:"win_prob"`
	TeamSeed    string  `json:"team_seed,omitempty"`
	OppTeamSeed string  `json:"opp_team_seed,omitempty"`
}
