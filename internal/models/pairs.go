package models

// PairKey identifies a directed (team, opponent) relationship.
type PairKey struct {
	TeamID    int `json:"team_id"`
	OppTeamID int `json:"opp_team_id"`
}

// Less orders keys by team then opponent.
func (k PairKey) Less(o PairKey) bool {
	if k.TeamID != o.TeamID {
		return k.TeamID < o.TeamID
	}
	return k.OppTeamID < o.OppTeamID
}

// Reverse returns the (opponent, team) key.
func (k PairKey) Reverse() PairKey {
	return PairKey{TeamID: k.OppTeamID, OppTeamID: k.TeamID}
}

// PairRecord aggregates head-to-head results for one directed pair.
// (A,B) and (B,A) are separate records: score differential is mirrored
// but the home count is not (see Home).
type PairRecord struct {
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Games     int `json:"games"`
	ScoreDiff int `json:"score_diff"`
	// Home counts games this team won at home. The source location flag only
	// describes the winner, so losses never contribute.
	Home int `json:"home"`
}

// WinRatio returns wins/games, or 0 for a pair with no games.
func (r PairRecord) WinRatio() float64 {
	if r.Games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(r.Games)
}
