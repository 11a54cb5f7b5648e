package models

// Location encodes where a game was played, from the winner's point of view.
type Location string

const (
	LocationHome    Location = "H"
	LocationAway    Location = "A"
	LocationNeutral Location = "N"
)

// Game is one historical result. Values are never mutated after loading.
type Game struct {
	Season    int      `json:"season"`
	DayNum    int      `json:"day_num"`
	WTeamID   int      `json:"w_team_id"`
	LTeamID   int      `json:"l_team_id"`
	WScore    int      `json:"w_score"`
	LScore    int      `json:"l_score"`
	WLoc      Location `json:"w_loc"`
	IsTourney bool     `json:"is_tourney"`
}

// SeedRow is a raw seed label for a team in a season, e.g. "W16" or "Y01a".
type SeedRow struct {
	Season int    `json:"season"`
	Seed   string `json:"seed"`
	TeamID int    `json:"team_id"`
}

// RankingRow is one external ordinal ranking observation for a team.
type RankingRow struct {
	Season      int     `json:"season"`
	TeamID      int     `json:"team_id"`
	OrdinalRank float64 `json:"ordinal_rank"`
}
