package models

// FeatureRow is one row of the pair-indexed history table fed to the
// prediction model. Missing side-table values are 0, never NaN.
type FeatureRow struct {
	TeamID    int `json:"team_id"`
	OppTeamID int `json:"opp_team_id"`

	Wins      float64 `json:"wins"`
	Losses    float64 `json:"losses"`
	Games     float64 `json:"games"`
	ScoreDiff float64 `json:"score_diff"`
	Home      float64 `json:"home"`
	WinRatio  float64 `json:"win_ratio"`

	Seed     float64 `json:"seed"`
	OppSeed  float64 `json:"opp_seed"`
	SeedDiff float64 `json:"seed_diff"`

	Rating    RatingSummary `json:"rating"`
	OppRating RatingSummary `json:"opp_rating"`

	Strength    float64 `json:"strength"`
	OppStrength float64 `json:"opp_strength"`

	Ranking      float64 `json:"ranking"`
	OppRanking   float64 `json:"opp_ranking"`
	RankingsDiff float64 `json:"rankings_diff"`
}

// TeamProfile is a team's history rows rolled up to one row: games and home
// counts are summed, every other column is averaged.
type TeamProfile = FeatureRow

// FeatureColumns names the model inputs in the order returned by Features.
// WinRatio is the training target and is deliberately absent.
var FeatureColumns = []string{
	"wins", "losses", "games", "score_diff", "home",
	"seed", "opp_seed", "seed_diff",
	"rating_mean", "rating_median", "rating_std", "rating_min", "rating_max", "rating_last", "rating_trend",
	"opp_rating_mean", "opp_rating_median", "opp_rating_std", "opp_rating_min", "opp_rating_max", "opp_rating_last", "opp_rating_trend",
	"strength", "opp_strength",
	"ranking", "opp_ranking", "rankings_diff",
}

// Features returns the row's model inputs, aligned with FeatureColumns.
func (r FeatureRow) Features() []float64 {
	return []float64{
		r.Wins, r.Losses, r.Games, r.ScoreDiff, r.Home,
		r.Seed, r.OppSeed, r.SeedDiff,
		r.Rating.Mean, r.Rating.Median, r.Rating.Std, r.Rating.Min, r.Rating.Max, r.Rating.Last, r.Rating.Trend,
		r.OppRating.Mean, r.OppRating.Median, r.OppRating.Std, r.OppRating.Min, r.OppRating.Max, r.OppRating.Last, r.OppRating.Trend,
		r.Strength, r.OppStrength,
		r.Ranking, r.OppRanking, r.RankingsDiff,
	}
}
