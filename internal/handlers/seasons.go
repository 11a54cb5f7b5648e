package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/bracket-api/internal/models"
)

// GetSeasonRatings returns every team's rating summary for a season
// @Summary Get Season Ratings
// @Tags Seasons
// @Produce json
// @Param season path int true "Season"
// @Success 200 {array} models.RatingSummary
// @Failure 404 {object} map[string]string "Not Found"
// @Router /seasons/{season}/ratings [get]
func (h *Handler) GetSeasonRatings(w http.ResponseWriter, r *http.Request) {
	season, ok := h.intParam(w, r, "season")
	if !ok {
		return
	}

	ratings, err := h.forecast.Ratings(r.Context(), season)
	if err != nil {
		h.forecastError(w, err, "season", season)
		return
	}

	h.jsonResponse(w, http.StatusOK, ratings)
}

// GetMatchup returns the probability that one tournament team beats another
// @Summary Get Matchup Probability
// @Tags Seasons
// @Produce json
// @Param season path int true "Season"
// @Param team path int true "Team ID"
// @Param opp path int true "Opponent team ID"
// @Success 200 {object} models.MatchupPrediction
// @Failure 404 {object} map[string]string "Not Found"
// @Router /seasons/{season}/matchups/{team}/{opp} [get]
func (h *Handler) GetMatchup(w http.ResponseWriter, r *http.Request) {
	season, ok := h.intParam(w, r, "season")
	if !ok {
		return
	}
	team, ok := h.intParam(w, r, "team")
	if !ok {
		return
	}
	opp, ok := h.intParam(w, r, "opp")
	if !ok {
		return
	}
	if team == opp {
		h.errorResponse(w, http.StatusBadRequest, "A team cannot play itself")
		return
	}

	pred, err := h.forecast.Matchup(r.Context(), season, team, opp)
	if err != nil {
		h.forecastError(w, err, "season", season, "team", team, "opp", opp)
		return
	}

	h.jsonResponse(w, http.StatusOK, pred)
}

func (h *Handler) intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		h.errorResponse(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// forecastError maps pipeline errors to HTTP statuses.
func (h *Handler) forecastError(w http.ResponseWriter, err error, keysAndValues ...interface{}) {
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrMissingProbability):
		h.errorResponse(w, http.StatusNotFound, "Not found")
	case errors.Is(err, models.ErrMissingDataSource):
		h.logger.Warnw("Forecast data unavailable", append(keysAndValues, "error", err)...)
		h.errorResponse(w, http.StatusServiceUnavailable, "Forecast data unavailable")
	default:
		h.logger.Errorw("Forecast failed", append(keysAndValues, "error", err)...)
		h.errorResponse(w, http.StatusInternalServerError, "Forecast failed")
	}
}
