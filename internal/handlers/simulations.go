package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openmohaa/bracket-api/internal/models"
	"github.com/openmohaa/bracket-api/internal/worker"
)

// CreateSimulation queues a bracket simulation
// @Summary Queue Bracket Simulation
// @Tags Simulations
// @Accept json
// @Produce json
// @Param body body models.SimulationRequest true "Simulation request"
// @Success 202 {object} models.SimulationAccepted
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 503 {object} map[string]string "Queue Full"
// @Router /simulations [post]
func (h *Handler) CreateSimulation(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var req models.SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.validateStruct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	status, err := h.pool.Submit(r.Context(), req)
	if errors.Is(err, worker.ErrQueueFull) {
		w.Header().Set("Retry-After", "5")
		h.errorResponse(w, http.StatusServiceUnavailable, "Simulation queue is full")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to queue simulation", "error", err, "season", req.Season)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to queue simulation")
		return
	}

	h.logger.Infow("Simulation queued", "job", status.ID, "season", req.Season, "runs", req.Runs)
	h.jsonResponse(w, http.StatusAccepted, models.SimulationAccepted{ID: status.ID, Status: status.Status})
}

// GetSimulation returns the state of a queued simulation
// @Summary Get Simulation Status
// @Tags Simulations
// @Produce json
// @Param id path string true "Simulation ID"
// @Success 200 {object} models.JobStatus
// @Failure 404 {object} map[string]string "Not Found"
// @Router /simulations/{id} [get]
func (h *Handler) GetSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.errorResponse(w, http.StatusBadRequest, "Simulation ID is required")
		return
	}

	status, err := h.pool.Status(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		h.errorResponse(w, http.StatusNotFound, "Simulation not found")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to get simulation", "error", err, "job", id)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to get simulation")
		return
	}

	h.jsonResponse(w, http.StatusOK, status)
}
