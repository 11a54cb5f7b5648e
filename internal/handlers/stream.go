package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/openmohaa/bracket-api/internal/models"
)

const (
	streamWriteWait    = 5 * time.Second
	streamPongWait     = 30 * time.Second
	streamPingInterval = 20 * time.Second
	streamStatusWait   = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// StreamSimulation pushes a job's status over a WebSocket each time it
// changes, and closes the connection once the job is done or failed.
// @Summary Stream Simulation Status
// @Tags Simulations
// @Param id path string true "Simulation ID"
// @Success 101 {object} models.JobStatus
// @Failure 404 {object} map[string]string "Not Found"
// @Router /simulations/{id}/stream [get]
func (h *Handler) StreamSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

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

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warnw("WebSocket upgrade failed", "job", id, "error", err)
		return
	}
	defer conn.Close()

	done := make(chan struct{})
	go readPump(conn, done)

	poll := time.NewTicker(h.streamPoll)
	defer poll.Stop()
	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	last := ""
	for {
		if status.Status != last {
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(status); err != nil {
				h.logger.Warnw("WebSocket write failed", "job", id, "error", err)
				return
			}
			last = status.Status
		}
		if status.Status == models.JobDone || status.Status == models.JobFailed {
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, status.Status))
			return
		}

		select {
		case <-done:
			return
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-poll.C:
			next, err := h.statusFor(id)
			if err != nil {
				h.logger.Warnw("Failed to poll simulation", "job", id, "error", err)
				continue
			}
			status = next
		}
	}
}

// statusFor reads a job status on its own deadline; the request context of a
// hijacked connection says nothing about the client.
func (h *Handler) statusFor(id string) (*models.JobStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), streamStatusWait)
	defer cancel()
	return h.pool.Status(ctx, id)
}

// readPump consumes control frames until the client goes away, then closes done.
func readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(streamPongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
