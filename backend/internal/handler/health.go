package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/postboard-dev/postboard/shared/api"
	"github.com/postboard-dev/postboard/shared/logger"
	"github.com/postboard-dev/postboard/shared/utils"
)

// Health is a liveness probe endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready is a readiness probe endpoint. It returns 503 when storage does not answer a ping.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "component", "health", "error", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "storage unavailable"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}
