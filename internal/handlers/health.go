package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/encounter-tracker/internal/storage"
)

// HealthResponse reports service and storage health.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

type HealthHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewHealthHandler(storage storage.Storage, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	resp := HealthResponse{Status: "ok", Storage: "ok"}
	status := http.StatusOK
	if err := h.storage.Ping(r.Context()); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		resp.Status = "degraded"
		resp.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, status, resp)
}
