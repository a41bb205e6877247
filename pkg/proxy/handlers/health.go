package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"switchboard-ai/hermes/pkg/proxy"
	"switchboard-ai/hermes/pkg/proxy/types"
)

// HealthHandler serves GET /health for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a liveness handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := types.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, response); err != nil {
		slog.Error("failed to write health response", "error", err)
	}
}

// ReadyHandler serves GET /ready. The gateway is ready once at least one
// provider is loaded.
type ReadyHandler struct {
	registry SnapshotSource
}

// NewReadyHandler creates a readiness handler.
func NewReadyHandler(registry SnapshotSource) *ReadyHandler {
	return &ReadyHandler{registry: registry}
}

// ServeHTTP implements http.Handler.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.registry.Snapshot()

	status := "ready"
	statusCode := http.StatusOK
	if snap.ProviderCount() == 0 {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	response := types.HealthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if err := proxy.WriteJSONResponse(w, statusCode, response); err != nil {
		slog.Error("failed to write readiness response", "error", err)
	}
}
