package handlers

import (
	"log/slog"
	"net/http"

	"switchboard-ai/hermes/pkg/proxy"
	"switchboard-ai/hermes/pkg/proxy/middleware"
	"switchboard-ai/hermes/pkg/proxy/types"
	"switchboard-ai/hermes/pkg/telemetry/metrics"
)

// ReloadHandler serves POST /v1/reload. It re-reads both routing tables and
// swaps them in atomically; if either file fails to parse the previous
// tables stay active and the handler reports the failure.
type ReloadHandler struct {
	registry Reloader
	metrics  *metrics.Collector
	logger   *slog.Logger
}

// NewReloadHandler creates a reload handler.
func NewReloadHandler(registry Reloader, collector *metrics.Collector, logger *slog.Logger) *ReloadHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReloadHandler{
		registry: registry,
		metrics:  collector,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ReloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.registry.Load(); err != nil {
		h.logger.ErrorContext(ctx, "reload failed, previous tables remain active",
			"request_id", requestID,
			"error", err,
		)
		if h.metrics != nil {
			h.metrics.RecordReload("error")
		}

		errResp := types.NewErrorResponse(
			"Failed to reload routing tables: "+err.Error(),
			types.ErrorTypeServerError,
			"",
			types.CodeReloadFailed,
		)
		if err := proxy.WriteErrorResponse(w, errResp); err != nil {
			h.logger.ErrorContext(ctx, "failed to write error response", "error", err)
		}
		return
	}

	snap := h.registry.Snapshot()
	if h.metrics != nil {
		h.metrics.RecordReload("success")
		h.metrics.UpdateTableSizes(snap.ProviderCount(), snap.TokenCount())
	}

	h.logger.InfoContext(ctx, "routing tables reloaded",
		"request_id", requestID,
		"providers", snap.ProviderCount(),
		"tokens", snap.TokenCount(),
	)

	response := types.ReloadResponse{
		Status:    "reloaded",
		Providers: snap.ProviderCount(),
		Tokens:    snap.TokenCount(),
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, response); err != nil {
		h.logger.ErrorContext(ctx, "failed to write reload response", "error", err)
	}
}
