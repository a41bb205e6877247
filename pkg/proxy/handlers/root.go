package handlers

import (
	"log/slog"
	"net/http"

	"switchboard-ai/hermes/pkg/proxy"
	"switchboard-ai/hermes/pkg/proxy/types"
)

// RootHandler serves GET / with service identification and the endpoint
// surface.
type RootHandler struct {
	registry SnapshotSource
	version  string
}

// NewRootHandler creates a service info handler.
func NewRootHandler(registry SnapshotSource, version string) *RootHandler {
	return &RootHandler{
		registry: registry,
		version:  version,
	}
}

// ServeHTTP implements http.Handler.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := types.ServiceInfo{
		Service:   "hermes",
		Version:   h.version,
		Providers: h.registry.Snapshot().ProviderCount(),
		Endpoints: map[string]string{
			"/":                    "service info",
			"/health":              "liveness probe",
			"/ready":               "readiness probe",
			"/v1/models":           "aggregated model listing",
			"/v1/chat/completions": "chat completion proxy (bearer token required)",
			"/v1/reload":           "reload routing tables",
		},
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, response); err != nil {
		slog.Error("failed to write service info", "error", err)
	}
}
