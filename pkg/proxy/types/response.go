package types

// ServiceInfo is the response body for GET /. It describes the gateway and
// its endpoint surface.
type ServiceInfo struct {
	// Service is the gateway's service name.
	Service string `json:"service"`

	// Version is the build version string.
	Version string `json:"version"`

	// Providers is the number of currently loaded providers.
	Providers int `json:"providers"`

	// Endpoints maps endpoint paths to short descriptions.
	Endpoints map[string]string `json:"endpoints"`
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	// Status is "ok" for liveness, "ready" or "not_ready" for readiness.
	Status string `json:"status"`

	// Timestamp is the server time in RFC 3339 format.
	Timestamp string `json:"timestamp"`
}

// ReloadResponse is the response body for POST /v1/reload.
type ReloadResponse struct {
	// Status is "reloaded" on success.
	Status string `json:"status"`

	// Providers is the number of providers in the new snapshot.
	Providers int `json:"providers"`

	// Tokens is the number of access tokens in the new snapshot.
	Tokens int `json:"tokens"`
}
