// Package server runs the gateway's HTTP listener.
//
// The Server wires the routing table registry, the upstream client, the
// metrics collector, and the audit recorder into the endpoint handlers,
// applies the middleware chain (recovery, request ID, logging, CORS), and
// serves until a signal or context cancellation triggers graceful shutdown.
//
// Route surface:
//
//	GET  /                     service info
//	GET  /health               liveness probe
//	GET  /ready                readiness probe
//	GET  /v1/models            aggregated model listing
//	POST /v1/chat/completions  chat completion proxy (bearer token required)
//	POST /v1/reload            reload routing tables
//	GET  /metrics              Prometheus scrape endpoint (when enabled)
package server
