// Package telemetry provides observability for the Hermes gateway.
//
// # Components
//
//   - logging: structured slog logging with secret redaction
//   - metrics: Prometheus metrics collection and the /metrics endpoint
//
// Logging is always on; metrics are enabled through telemetry
// configuration and exposed via promhttp on the gateway listener.
package telemetry
