// Package metrics provides Prometheus instrumentation for the gateway.
//
// All metrics live under the hermes_gateway_* prefix (configurable via
// MetricsConfig.Namespace and Subsystem) and are registered against a
// dedicated registry so the scrape endpoint only exposes gateway metrics.
//
// The Collector is the single entry point: handlers record request
// outcomes and token usage, the upstream client records provider errors,
// and the reload path records table swaps.
//
//	collector := metrics.NewCollector(cfg.Telemetry.Metrics, nil)
//	mux.Handle("/metrics", collector.Handler())
package metrics
