package metrics

import (
	"switchboard-ai/hermes/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderMetrics tracks upstream providers and the routing tables.
//
// Metrics:
//   - hermes_gateway_provider_models: models advertised per provider
//   - hermes_gateway_provider_errors_total: upstream error count by type
//   - hermes_gateway_reloads_total: routing table reload attempts by outcome
//   - hermes_gateway_table_providers: providers in the active routing table
//   - hermes_gateway_table_tokens: tokens in the active routing table
type ProviderMetrics struct {
	models         *prometheus.GaugeVec
	errors         *prometheus.CounterVec
	reloads        *prometheus.CounterVec
	tableProviders prometheus.Gauge
	tableTokens    prometheus.Gauge
}

// NewProviderMetrics creates and registers provider metrics with the provided registry.
func NewProviderMetrics(cfg config.MetricsConfig, registry *prometheus.Registry) *ProviderMetrics {
	pm := &ProviderMetrics{
		models: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_models",
				Help:      "Number of models advertised by each provider on its last listing",
			},
			[]string{"provider"},
		),

		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "provider_errors_total",
				Help:      "Total number of upstream provider errors by type",
			},
			[]string{"provider", "error_type"},
		),

		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "reloads_total",
				Help:      "Total number of routing table reload attempts by outcome",
			},
			[]string{"status"},
		),

		tableProviders: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "table_providers",
				Help:      "Number of providers in the active routing table",
			},
		),

		tableTokens: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "table_tokens",
				Help:      "Number of client tokens in the active routing table",
			},
		),
	}

	registry.MustRegister(
		pm.models,
		pm.errors,
		pm.reloads,
		pm.tableProviders,
		pm.tableTokens,
	)

	return pm
}

// UpdateModels sets the advertised model count for a provider.
func (pm *ProviderMetrics) UpdateModels(provider string, count int) {
	pm.models.WithLabelValues(provider).Set(float64(count))
}

// RecordError records an upstream error.
//
// Common error types:
//   - "timeout": request deadline exceeded
//   - "connect": connection failure
//   - "server_error": upstream 5xx
//   - "client_error": upstream 4xx
//   - "parse": response parsing failure
func (pm *ProviderMetrics) RecordError(provider, errorType string) {
	pm.errors.WithLabelValues(provider, errorType).Inc()
}

// RecordReload records a routing table reload attempt.
func (pm *ProviderMetrics) RecordReload(status string) {
	pm.reloads.WithLabelValues(status).Inc()
}

// UpdateTableSizes sets the active table gauges after a successful load.
func (pm *ProviderMetrics) UpdateTableSizes(providers, tokens int) {
	pm.tableProviders.Set(float64(providers))
	pm.tableTokens.Set(float64(tokens))
}
