package metrics

import (
	"fmt"
	"sync"
	"time"

	"switchboard-ai/hermes/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns all Prometheus metrics exposed by the gateway. It manages
// metric registration and provides a single recording interface for the
// request handlers and the registry reload path.
type Collector struct {
	config   config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	providerMetrics *ProviderMetrics

	cardinalityLimiter *cardinalityLimiter
}

// NewCollector creates a metrics collector backed by the given Prometheus
// registry. If registry is nil a fresh registry is created, keeping the
// gateway's metrics separate from anything else in the process.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "hermes"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "gateway"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Chat completions range from sub-second local models to slow
		// long-generation requests.
		cfg.RequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0}
	}

	c := &Collector{
		config:             cfg,
		registry:           registry,
		cardinalityLimiter: newCardinalityLimiter(10000),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.providerMetrics = NewProviderMetrics(cfg, registry)

	return c
}

// RecordRequest records a completed chat completion request.
//
// The model label is the client-facing prefixed name. Label sets beyond the
// cardinality limit are aggregated under model="other"; clients can request
// arbitrary model strings, so the limit keeps a hostile client from growing
// the metric space without bound.
func (c *Collector) RecordRequest(provider, model, status string, duration time.Duration, tokens int) {
	if !c.config.Enabled {
		return
	}

	labelSet := fmt.Sprintf("request:%s:%s:%s", provider, model, status)
	if !c.cardinalityLimiter.allow(labelSet) {
		model = "other"
	}

	c.requestMetrics.RecordRequest(provider, model, status, duration, tokens)
}

// RecordTokens records prompt and completion token counts reported by an
// upstream response.
func (c *Collector) RecordTokens(provider, model string, promptTokens, completionTokens int) {
	if !c.config.Enabled {
		return
	}

	c.requestMetrics.RecordTokens(provider, model, promptTokens, completionTokens)
}

// RecordProviderError records a failed upstream call.
func (c *Collector) RecordProviderError(provider, errorType string) {
	if !c.config.Enabled {
		return
	}

	c.providerMetrics.RecordError(provider, errorType)
}

// UpdateProviderModels sets the number of models a provider advertised on
// its last model listing.
func (c *Collector) UpdateProviderModels(provider string, count int) {
	if !c.config.Enabled {
		return
	}

	c.providerMetrics.UpdateModels(provider, count)
}

// RecordReload records a routing table reload attempt with its outcome
// ("success" or "error").
func (c *Collector) RecordReload(status string) {
	if !c.config.Enabled {
		return
	}

	c.providerMetrics.RecordReload(status)
}

// UpdateTableSizes sets the current provider and token table sizes. Called
// after every successful load.
func (c *Collector) UpdateTableSizes(providers, tokens int) {
	if !c.config.Enabled {
		return
	}

	c.providerMetrics.UpdateTableSizes(providers, tokens)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// cardinalityLimiter caps the number of unique label combinations so that
// client-supplied model strings cannot grow the metric space unboundedly.
type cardinalityLimiter struct {
	max     int
	current map[string]struct{}
	mu      sync.RWMutex
}

func newCardinalityLimiter(max int) *cardinalityLimiter {
	return &cardinalityLimiter{
		max:     max,
		current: make(map[string]struct{}),
	}
}

// allow reports whether the label set may be recorded as-is. Known label
// sets are always allowed; new ones only while under the limit.
func (cl *cardinalityLimiter) allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.max {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}
