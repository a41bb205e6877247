package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"switchboard-ai/hermes/pkg/proxy"
	"switchboard-ai/hermes/pkg/proxy/middleware"
	"switchboard-ai/hermes/pkg/registry"
	"switchboard-ai/hermes/pkg/telemetry/metrics"
	"switchboard-ai/hermes/pkg/upstream"
)

// ModelsHandler serves GET /v1/models by aggregating every provider's model
// listing, each entry prefixed with the provider name. Providers that fail
// to answer are skipped so one dead upstream never empties the catalog.
//
// The aggregate is cached per routing table snapshot; a reload invalidates
// the cache by swapping the snapshot.
type ModelsHandler struct {
	registry SnapshotSource
	client   *upstream.Client
	metrics  *metrics.Collector
	logger   *slog.Logger

	mu         sync.Mutex
	cachedSnap *registry.Snapshot
	cached     []upstream.Model
}

// NewModelsHandler creates a model listing handler.
func NewModelsHandler(registry SnapshotSource, client *upstream.Client, collector *metrics.Collector, logger *slog.Logger) *ModelsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ModelsHandler{
		registry: registry,
		client:   client,
		metrics:  collector,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := h.registry.Snapshot()
	models := h.lookupCache(snap)
	if models == nil {
		var ok bool
		models, ok = h.aggregate(ctx, snap)
		// An all-providers-down listing is not worth caching; the next
		// request retries.
		if ok {
			h.storeCache(snap, models)
		}
	}

	list := upstream.ModelList{
		Object: "list",
		Data:   models,
	}
	if err := proxy.WriteJSONResponse(w, http.StatusOK, list); err != nil {
		h.logger.ErrorContext(ctx, "failed to write model list", "error", err)
	}
}

// aggregate queries every provider concurrently and merges the results in
// provider table order. The second return value is false when every
// configured provider failed.
func (h *ModelsHandler) aggregate(ctx context.Context, snap *registry.Snapshot) ([]upstream.Model, bool) {
	requestID := middleware.GetRequestID(ctx)
	providers := snap.Providers()
	results := make([][]upstream.Model, len(providers))

	var wg sync.WaitGroup
	for i, provider := range providers {
		wg.Add(1)
		go func(i int, provider registry.Provider) {
			defer wg.Done()

			models, err := h.client.ListModels(ctx, provider)
			if err != nil {
				h.logger.WarnContext(ctx, "skipping provider in model listing",
					"request_id", requestID,
					"provider", provider.Name,
					"error", err,
				)
				if h.metrics != nil {
					h.metrics.RecordProviderError(provider.Name, errorType(err))
				}
				return
			}
			results[i] = models
		}(i, provider)
	}
	wg.Wait()

	merged := []upstream.Model{}
	succeeded := 0
	for i, models := range results {
		if models == nil {
			continue
		}
		succeeded++

		filtered := models[:0]
		for _, model := range models {
			if snap.ModelAllowed(model.ID) {
				filtered = append(filtered, model)
			}
		}
		merged = append(merged, filtered...)

		if h.metrics != nil {
			h.metrics.UpdateProviderModels(providers[i].Name, len(filtered))
		}
	}

	h.logger.InfoContext(ctx, "aggregated model listing",
		"request_id", requestID,
		"providers", len(providers),
		"responding", succeeded,
		"models", len(merged),
	)

	return merged, succeeded > 0 || len(providers) == 0
}

func (h *ModelsHandler) lookupCache(snap *registry.Snapshot) []upstream.Model {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cachedSnap == snap {
		return h.cached
	}
	return nil
}

func (h *ModelsHandler) storeCache(snap *registry.Snapshot, models []upstream.Model) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.cachedSnap = snap
	h.cached = models
}
