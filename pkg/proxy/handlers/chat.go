package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"switchboard-ai/hermes/pkg/audit"
	"switchboard-ai/hermes/pkg/proxy"
	"switchboard-ai/hermes/pkg/proxy/middleware"
	"switchboard-ai/hermes/pkg/proxy/types"
	"switchboard-ai/hermes/pkg/registry"
	"switchboard-ai/hermes/pkg/security/auth"
	"switchboard-ai/hermes/pkg/telemetry/metrics"
	"switchboard-ai/hermes/pkg/upstream"
)

// MaxResponseBodySize caps buffered (non-streaming) upstream response
// bodies at 32 MB.
const MaxResponseBodySize = 32 << 20

// ChatHandler proxies POST /v1/chat/completions to the provider selected by
// the model prefix. The request body is forwarded as the client sent it,
// with only the model field rewritten to the provider's bare name, and the
// upstream status and payload are relayed verbatim.
type ChatHandler struct {
	registry SnapshotSource
	client   *upstream.Client
	metrics  *metrics.Collector
	recorder Recorder
	logger   *slog.Logger
}

// NewChatHandler creates a chat completion handler. Metrics and recorder
// may be nil to disable those concerns.
func NewChatHandler(registry SnapshotSource, client *upstream.Client, collector *metrics.Collector, recorder Recorder, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChatHandler{
		registry: registry,
		client:   client,
		metrics:  collector,
		recorder: recorder,
		logger:   logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)
	start := time.Now()

	if r.Method != http.MethodPost {
		h.writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Method %s not allowed. Use POST instead.", r.Method),
			"method",
			types.CodeInvalidValue,
		))
		return
	}

	chatReq, err := proxy.ParseChatCompletionRequest(r)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected chat completion request",
			"request_id", requestID,
			"error", err,
		)
		h.writeError(ctx, w, proxy.HandleError(err))
		return
	}

	requestedModel := chatReq.Model
	snap := h.registry.Snapshot()

	if !snap.ModelAllowed(requestedModel) {
		h.writeError(ctx, w, types.NewNotFoundError(
			fmt.Sprintf("Model %q is not supported by this gateway.", requestedModel),
			"model",
			types.CodeModelNotFound,
		))
		return
	}

	provider, ref, err := snap.Resolve(requestedModel)
	if err != nil {
		h.writeError(ctx, w, proxy.HandleError(err))
		return
	}

	if err := chatReq.NormalizeContent(); err != nil {
		h.writeError(ctx, w, types.NewInvalidRequestError(
			fmt.Sprintf("Invalid message content: %v", err),
			"messages",
			types.CodeInvalidValue,
		))
		return
	}

	// The provider sees its bare model name; everything else in the body
	// passes through untouched.
	chatReq.SetModel(ref.Model)
	body, err := json.Marshal(chatReq)
	if err != nil {
		h.writeError(ctx, w, types.NewServerError("Failed to encode upstream request."))
		return
	}

	meta := proxy.ExtractRequestMetadata(r, requestedModel, chatReq.Stream)
	meta.RequestID = requestID
	meta.Provider = provider.Name
	if info, ok := auth.GetTokenInfo(ctx); ok {
		meta.TokenDescription = info.Description
	}

	h.logger.InfoContext(ctx, "forwarding chat completion",
		"request_id", requestID,
		"provider", provider.Name,
		"model", requestedModel,
		"stream", chatReq.Stream,
	)

	resp, err := h.client.ChatCompletion(ctx, provider, body)
	if err != nil {
		errResp := proxy.HandleError(err)
		h.finish(meta, ref, errResp.Error.HTTPStatusCode(), "gateway_error", time.Since(start), proxy.Usage{}, err)
		h.writeError(ctx, w, errResp)
		return
	}
	defer resp.Body.Close()

	// The upstream decides the relay mode, not the request flag: a
	// provider may answer a stream request with a plain JSON completion,
	// which must be relayed as-is rather than scanned for SSE frames.
	contentType := resp.Header.Get("Content-Type")
	if resp.StatusCode == http.StatusOK && strings.Contains(contentType, "text/event-stream") {
		h.relayStream(ctx, w, resp, meta, ref, requestedModel, start)
		return
	}

	h.relayBuffered(ctx, w, resp, meta, ref, requestedModel, start)
}

// relayBuffered reads the whole upstream response and relays status and
// payload verbatim, restoring the prefixed model name in the body.
func (h *ChatHandler) relayBuffered(ctx context.Context, w http.ResponseWriter, resp *http.Response, meta *proxy.RequestMetadata, ref registry.ModelRef, requestedModel string, start time.Time) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBodySize))
	if err != nil {
		readErr := &upstream.ProviderError{
			Provider:   meta.Provider,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to read upstream response: %v", err),
		}
		errResp := proxy.HandleError(readErr)
		h.finish(meta, ref, errResp.Error.HTTPStatusCode(), "gateway_error", time.Since(start), proxy.Usage{}, readErr)
		h.writeError(ctx, w, errResp)
		return
	}

	body = proxy.RewriteModelField(body, requestedModel)
	usage := proxy.ExtractUsage(body)

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(ctx, "failed to write response to client",
			"request_id", meta.RequestID,
			"error", err,
		)
	}

	h.finish(meta, ref, resp.StatusCode, classifyStatus(resp.StatusCode), time.Since(start), usage, nil)
}

// relayStream relays upstream SSE events to the client until the upstream
// sends [DONE] or fails.
func (h *ChatHandler) relayStream(ctx context.Context, w http.ResponseWriter, resp *http.Response, meta *proxy.RequestMetadata, ref registry.ModelRef, requestedModel string, start time.Time) {
	proxy.SetSSEHeaders(w)

	stream := upstream.NewStream(meta.Provider, resp.Body)
	defer stream.Close()

	var usage proxy.Usage
	for {
		payload, err := stream.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				h.logger.InfoContext(ctx, "client disconnected during stream",
					"request_id", meta.RequestID,
					"provider", meta.Provider,
				)
				h.finish(meta, ref, http.StatusOK, "client_cancelled", time.Since(start), usage, ctx.Err())
				return
			}

			h.logger.ErrorContext(ctx, "upstream stream failed",
				"request_id", meta.RequestID,
				"provider", meta.Provider,
				"error", err,
			)
			proxy.WriteSSEError(w, proxy.HandleError(err))
			h.finish(meta, ref, http.StatusBadGateway, "upstream_error", time.Since(start), usage, err)
			return
		}

		payload = proxy.RewriteModelField(payload, requestedModel)
		if u := proxy.ExtractUsage(payload); u.TotalTokens > 0 {
			usage = u
		}

		if err := proxy.WriteSSEData(w, payload); err != nil {
			h.finish(meta, ref, http.StatusOK, "client_cancelled", time.Since(start), usage, err)
			return
		}
	}

	if err := proxy.WriteSSEDone(w); err != nil {
		h.logger.WarnContext(ctx, "failed to write stream terminator",
			"request_id", meta.RequestID,
			"error", err,
		)
	}

	h.finish(meta, ref, http.StatusOK, "success", time.Since(start), usage, nil)
}

// finish records metrics, audit, and the completion log entry.
func (h *ChatHandler) finish(meta *proxy.RequestMetadata, ref registry.ModelRef, statusCode int, statusClass string, latency time.Duration, usage proxy.Usage, reqErr error) {
	if h.metrics != nil {
		h.metrics.RecordRequest(meta.Provider, meta.Model, statusClass, latency, usage.TotalTokens)
		if usage.PromptTokens > 0 || usage.CompletionTokens > 0 {
			h.metrics.RecordTokens(meta.Provider, meta.Model, usage.PromptTokens, usage.CompletionTokens)
		}
		if reqErr != nil {
			h.metrics.RecordProviderError(meta.Provider, errorType(reqErr))
		}
	}

	if h.recorder != nil {
		record := &audit.Record{
			RequestID:        meta.RequestID,
			RequestTime:      meta.Timestamp,
			Model:            meta.Model,
			Provider:         meta.Provider,
			UpstreamModel:    ref.Model,
			Stream:           meta.Stream,
			TokenDescription: meta.TokenDescription,
			RemoteAddr:       meta.RemoteAddr,
			UserAgent:        meta.UserAgent,
			StatusCode:       statusCode,
			Latency:          latency,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
		if reqErr != nil {
			record.Error = reqErr.Error()
			record.ErrorType = errorType(reqErr)
		}
		if err := h.recorder.Record(record); err != nil {
			h.logger.Warn("failed to record audit entry",
				"request_id", meta.RequestID,
				"error", err,
			)
		}
	}

	h.logger.Info("chat completion finished",
		"request_id", meta.RequestID,
		"provider", meta.Provider,
		"model", meta.Model,
		"status", statusCode,
		"outcome", statusClass,
		"duration_ms", latency.Milliseconds(),
		"total_tokens", usage.TotalTokens,
	)
}

func (h *ChatHandler) writeError(ctx context.Context, w http.ResponseWriter, errResp *types.ErrorResponse) {
	if err := proxy.WriteErrorResponse(w, errResp); err != nil {
		h.logger.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// classifyStatus maps a relayed upstream status to a metrics outcome label.
func classifyStatus(statusCode int) string {
	switch {
	case statusCode < 400:
		return "success"
	case statusCode < 500:
		return "client_error"
	default:
		return "upstream_error"
	}
}

// errorType maps gateway-side failures to audit/metrics error types.
func errorType(err error) string {
	var (
		timeoutErr *upstream.TimeoutError
		connectErr *upstream.ConnectError
		streamErr  *upstream.StreamError
		parseErr   *upstream.ParseError
	)

	switch {
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &connectErr):
		return "connect"
	case errors.As(err, &streamErr):
		return "stream"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "gateway"
	}
}
