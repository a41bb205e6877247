package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"switchboard-ai/hermes/pkg/config"
	"switchboard-ai/hermes/pkg/registry"
)

// Client forwards requests to upstream providers over a shared pooled
// HTTP transport. Requests are made exactly once; failures surface
// directly to the caller with no automatic retries.
//
// Client is safe for concurrent use.
type Client struct {
	client *http.Client
	cfg    config.UpstreamConfig
	logger *slog.Logger
}

// NewClient creates an upstream client with connection pooling configured
// from cfg.
func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Do performs a single HTTP request against a provider with the provider's
// API key substituted into the Authorization header. The response is
// returned regardless of status code so callers can relay upstream errors
// verbatim; only transport-level failures produce an error.
func (c *Client) Do(ctx context.Context, provider registry.Provider, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if provider.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+provider.APIKey)
	}

	c.logger.Debug("sending request to provider",
		"provider", provider.Name,
		"method", method,
		"url", url,
	)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			return nil, &TimeoutError{
				Provider: provider.Name,
				Timeout:  c.cfg.Timeout,
			}
		}
		return nil, &ConnectError{
			Provider: provider.Name,
			Cause:    err,
		}
	}

	return resp, nil
}

// ChatCompletion forwards a chat completion body to the provider's chat
// endpoint. The raw response is returned with its upstream status intact.
func (c *Client) ChatCompletion(ctx context.Context, provider registry.Provider, body []byte) (*http.Response, error) {
	return c.Do(ctx, provider, http.MethodPost, provider.ChatCompletionsURL(), body, map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	})
}

// Close releases idle connections in the transport pool.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// isTimeout reports whether a transport error is a timeout.
func isTimeout(err error) bool {
	type timeout interface {
		Timeout() bool
	}
	for e := err; e != nil; {
		if t, ok := e.(timeout); ok && t.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		e = u.Unwrap()
	}
	return false
}
