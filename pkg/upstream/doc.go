// Package upstream implements the HTTP client used to reach provider
// APIs.
//
// The client shares a single pooled transport across all providers and
// substitutes each provider's API key for the caller's gateway token.
// Chat completion responses are returned with the upstream status code
// intact so handlers can relay provider errors verbatim. Requests are
// made exactly once; there is no retry or backoff.
//
// Model listings are fetched per provider and rewritten to the
// gateway's "provider/model" identifier form. Streaming responses are
// exposed as a Stream of raw SSE data payloads, terminated by the
// OpenAI "[DONE]" marker.
package upstream
