// Package handlers implements the gateway's HTTP endpoints.
//
// ChatHandler forwards chat completions to the provider named by the model
// prefix, relaying the upstream status and payload verbatim (buffered or as
// an SSE stream). ModelsHandler aggregates every provider's model listing
// with per-provider prefixes, skipping providers that fail. ReloadHandler
// swaps the routing tables atomically. HealthHandler, ReadyHandler, and
// RootHandler cover probes and service identification.
//
// Handlers take their dependencies through the small interfaces in
// types.go so tests can substitute the registry and audit recorder.
package handlers
