// Package proxy provides request parsing, response writing, and error
// mapping for the gateway's HTTP surface.
//
// Chat completion bodies are parsed just enough to route them: the model
// identifier is split into provider and upstream model, all other fields
// pass through untouched. HandleError maps the gateway's typed errors to
// OpenAI error envelopes with the appropriate status codes; upstream
// error responses bypass this mapping and are relayed verbatim.
//
// The SSE helpers write "data:" frames and the terminating "[DONE]"
// marker, flushing after each frame.
package proxy
