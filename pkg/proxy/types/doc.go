// Package types defines the wire types of the gateway's HTTP surface.
//
// ChatCompletionRequest deliberately decodes only the fields the gateway
// acts on (model, stream, messages) and carries everything else as raw
// JSON, so bodies reach the provider byte-equivalent to what the client
// sent apart from the model rewrite. ErrorResponse is the OpenAI error
// envelope used for every gateway-originated error.
package types
