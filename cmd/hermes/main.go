// Hermes is an OpenAI-compatible gateway that routes chat completion
// requests across multiple upstream providers.
//
// It authenticates callers against a static token table, resolves the
// provider from the model prefix, and forwards requests with the
// provider's own API key, relaying responses (including SSE streams)
// unchanged.
//
// Usage:
//
//	# Start the gateway with default configuration
//	hermes run
//
//	# Start with a custom configuration file
//	hermes run --config /path/to/config.yaml
//
//	# Validate configuration and routing tables
//	hermes validate
//
//	# Probe every configured provider
//	hermes check
//
//	# Query the audit database
//	hermes audit query --time-range "2026-08-30T00:00:00Z/2026-08-31T00:00:00Z"
//
//	# Show version information
//	hermes version
//
// For complete documentation, see: https://github.com/switchboard-ai/hermes
package main

func main() {
	Execute()
}
