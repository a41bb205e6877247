/*
Package security provides authentication and transport security for the
Hermes gateway.

# Token Authentication

Validate gateway tokens in HTTP middleware:

	validator := auth.NewTokenValidator(registry)
	middleware := auth.NewMiddleware(validator)

	mux.Handle("/v1/chat/completions", middleware.Handle(chatHandler))

Tokens come from the token table and are checked with a constant-time
comparison. The matched token's description is stored in the request
context for logging and audit.

# TLS

The gateway listener supports TLS via security configuration:

	security:
	  tls:
	    enabled: true
	    cert_file: /etc/hermes/certs/server.crt
	    key_file: /etc/hermes/certs/server.key

TLS 1.3 is the minimum accepted version.
*/
package security
