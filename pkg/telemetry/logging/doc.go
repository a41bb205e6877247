// Package logging configures the gateway's structured logging.
//
// Loggers are built on log/slog with JSON or text handlers. When secret
// redaction is enabled, a ReplaceAttr hook masks values under
// credential-shaped keys and scrubs API-key and bearer-token patterns out
// of string attributes, so neither provider keys nor client tokens can
// leak into log output.
package logging
