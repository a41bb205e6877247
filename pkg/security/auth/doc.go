// Package auth validates gateway access tokens.
//
// Tokens come from the registry's token table and are checked against the
// current snapshot on every request, so reloads take effect immediately.
// The middleware guards the chat completion route and rejects with an
// OpenAI-format 401 before any upstream work happens.
package auth
