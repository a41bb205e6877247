package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redactor removes credentials from log output. The gateway handles two
// kinds of secrets: provider API keys from the provider table, and client
// bearer tokens from the token table. Both must never appear in logs.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	regex       *regexp.Regexp
	replacement string
}

// NewRedactor creates a redactor with the built-in secret patterns.
func NewRedactor() *Redactor {
	compile := func(expr, replacement string) *redactPattern {
		return &redactPattern{
			regex:       regexp.MustCompile(expr),
			replacement: replacement,
		}
	}

	return &Redactor{
		patterns: []*redactPattern{
			// Explicit bearer credentials in header dumps.
			compile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***"),
			// Provider API keys (sk- is the common OpenAI-style prefix).
			compile(`sk-[a-zA-Z0-9]+`, "sk-***"),
			// key=value style credentials.
			compile(`(?i)(api[-_]?key|token|secret|password)[:=]\s*\S+`, "$1=***"),
		},
	}
}

// RedactString removes secrets from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// RedactAttr redacts a slog attribute. Values under sensitive key names
// are masked entirely; other string values pass through pattern redaction.
func (r *Redactor) RedactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, maskValue(a.Value.String()))
	}

	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, r.RedactString(a.Value.String()))
	}
	return a
}

// isSensitiveKey checks if a key name indicates credential data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := []string{
		"password", "secret", "token", "api_key", "apikey",
		"authorization", "credential",
	}

	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// maskValue masks a sensitive value, keeping a short prefix as a hint.
func maskValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "***"
	}
	return value[:4] + "***"
}
