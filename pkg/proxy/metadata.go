package proxy

import (
	"encoding/json"
	"net/http"
	"time"
)

// RequestMetadata is the per-request information the gateway records for
// logging and auditing.
type RequestMetadata struct {
	// RequestID is a unique identifier for the request.
	RequestID string

	// Model is the requested "provider/model" identifier.
	Model string

	// Provider is the resolved provider name.
	Provider string

	// Stream indicates whether streaming was requested.
	Stream bool

	// TokenDescription identifies the authenticated token holder.
	TokenDescription string

	// Method is the HTTP method.
	Method string

	// Path is the HTTP request path.
	Path string

	// UserAgent is the client's user agent string.
	UserAgent string

	// RemoteAddr is the client's address.
	RemoteAddr string

	// Timestamp is when the request was received.
	Timestamp time.Time
}

// ResponseMetadata is the per-response information recorded after a request
// completes.
type ResponseMetadata struct {
	// RequestID is the unique identifier for the request.
	RequestID string

	// StatusCode is the HTTP status relayed to the client.
	StatusCode int

	// Latency is the total request processing time.
	Latency time.Duration

	// Usage holds the token counts reported by the provider, if any.
	Usage Usage

	// Error contains any gateway-side error that occurred.
	Error error

	// Timestamp is when the response completed.
	Timestamp time.Time
}

// Usage is the OpenAI usage block reported in completion responses.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ExtractRequestMetadata collects request metadata from the HTTP request
// and the resolved model identifier.
func ExtractRequestMetadata(r *http.Request, model string, stream bool) *RequestMetadata {
	return &RequestMetadata{
		RequestID:  ExtractRequestID(r),
		Model:      model,
		Stream:     stream,
		Method:     r.Method,
		Path:       r.URL.Path,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Timestamp:  time.Now(),
	}
}

// ExtractUsage pulls the usage block out of a completion response body.
// Bodies without one (streaming chunks, upstream errors) yield a zero
// Usage.
func ExtractUsage(body []byte) Usage {
	var envelope struct {
		Usage Usage `json:"usage"`
	}
	// Best effort: a body that does not parse simply reports no usage.
	_ = json.Unmarshal(body, &envelope)
	return envelope.Usage
}

// RedactToken redacts a secret for safe logging, keeping only the first
// and last few characters.
func RedactToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) < 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// IsSuccess reports whether the response carried a 2xx status.
func (m *ResponseMetadata) IsSuccess() bool {
	return m.StatusCode >= 200 && m.StatusCode < 300
}
