package audit

import (
	"context"
	"time"
)

// Record is the audit trail entry for a single chat completion request. It
// captures routing, outcome, and usage metadata. Message content and
// credentials are never stored.
type Record struct {
	// Identity
	ID        string `json:"id"`
	RequestID string `json:"request_id"`

	// Timestamps
	RequestTime  time.Time `json:"request_time"`
	RecordedTime time.Time `json:"recorded_time"`

	// Routing
	Model         string `json:"model"`          // client-facing prefixed name
	Provider      string `json:"provider"`       // provider the request was routed to
	UpstreamModel string `json:"upstream_model"` // bare name sent upstream
	Stream        bool   `json:"stream"`

	// Caller
	TokenDescription string `json:"token_description"` // from the token table, never the token itself
	RemoteAddr       string `json:"remote_addr"`
	UserAgent        string `json:"user_agent"`

	// Outcome
	StatusCode int           `json:"status_code"`
	Latency    time.Duration `json:"latency"`

	// Usage as reported by the upstream response
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Error info when the request failed
	Error     string `json:"error,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}

// Query defines filter parameters for retrieving audit records.
type Query struct {
	// Time range, inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Filters
	Provider         string `json:"provider,omitempty"`
	Model            string `json:"model,omitempty"`
	TokenDescription string `json:"token_description,omitempty"`
	StatusCode       int    `json:"status_code,omitempty"`

	// Pagination
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Storage is the interface audit storage backends implement.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists an audit record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves records matching the filters, newest first.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns the number
	// removed. Used by retention pruning.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases resources held by the backend.
	Close() error
}
