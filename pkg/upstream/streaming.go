package upstream

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// maxStreamLine bounds a single SSE line. Provider chunks are small, but
// tool-call deltas can carry large arguments.
const maxStreamLine = 1 * 1024 * 1024

// Stream reads Server-Sent Events from a provider's streaming response.
// Each call to Next returns the raw JSON payload of one "data:" line,
// letting the caller rewrite and relay it without imposing a schema.
type Stream struct {
	provider string
	body     io.ReadCloser
	scanner  *bufio.Scanner
	closed   bool
}

// NewStream wraps a provider response body as an SSE stream.
func NewStream(provider string, body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), maxStreamLine)

	return &Stream{
		provider: provider,
		body:     body,
		scanner:  scanner,
	}
}

// Next returns the payload of the next data line. It returns io.EOF when
// the stream terminates, either via the "[DONE]" marker or the underlying
// connection closing cleanly.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, &StreamError{
					Provider: s.provider,
					Message:  "failed to read stream",
					Cause:    err,
				}
			}
			return nil, io.EOF
		}

		line := s.scanner.Text()
		if line == "" {
			continue
		}

		// Skip comments, event types, and other non-data lines. The
		// space after the field name is optional, so "data:payload"
		// is valid too.
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimPrefix(line, "data:")
		data = strings.TrimPrefix(data, " ")
		if data == "[DONE]" {
			return nil, io.EOF
		}

		return []byte(data), nil
	}
}

// Close closes the underlying response body.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
