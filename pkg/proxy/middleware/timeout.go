package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"switchboard-ai/hermes/pkg/proxy/types"
)

// TimeoutMiddleware enforces a per-request timeout using
// context.WithTimeout. If the deadline passes before the handler finishes,
// a 504 Gateway Timeout in OpenAI error format is returned and any later
// writes from the handler goroutine are dropped.
//
// The server applies this to bounded endpoints only; the chat completion
// route is excluded because SSE streams legitimately outlive any fixed
// request budget and are bounded by the upstream client timeout instead.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			tw := &timeoutWriter{w: w}
			done := make(chan struct{})

			go func() {
				defer close(done)
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				return

			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					return
				}

				slog.ErrorContext(r.Context(), "request timeout",
					"request_id", GetRequestID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"timeout", timeout.String(),
				)

				errResp := types.NewGatewayTimeoutError(
					"Request timeout: the request took too long to complete",
				)
				tw.writeTimeout(errResp)
			}
		})
	}
}

// timeoutWriter serializes access to the underlying ResponseWriter between
// the handler goroutine and the timeout branch. Once the timeout response
// has been written, handler writes are silently dropped.
type timeoutWriter struct {
	mu       sync.Mutex
	w        http.ResponseWriter
	timedOut bool
}

func (tw *timeoutWriter) Header() http.Header {
	return tw.w.Header()
}

func (tw *timeoutWriter) WriteHeader(status int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return
	}
	tw.w.WriteHeader(status)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return len(b), nil
	}
	return tw.w.Write(b)
}

// writeTimeout emits the 504 envelope and marks the writer so late handler
// writes no longer reach the client.
func (tw *timeoutWriter) writeTimeout(errResp *types.ErrorResponse) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.timedOut {
		return
	}
	tw.timedOut = true

	tw.w.Header().Set("Content-Type", "application/json")
	tw.w.WriteHeader(http.StatusGatewayTimeout)
	_ = json.NewEncoder(tw.w).Encode(errResp)
}
