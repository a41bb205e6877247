package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"switchboard-ai/hermes/pkg/proxy/types"
)

func TestTimeoutMiddlewarePassthrough(t *testing.T) {
	handler := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "ok" {
		t.Errorf("body = %q, want ok", w.Body.String())
	}
}

func TestTimeoutMiddlewareDeadline(t *testing.T) {
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	handler := TimeoutMiddleware(20*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer wg.Done()
		<-release
		// A handler that outlives its deadline must not corrupt the
		// already-written timeout response.
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("too late"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/v1/models", nil))

	if w.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", w.Code)
	}

	var resp types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body not an error envelope: %v", err)
	}
	if resp.Error.Type != types.ErrorTypeGatewayTimeout {
		t.Errorf("error type = %q, want %q", resp.Error.Type, types.ErrorTypeGatewayTimeout)
	}

	// Let the stalled handler finish its writes, then verify none of
	// them reached the client.
	close(release)
	wg.Wait()

	if strings.Contains(w.Body.String(), "too late") {
		t.Errorf("late handler write reached the client: %q", w.Body.String())
	}
}
