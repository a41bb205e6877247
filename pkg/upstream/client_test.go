package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"switchboard-ai/hermes/pkg/config"
	"switchboard-ai/hermes/pkg/registry"
)

func testClient(timeout time.Duration) *Client {
	return NewClient(config.UpstreamConfig{
		Timeout:             timeout,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}, nil)
}

func TestChatCompletionSubstitutesAPIKey(t *testing.T) {
	var gotAuth string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"chatcmpl-1"}`))
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	provider := registry.Provider{Name: "stub", BaseURL: server.URL, APIKey: "sk-upstream"}
	body := []byte(`{"model":"gpt-4o","messages":[]}`)

	resp, err := client.ChatCompletion(context.Background(), provider, body)
	if err != nil {
		t.Fatalf("ChatCompletion() error: %v", err)
	}
	defer resp.Body.Close()

	if gotAuth != "Bearer sk-upstream" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer sk-upstream")
	}
	if string(gotBody) != string(body) {
		t.Errorf("forwarded body = %q, want %q", gotBody, body)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestChatCompletionPreservesUpstreamErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_exceeded"}}`))
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	provider := registry.Provider{Name: "stub", BaseURL: server.URL, APIKey: "sk-x"}

	// Non-2xx is not an error: the handler relays it verbatim.
	resp, err := client.ChatCompletion(context.Background(), provider, []byte(`{}`))
	if err != nil {
		t.Fatalf("ChatCompletion() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"error":{"message":"rate limited","type":"rate_limit_exceeded"}}` {
		t.Errorf("body not relayed verbatim: %q", body)
	}
}

func TestChatCompletionConnectError(t *testing.T) {
	client := testClient(5 * time.Second)
	defer client.Close()

	// Port 1 on loopback; nothing listens there.
	provider := registry.Provider{Name: "down", BaseURL: "http://127.0.0.1:1", APIKey: "sk-x"}

	_, err := client.ChatCompletion(context.Background(), provider, []byte(`{}`))
	if err == nil {
		t.Fatal("expected error for unreachable provider")
	}

	var connErr *ConnectError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectError, got %T: %v", err, err)
	}
	if connErr.Provider != "down" {
		t.Errorf("Provider = %q, want %q", connErr.Provider, "down")
	}
}

func TestChatCompletionTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := testClient(20 * time.Millisecond)
	defer client.Close()

	provider := registry.Provider{Name: "slow", BaseURL: server.URL, APIKey: "sk-x"}

	_, err := client.ChatCompletion(context.Background(), provider, []byte(`{}`))
	if err == nil {
		t.Fatal("expected timeout error")
	}

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
	}
	if timeoutErr.Provider != "slow" {
		t.Errorf("Provider = %q, want %q", timeoutErr.Provider, "slow")
	}
}

func TestChatCompletionContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	provider := registry.Provider{Name: "slow", BaseURL: server.URL, APIKey: "sk-x"}

	_, err := client.ChatCompletion(ctx, provider, []byte(`{}`))
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected *TimeoutError on cancelled context, got %T: %v", err, err)
	}
}

func TestDoOmitsAuthorizationWithoutKey(t *testing.T) {
	var gotAuth string
	var sawHeader bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, sawHeader = r.Header["Authorization"]
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	provider := registry.Provider{Name: "local", BaseURL: server.URL}

	resp, err := client.Do(context.Background(), provider, http.MethodGet, server.URL+"/models", nil, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	resp.Body.Close()

	if sawHeader {
		t.Errorf("Authorization header sent for keyless provider: %q", gotAuth)
	}
}
