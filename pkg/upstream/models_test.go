package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"switchboard-ai/hermes/pkg/registry"
)

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %q, want /models", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-x" {
			t.Errorf("Authorization = %q, want Bearer sk-x", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","data":[
			{"id":"gpt-4o","object":"model","owned_by":"openai"},
			{"id":"gpt-4o-mini","object":"model","owned_by":"openai"}
		]}`))
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	provider := registry.Provider{Name: "openai", BaseURL: server.URL, APIKey: "sk-x"}

	models, err := client.ListModels(context.Background(), provider)
	if err != nil {
		t.Fatalf("ListModels() error: %v", err)
	}

	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].ID != "openai/gpt-4o" {
		t.Errorf("models[0].ID = %q, want %q", models[0].ID, "openai/gpt-4o")
	}
	if models[1].ID != "openai/gpt-4o-mini" {
		t.Errorf("models[1].ID = %q, want %q", models[1].ID, "openai/gpt-4o-mini")
	}
	if models[0].OwnedBy != "openai" {
		t.Errorf("OwnedBy = %q, want openai", models[0].OwnedBy)
	}
}

func TestListModelsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	provider := registry.Provider{Name: "openai", BaseURL: server.URL, APIKey: "sk-bad"}

	_, err := client.ListModels(context.Background(), provider)
	if err == nil {
		t.Fatal("expected error for 401 listing response")
	}

	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if provErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", provErr.StatusCode)
	}
}

func TestListModelsMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	provider := registry.Provider{Name: "openai", BaseURL: server.URL, APIKey: "sk-x"}

	_, err := client.ListModels(context.Background(), provider)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestListModelsChatEndpointBaseURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	client := testClient(5 * time.Second)
	defer client.Close()

	// Provider configured with a full chat endpoint URL: the sibling
	// /models path is derived from its root.
	provider := registry.Provider{
		Name:    "custom",
		BaseURL: server.URL + "/api/chat/completions",
		APIKey:  "sk-x",
	}

	if _, err := client.ListModels(context.Background(), provider); err != nil {
		t.Fatalf("ListModels() error: %v", err)
	}
	if gotPath != "/api/models" {
		t.Errorf("path = %q, want /api/models", gotPath)
	}
}
