//go:build integration

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"switchboard-ai/hermes/pkg/audit"
	auditstorage "switchboard-ai/hermes/pkg/audit/storage"
	"switchboard-ai/hermes/pkg/config"
	"switchboard-ai/hermes/pkg/registry"
	"switchboard-ai/hermes/pkg/server"
	"switchboard-ai/hermes/pkg/upstream"
)

type gatewayFixture struct {
	handler       http.Handler
	registry      *registry.Registry
	providersFile string
	tokensFile    string
	auditStore    *auditstorage.MemoryStorage
	recorder      *audit.Recorder
}

// newGateway starts a fake OpenAI-compatible upstream and builds a full
// gateway handler routing to it, with an in-memory audit store attached.
func newGateway(t *testing.T) (*gatewayFixture, *httptest.Server) {
	t.Helper()

	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/models":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"object": "list",
				"data": []map[string]string{
					{"id": "gpt-4o", "object": "model"},
				},
			})
		case "/chat/completions":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     "chatcmpl-1",
				"object": "chat.completion",
				"model":  "gpt-4o",
				"choices": []map[string]interface{}{
					{"index": 0, "message": map[string]string{"role": "assistant", "content": "hello"}},
				},
				"usage": map[string]int{"prompt_tokens": 3, "completion_tokens": 5, "total_tokens": 8},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstreamSrv.Close)

	dir := t.TempDir()
	providersFile := filepath.Join(dir, "providers.txt")
	tokensFile := filepath.Join(dir, "tokens.txt")
	writeFile(t, providersFile, "openai|"+upstreamSrv.URL+"|sk-upstream\n")
	writeFile(t, tokensFile, "integration-suite|tok-integration\n")

	reg, err := registry.New(providersFile, tokensFile, nil)
	if err != nil {
		t.Fatalf("registry.New() error: %v", err)
	}
	if err := reg.Load(); err != nil {
		t.Fatalf("registry.Load() error: %v", err)
	}

	client := upstream.NewClient(config.UpstreamConfig{Timeout: 5 * time.Second}, nil)
	t.Cleanup(func() { client.Close() })

	store := auditstorage.NewMemoryStorage()
	t.Cleanup(func() { store.Close() })
	recorder := audit.NewRecorder(store, config.RecorderConfig{AsyncBuffer: 16}, nil)
	t.Cleanup(func() { recorder.Close() })

	cfg := config.NewDefaultConfig()
	srv := server.New(cfg, reg, client, nil, recorder, "integration", nil)

	return &gatewayFixture{
		handler:       srv.Handler(),
		registry:      reg,
		providersFile: providersFile,
		tokensFile:    tokensFile,
		auditStore:    store,
		recorder:      recorder,
	}, upstreamSrv
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestGatewayIntegration(t *testing.T) {
	fixture, _ := newGateway(t)
	gw := httptest.NewServer(fixture.handler)
	defer gw.Close()

	t.Run("chat completion end to end", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"model":    "openai/gpt-4o",
			"messages": []map[string]string{{"role": "user", "content": "hi"}},
		})

		req, _ := http.NewRequest(http.MethodPost, gw.URL+"/v1/chat/completions", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer tok-integration")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}

		var chatResp struct {
			Model string `json:"model"`
			Usage struct {
				TotalTokens int `json:"total_tokens"`
			} `json:"usage"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if chatResp.Model != "openai/gpt-4o" {
			t.Errorf("model = %q, want prefixed openai/gpt-4o", chatResp.Model)
		}
		if chatResp.Usage.TotalTokens != 8 {
			t.Errorf("total_tokens = %d, want 8", chatResp.Usage.TotalTokens)
		}
	})

	t.Run("audit record written", func(t *testing.T) {
		// The recorder is async; wait briefly for the write.
		deadline := time.Now().Add(2 * time.Second)
		for {
			records, err := fixture.auditStore.Query(context.Background(), &audit.Query{})
			if err != nil {
				t.Fatalf("query audit store: %v", err)
			}
			if len(records) > 0 {
				rec := records[0]
				if rec.Provider != "openai" {
					t.Errorf("provider = %q, want openai", rec.Provider)
				}
				if rec.TokenDescription != "integration-suite" {
					t.Errorf("token description = %q, want integration-suite", rec.TokenDescription)
				}
				if rec.TotalTokens != 8 {
					t.Errorf("total tokens = %d, want 8", rec.TotalTokens)
				}
				return
			}
			if time.Now().After(deadline) {
				t.Fatal("no audit record written within deadline")
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("missing token rejected", func(t *testing.T) {
		body, _ := json.Marshal(map[string]interface{}{
			"model":    "openai/gpt-4o",
			"messages": []map[string]string{{"role": "user", "content": "hi"}},
		})

		resp, err := http.Post(gw.URL+"/v1/chat/completions", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("models listing prefixed", func(t *testing.T) {
		resp, err := http.Get(gw.URL + "/v1/models")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()

		var list struct {
			Data []struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(list.Data) != 1 || list.Data[0].ID != "openai/gpt-4o" {
			t.Errorf("models = %+v, want [openai/gpt-4o]", list.Data)
		}
	})

	t.Run("reload picks up new tables", func(t *testing.T) {
		writeFile(t, fixture.tokensFile, "integration-suite|tok-integration\nsecond|tok-second\n")

		resp, err := http.Post(gw.URL+"/v1/reload", "application/json", nil)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("reload status = %d, want 200", resp.StatusCode)
		}

		var reload struct {
			Status string `json:"status"`
			Tokens int    `json:"tokens"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&reload); err != nil {
			t.Fatalf("decode reload response: %v", err)
		}
		if reload.Status != "reloaded" || reload.Tokens != 2 {
			t.Errorf("reload = %+v, want status=reloaded tokens=2", reload)
		}
	})

	t.Run("reload rejects corrupt table atomically", func(t *testing.T) {
		before := fixture.registry.Snapshot()
		writeFile(t, fixture.providersFile, "missing-fields-line\n")

		resp, err := http.Post(gw.URL+"/v1/reload", "application/json", nil)
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("reload status = %d, want 500", resp.StatusCode)
		}
		if fixture.registry.Snapshot() != before {
			t.Error("snapshot replaced despite failed reload")
		}
	})
}
