package proxy

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"switchboard-ai/hermes/pkg/proxy/types"
)

func TestParseChatCompletionRequest(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantModel string
		wantErr   string // expected error code, empty for success
	}{
		{
			name:      "valid request",
			body:      `{"model":"openai/gpt-4o","messages":[{"role":"user","content":"hi"}]}`,
			wantModel: "openai/gpt-4o",
		},
		{
			name:      "streaming request",
			body:      `{"model":"openai/gpt-4o","messages":[{"role":"user","content":"hi"}],"stream":true}`,
			wantModel: "openai/gpt-4o",
		},
		{
			name:    "invalid JSON",
			body:    `{"model":`,
			wantErr: types.CodeInvalidJSON,
		},
		{
			name:    "missing model",
			body:    `{"messages":[{"role":"user","content":"hi"}]}`,
			wantErr: types.CodeInvalidValue,
		},
		{
			name:    "missing messages",
			body:    `{"model":"openai/gpt-4o"}`,
			wantErr: types.CodeInvalidValue,
		},
		{
			name:    "empty messages",
			body:    `{"model":"openai/gpt-4o","messages":[]}`,
			wantErr: types.CodeInvalidValue,
		},
		{
			name:    "body is not an object",
			body:    `[1,2,3]`,
			wantErr: types.CodeInvalidJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/v1/chat/completions", strings.NewReader(tt.body))

			req, err := ParseChatCompletionRequest(r)

			if tt.wantErr != "" {
				var reqErr *RequestError
				if !errors.As(err, &reqErr) {
					t.Fatalf("expected *RequestError, got %T: %v", err, err)
				}
				if reqErr.Code != tt.wantErr {
					t.Errorf("Code = %q, want %q", reqErr.Code, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.Model != tt.wantModel {
				t.Errorf("Model = %q, want %q", req.Model, tt.wantModel)
			}
		})
	}
}

func TestParseChatCompletionRequestTooLarge(t *testing.T) {
	huge := bytes.Repeat([]byte("a"), MaxRequestBodySize+1)
	r := httptest.NewRequest("POST", "/v1/chat/completions", bytes.NewReader(huge))

	_, err := ParseChatCompletionRequest(r)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.Code != types.CodeRequestTooLarge {
		t.Errorf("Code = %q, want %q", reqErr.Code, types.CodeRequestTooLarge)
	}
}

func TestRequestBodyPassthrough(t *testing.T) {
	// Fields the gateway does not understand must survive the rewrite.
	body := `{"model":"openai/gpt-4o","messages":[{"role":"user","content":"hi"}],` +
		`"temperature":0.7,"max_tokens":256,"custom_vendor_field":{"a":[1,2]}}`

	var req types.ChatCompletionRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}

	req.SetModel("gpt-4o")

	out, err := json.Marshal(&req)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var round map[string]json.RawMessage
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("re-unmarshal error: %v", err)
	}

	if got := string(round["model"]); got != `"gpt-4o"` {
		t.Errorf("model = %s, want \"gpt-4o\"", got)
	}
	if got := string(round["temperature"]); got != "0.7" {
		t.Errorf("temperature = %s, want 0.7", got)
	}
	if got := string(round["custom_vendor_field"]); got != `{"a":[1,2]}` {
		t.Errorf("custom_vendor_field = %s, not preserved", got)
	}
	if _, ok := round["stream"]; ok {
		t.Error("stream field appeared despite not being sent")
	}
}

func TestNormalizeContent(t *testing.T) {
	body := `{"model":"openai/gpt-4o","messages":[` +
		`{"role":"system","content":"be brief"},` +
		`{"role":"user","content":[{"type":"text","text":"hello "},{"type":"text","text":"world"},{"type":"image_url","image_url":{"url":"x"}}]}` +
		`]}`

	var req types.ChatCompletionRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if err := req.NormalizeContent(); err != nil {
		t.Fatalf("NormalizeContent() error: %v", err)
	}

	out, err := json.Marshal(&req)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}

	var round struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(out, &round); err != nil {
		t.Fatalf("normalized messages not flat strings: %v", err)
	}

	if round.Messages[0].Content != "be brief" {
		t.Errorf("string content changed: %q", round.Messages[0].Content)
	}
	if round.Messages[1].Content != "hello world" {
		t.Errorf("parts not joined: %q", round.Messages[1].Content)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid token", "Bearer tok-abc123", "tok-abc123"},
		{"case-insensitive scheme", "bearer tok-abc123", "tok-abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", ""},
		{"scheme only", "Bearer", ""},
		{"extra whitespace", "Bearer  tok-abc123", "tok-abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/v1/chat/completions", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}

			if got := ExtractBearerToken(r); got != tt.want {
				t.Errorf("ExtractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedactToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"", ""},
		{"short", "***"},
		{"tok-1234567890abcdef", "tok-...cdef"},
	}

	for _, tt := range tests {
		if got := RedactToken(tt.token); got != tt.want {
			t.Errorf("RedactToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
