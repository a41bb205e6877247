package registry

import (
	"errors"
	"strings"
	"testing"
)

func TestParseProviders(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Provider
		wantErr bool
	}{
		{
			name:  "single provider",
			input: "openai|https://api.openai.com/v1|sk-test",
			want: []Provider{
				{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "sk-test"},
			},
		},
		{
			name: "multiple providers preserve order",
			input: "openai|https://api.openai.com/v1|sk-a\n" +
				"anthropic|https://api.anthropic.com/v1|sk-b\n",
			want: []Provider{
				{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "sk-a"},
				{Name: "anthropic", BaseURL: "https://api.anthropic.com/v1", APIKey: "sk-b"},
			},
		},
		{
			name: "comments and blank lines skipped",
			input: "# upstream providers\n\n" +
				"openai|https://api.openai.com/v1|sk-a\n" +
				"   \n" +
				"# trailing comment\n",
			want: []Provider{
				{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "sk-a"},
			},
		},
		{
			name: "duplicate name last write wins keeps first position",
			input: "openai|https://old.example.com|sk-old\n" +
				"groq|https://api.groq.com/openai/v1|sk-g\n" +
				"openai|https://api.openai.com/v1|sk-new\n",
			want: []Provider{
				{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "sk-new"},
				{Name: "groq", BaseURL: "https://api.groq.com/openai/v1", APIKey: "sk-g"},
			},
		},
		{
			name:  "trailing slash trimmed from URL",
			input: "openai|https://api.openai.com/v1/|sk-a",
			want: []Provider{
				{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "sk-a"},
			},
		},
		{
			name:  "fields trimmed of surrounding whitespace",
			input: " openai | https://api.openai.com/v1 | sk-a ",
			want: []Provider{
				{Name: "openai", BaseURL: "https://api.openai.com/v1", APIKey: "sk-a"},
			},
		},
		{
			name:  "empty api key allowed",
			input: "local|http://localhost:11434/v1|",
			want: []Provider{
				{Name: "local", BaseURL: "http://localhost:11434/v1", APIKey: ""},
			},
		},
		{
			name:    "too few fields",
			input:   "openai|https://api.openai.com/v1",
			wantErr: true,
		},
		{
			name:    "too many fields",
			input:   "openai|https://api.openai.com/v1|sk-a|extra",
			wantErr: true,
		},
		{
			name:    "empty name",
			input:   "|https://api.openai.com/v1|sk-a",
			wantErr: true,
		},
		{
			name:    "empty url",
			input:   "openai||sk-a",
			wantErr: true,
		},
		{
			name:    "slash in provider name",
			input:   "open/ai|https://api.openai.com/v1|sk-a",
			wantErr: true,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProviders(strings.NewReader(tt.input), "providers.txt")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Errorf("expected *ParseError, got %T", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d providers, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p != tt.want[i] {
					t.Errorf("provider[%d] = %+v, want %+v", i, p, tt.want[i])
				}
			}
		})
	}
}

func TestParseProvidersErrorIncludesLineNumber(t *testing.T) {
	input := "# comment\nopenai|https://api.openai.com/v1|sk-a\nbroken line\n"

	_, err := ParseProviders(strings.NewReader(input), "providers.txt")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Line != 3 {
		t.Errorf("Line = %d, want 3", parseErr.Line)
	}
	if parseErr.File != "providers.txt" {
		t.Errorf("File = %q, want %q", parseErr.File, "providers.txt")
	}
	if !strings.Contains(err.Error(), "providers.txt:3:") {
		t.Errorf("error %q missing file:line prefix", err.Error())
	}
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Token
		wantErr bool
	}{
		{
			name:  "single token",
			input: "alice|tok-abc123",
			want:  []Token{{Description: "alice", Value: "tok-abc123"}},
		},
		{
			name: "multiple tokens with comments",
			input: "# access tokens\n" +
				"alice|tok-abc\n" +
				"\n" +
				"ci pipeline|tok-def\n",
			want: []Token{
				{Description: "alice", Value: "tok-abc"},
				{Description: "ci pipeline", Value: "tok-def"},
			},
		},
		{
			name:  "empty description allowed",
			input: "|tok-abc",
			want:  []Token{{Description: "", Value: "tok-abc"}},
		},
		{
			name:    "empty token value",
			input:   "alice|",
			wantErr: true,
		},
		{
			name:    "missing separator",
			input:   "just-a-token",
			wantErr: true,
		},
		{
			name:    "too many fields",
			input:   "alice|tok-abc|extra",
			wantErr: true,
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTokens(strings.NewReader(tt.input), "tokens.txt")

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens, want %d", len(got), len(tt.want))
			}
			for i, tok := range got {
				if tok != tt.want[i] {
					t.Errorf("token[%d] = %+v, want %+v", i, tok, tt.want[i])
				}
			}
		})
	}
}

func TestSplitModel(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		want    ModelRef
		wantErr bool
	}{
		{
			name:  "simple",
			model: "openai/gpt-4o",
			want:  ModelRef{Provider: "openai", Model: "gpt-4o"},
		},
		{
			name:  "model with slashes splits on first only",
			model: "openrouter/meta-llama/llama-3-8b",
			want:  ModelRef{Provider: "openrouter", Model: "meta-llama/llama-3-8b"},
		},
		{
			name:    "no separator",
			model:   "gpt-4o",
			wantErr: true,
		},
		{
			name:    "empty provider",
			model:   "/gpt-4o",
			wantErr: true,
		},
		{
			name:    "empty model",
			model:   "openai/",
			wantErr: true,
		},
		{
			name:    "empty string",
			model:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitModel(tt.model)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var malformed *MalformedModelError
				if !errors.As(err, &malformed) {
					t.Errorf("expected *MalformedModelError, got %T", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SplitModel(%q) = %+v, want %+v", tt.model, got, tt.want)
			}
		})
	}
}

func TestProviderChatCompletionsURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "base URL gets path appended",
			baseURL: "https://api.openai.com/v1",
			want:    "https://api.openai.com/v1/chat/completions",
		},
		{
			name:    "full endpoint URL used verbatim",
			baseURL: "https://gateway.example.com/custom/chat/completions",
			want:    "https://gateway.example.com/custom/chat/completions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Provider{Name: "test", BaseURL: tt.baseURL}
			if got := p.ChatCompletionsURL(); got != tt.want {
				t.Errorf("ChatCompletionsURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProviderModelsURL(t *testing.T) {
	p := Provider{Name: "openai", BaseURL: "https://api.openai.com/v1"}
	if got, want := p.ModelsURL(), "https://api.openai.com/v1/models"; got != want {
		t.Errorf("ModelsURL() = %q, want %q", got, want)
	}

	// A base URL ending in /chat/completions is trimmed back to its root
	// before appending /models.
	p = Provider{Name: "custom", BaseURL: "https://gw.example.com/api/chat/completions"}
	if got, want := p.ModelsURL(), "https://gw.example.com/api/models"; got != want {
		t.Errorf("ModelsURL() = %q, want %q", got, want)
	}
}
