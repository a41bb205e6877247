package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   string
	}{
		{FormatText, "*cli.TextFormatter"},
		{FormatJSON, "*cli.JSONFormatter"},
		{FormatCSV, "*cli.CSVFormatter"},
		{OutputFormat("bogus"), "*cli.TextFormatter"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			f := NewFormatter(tt.format)
			if got := typeName(f); got != tt.want {
				t.Errorf("NewFormatter(%q) = %s, want %s", tt.format, got, tt.want)
			}
		})
	}
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *TextFormatter:
		return "*cli.TextFormatter"
	case *JSONFormatter:
		return "*cli.JSONFormatter"
	case *CSVFormatter:
		return "*cli.CSVFormatter"
	default:
		return "unknown"
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	data := map[string]int{"providers": 3, "tokens": 5}

	var buf bytes.Buffer
	f := &JSONFormatter{Indent: true}
	if err := f.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo failed: %v", err)
	}

	var decoded map[string]int
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["providers"] != 3 || decoded["tokens"] != 5 {
		t.Errorf("round trip changed values: %v", decoded)
	}
}

func TestCSVFormatter(t *testing.T) {
	f := &CSVFormatter{Headers: []string{"provider", "models"}}
	rows := [][]string{
		{"openai", "42"},
		{"groq", "7"},
	}

	out, err := f.Format(rows)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), out)
	}
	if lines[0] != "provider,models" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "openai,42" {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestCSVFormatterRejectsOtherTypes(t *testing.T) {
	f := &CSVFormatter{}
	if _, err := f.Format(map[string]string{"a": "b"}); err == nil {
		t.Error("expected error for non-[][]string data")
	}
}
