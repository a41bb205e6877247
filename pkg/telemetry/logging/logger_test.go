package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"switchboard-ai/hermes/pkg/config"
)

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info("gateway started", "addr", "127.0.0.1:8080")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log output not JSON: %v", err)
	}
	if record["msg"] != "gateway started" {
		t.Errorf("msg = %v, want gateway started", record["msg"])
	}
	if record["addr"] != "127.0.0.1:8080" {
		t.Errorf("addr = %v", record["addr"])
	}
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info("should be filtered")
	logger.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("info record emitted at warn level")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn record missing")
	}
}

func TestNewInvalidConfig(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "loud"}, nil); err == nil {
		t.Error("New() accepted invalid level")
	}
	if _, err := New(config.LoggingConfig{Format: "xml"}, nil); err == nil {
		t.Error("New() accepted invalid format")
	}
}

func TestNewRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(config.LoggingConfig{
		Level:         "info",
		Format:        "json",
		RedactSecrets: true,
	}, &buf)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info("forwarding",
		"api_key", "sk-supersecretvalue",
		"url", "https://api.openai.com/v1",
		"detail", "header was Bearer tok-abcdef012345",
	)

	out := buf.String()
	if strings.Contains(out, "supersecretvalue") {
		t.Errorf("api key leaked: %s", out)
	}
	if strings.Contains(out, "tok-abcdef012345") {
		t.Errorf("bearer token leaked: %s", out)
	}
	if !strings.Contains(out, "api.openai.com") {
		t.Errorf("non-secret value damaged: %s", out)
	}
}
