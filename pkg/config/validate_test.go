package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // substring of the expected error, "" for valid
	}{
		{
			name:    "default config is valid",
			mutate:  func(cfg *Config) {},
			wantErr: "",
		},
		{
			name: "missing listen address",
			mutate: func(cfg *Config) {
				cfg.Proxy.ListenAddress = ""
			},
			wantErr: "proxy.listen_address",
		},
		{
			name: "listen address without port",
			mutate: func(cfg *Config) {
				cfg.Proxy.ListenAddress = "localhost"
			},
			wantErr: "proxy.listen_address",
		},
		{
			name: "negative read timeout",
			mutate: func(cfg *Config) {
				cfg.Proxy.ReadTimeout = -1
			},
			wantErr: "proxy.read_timeout",
		},
		{
			name: "missing providers file",
			mutate: func(cfg *Config) {
				cfg.Registry.ProvidersFile = ""
			},
			wantErr: "registry.providers_file",
		},
		{
			name: "invalid model pattern",
			mutate: func(cfg *Config) {
				cfg.Registry.SupportedModels = []string{"gpt-[", "claude-"}
			},
			wantErr: "registry.supported_models[0]",
		},
		{
			name: "zero upstream timeout",
			mutate: func(cfg *Config) {
				cfg.Upstream.Timeout = 0
			},
			wantErr: "upstream.timeout",
		},
		{
			name: "invalid log level",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Logging.Level = "trace"
			},
			wantErr: "telemetry.logging.level",
		},
		{
			name: "invalid log format",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Logging.Format = "logfmt"
			},
			wantErr: "telemetry.logging.format",
		},
		{
			name: "metrics path without slash",
			mutate: func(cfg *Config) {
				cfg.Telemetry.Metrics.Path = "metrics"
			},
			wantErr: "telemetry.metrics.path",
		},
		{
			name: "unknown audit backend",
			mutate: func(cfg *Config) {
				cfg.Audit.Enabled = true
				cfg.Audit.Backend = "postgres"
			},
			wantErr: "audit.backend",
		},
		{
			name: "invalid prune schedule",
			mutate: func(cfg *Config) {
				cfg.Audit.Enabled = true
				cfg.Audit.Retention.PruneSchedule = "not a cron"
			},
			wantErr: "audit.retention.prune_schedule",
		},
		{
			name: "audit disabled skips audit validation",
			mutate: func(cfg *Config) {
				cfg.Audit.Enabled = false
				cfg.Audit.Backend = "postgres"
			},
			wantErr: "",
		},
		{
			name: "tls enabled without cert",
			mutate: func(cfg *Config) {
				cfg.Security.TLS.Enabled = true
				cfg.Security.TLS.KeyFile = "key.pem"
			},
			wantErr: "security.tls.cert_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorMultiple(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Proxy.ListenAddress = ""
	cfg.Registry.TokensFile = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}

	var vErr ValidationError
	if !asValidationError(err, &vErr) {
		t.Fatalf("error is %T, want ValidationError", err)
	}
	if len(vErr.Errors) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(vErr.Errors), vErr)
	}
}

func asValidationError(err error, target *ValidationError) bool {
	v, ok := err.(ValidationError)
	if ok {
		*target = v
	}
	return ok
}
