package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Timeout:     60 * time.Second,
			Temperature: 0.7,
			MaxTokens:   1000,
		},
		Server: ServerConfig{
			Host:          "localhost",
			Port:          "8080",
			MaxUploadSize: 10 * 1024 * 1024,
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.AI.Provider = "cohere" },
			wantErr: "unsupported AI provider",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.AI.Timeout = 0 },
			wantErr: "timeout must be positive",
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.AI.Temperature = 2.5 },
			wantErr: "temperature",
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "default format not supported",
			mutate:  func(c *Config) { c.App.DefaultFormat = "yaml" },
			wantErr: "not in supported formats",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.App.LogLevel = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAllowsMissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.AI.APIKey = ""

	// A missing key is a runtime concern surfaced per-request, not a
	// startup failure.
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for empty API key", err)
	}
}

func TestGenerateServiceInstanceID(t *testing.T) {
	id := generateServiceInstanceID("resumefill")
	if !strings.HasPrefix(id, "resumefill-") {
		t.Errorf("instance ID %q should be prefixed with the service name", id)
	}
}
