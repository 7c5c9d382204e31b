package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumefill/internal/config"
	"resumefill/internal/errors"
)

func serveTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.AI = config.AIConfig{
		Provider:       "openai",
		Model:          "gpt-3.5-turbo",
		Timeout:        5 * time.Second,
		Temperature:    0.7,
		MaxTokens:      1000,
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: false},
	}
	cfg.Settings.Path = filepath.Join(t.TempDir(), "config.json")
	return cfg
}

func TestBuildServiceUsesStaticKeyWithoutSettingsFile(t *testing.T) {
	cfg := serveTestConfig(t)
	cfg.AI.APIKey = "sk-static"

	svc, store, err := buildService(cfg, errors.NewLogger(slog.LevelError))
	if err != nil {
		t.Fatalf("buildService() error = %v", err)
	}
	defer func() { _ = svc.Close() }()

	if store.Path() != cfg.Settings.Path {
		t.Errorf("store path = %q, want %q", store.Path(), cfg.Settings.Path)
	}
	if stats := svc.Stats(); stats["provider"] != "openai" {
		t.Errorf("provider = %v, want openai from the static API key", stats["provider"])
	}
}

func TestBuildServiceSettingsFileWinsOverStaticKey(t *testing.T) {
	cfg := serveTestConfig(t)
	cfg.AI.APIKey = "sk-static"

	// A settings file without an api_key deliberately unconfigures the
	// hosted provider, even when a static key exists.
	if err := os.WriteFile(cfg.Settings.Path, []byte(`{"model":"gpt-4o-mini"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	svc, _, err := buildService(cfg, errors.NewLogger(slog.LevelError))
	if err != nil {
		t.Fatalf("buildService() error = %v", err)
	}
	defer func() { _ = svc.Close() }()

	if stats := svc.Stats(); stats["provider"] != "" {
		t.Errorf("provider = %v, want unconfigured when the settings file holds no key", stats["provider"])
	}
}
