package ai

import (
	"context"
	"fmt"
	"sync"

	"resumefill/internal/config"
	"resumefill/internal/errors"
	"resumefill/internal/types"
)

// Gateway routes generation requests to the active provider. The
// provider can be swapped at runtime through Reconfigure when the
// operator changes settings; in-flight requests finish against the
// provider they started with.
type Gateway struct {
	mu       sync.RWMutex
	provider Provider

	cfg     *config.AIConfig
	breaker *AICircuitBreaker
	logger  *errors.Logger
}

// NewGateway creates a gateway and builds the initial provider from
// static config overlaid with the persisted settings.
func NewGateway(cfg *config.AIConfig, settings types.ProviderSettings, logger *errors.Logger) (*Gateway, error) {
	g := &Gateway{
		cfg:     cfg,
		breaker: NewAICircuitBreaker("AI-generate", &cfg.CircuitBreaker, logger),
		logger:  logger,
	}
	if err := g.Reconfigure(settings); err != nil {
		return nil, err
	}
	return g, nil
}

// Reconfigure rebuilds the active provider from the given settings.
// A hosted provider without an API key is not an error here: the
// gateway goes unconfigured and generation calls report it.
func (g *Gateway) Reconfigure(settings types.ProviderSettings) error {
	provider, err := g.buildProvider(g.effectiveConfig(settings))
	if err != nil {
		return err
	}

	g.mu.Lock()
	old := g.provider
	g.provider = provider
	g.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			g.logger.Warn("Failed to close previous AI provider",
				"provider", old.Name(), "error", err)
		}
	}

	if provider != nil {
		g.logger.Info("AI provider configured",
			"provider", provider.Name())
	} else {
		g.logger.Info("AI provider unconfigured, generation disabled until an API key is set")
	}
	return nil
}

// effectiveConfig overlays the runtime settings on the static config.
func (g *Gateway) effectiveConfig(settings types.ProviderSettings) ProviderConfig {
	cfg := ProviderConfig{
		Provider:      g.cfg.Provider,
		Model:         g.cfg.Model,
		APIKey:        g.cfg.APIKey,
		APIBase:       g.cfg.APIBase,
		Timeout:       g.cfg.Timeout,
		Temperature:   g.cfg.Temperature,
		MaxTokens:     g.cfg.MaxTokens,
		OllamaBaseURL: g.cfg.Ollama.BaseURL,
	}

	// The settings file wins over static config; posting an empty API
	// key deliberately unconfigures a hosted provider.
	cfg.APIKey = settings.APIKey
	if settings.APIBase != "" {
		cfg.APIBase = settings.APIBase
	}
	if settings.Model != "" {
		cfg.Model = settings.Model
	}
	if cfg.Provider == "ollama" && cfg.Model == "" {
		cfg.Model = g.cfg.Ollama.Model
	}

	return cfg
}

// buildProvider constructs a provider for the effective config. A nil
// provider with nil error means the gateway is unconfigured.
func (g *Gateway) buildProvider(cfg ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIProvider(cfg, g.logger)
	case "gemini":
		if cfg.APIKey == "" {
			return nil, nil
		}
		return NewGeminiProvider(cfg, g.logger)
	case "ollama":
		return NewOllamaProvider(cfg, g.logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}

// Generate sends one prompt through the circuit breaker to the active
// provider.
func (g *Gateway) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	g.mu.RLock()
	provider := g.provider
	g.mu.RUnlock()

	if provider == nil {
		return "", errors.NewConfigError(errors.ErrCodeProviderUnconfigured,
			"No AI provider is configured; set an API key via the provider settings", nil)
	}

	result, err := g.breaker.Execute(func() (string, error) {
		return provider.Complete(ctx, systemInstruction, prompt)
	})
	if err != nil && errors.CodeOf(err) == "" {
		// An open breaker rejects with gobreaker's own error; translate
		// it so the boundary maps it like any other generation failure.
		return "", errors.NewAIError(errors.ErrCodeGenerationFailed,
			"AI generation is temporarily unavailable", err)
	}
	return result, err
}

// StaticAPIKey returns the API key from static configuration. Callers
// fall back to it when no settings have been persisted yet.
func (g *Gateway) StaticAPIKey() string {
	return g.cfg.APIKey
}

// ProviderName returns the active provider's name, or empty when the
// gateway is unconfigured.
func (g *Gateway) ProviderName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.provider == nil {
		return ""
	}
	return g.provider.Name()
}

// GetModelInfo returns information about the AI model for health checks
func (g *Gateway) GetModelInfo(ctx context.Context) *ModelInfo {
	g.mu.RLock()
	provider := g.provider
	g.mu.RUnlock()

	if provider == nil {
		return &ModelInfo{
			Provider:  g.cfg.Provider,
			Available: false,
			Error:     "provider unconfigured",
		}
	}
	return provider.GetModelInfo(ctx)
}

// Stats returns circuit breaker statistics for the stats endpoint
func (g *Gateway) Stats() map[string]any {
	return g.breaker.GetStats()
}

// IsHealthy reports whether the circuit breaker admits requests
func (g *Gateway) IsHealthy() bool {
	return g.breaker.IsHealthy()
}

// Close releases the active provider
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.provider == nil {
		return nil
	}
	err := g.provider.Close()
	g.provider = nil
	return err
}
