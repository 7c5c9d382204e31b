package ai

import (
	"context"
	"time"
)

// Provider is a single text-generation backend. Implementations send
// one prompt and return the model's raw text reply; parsing and
// formatting of replies belongs to callers.
type Provider interface {
	Complete(ctx context.Context, systemInstruction, prompt string) (string, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Name() string
	Close() error
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// ProviderConfig is the effective configuration a provider is built
// from: static config overlaid with the runtime settings file.
type ProviderConfig struct {
	Provider      string
	Model         string
	APIKey        string
	APIBase       string
	Timeout       time.Duration
	Temperature   float32
	MaxTokens     int
	OllamaBaseURL string
}

const modelCheckTimeout = 10 * time.Second
