package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"resumefill/internal/errors"
)

// OllamaProvider implements Provider against a local Ollama daemon.
// It requires no API key; an unreachable daemon surfaces as a
// generation failure on use, not at construction.
type OllamaProvider struct {
	baseURL    string
	httpClient *http.Client
	config     ProviderConfig
	logger     *errors.Logger
}

// Ensure OllamaProvider implements Provider
var _ Provider = (*OllamaProvider)(nil)

const defaultOllamaModel = "llama2"

// NewOllamaProvider creates a new Ollama provider instance
func NewOllamaProvider(cfg ProviderConfig, logger *errors.Logger) (*OllamaProvider, error) {
	baseURL := cfg.OllamaBaseURL
	if cfg.APIBase != "" {
		baseURL = cfg.APIBase
	}
	if baseURL == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"Ollama provider requires a base URL", nil)
	}

	if cfg.Model == "" {
		cfg.Model = defaultOllamaModel
	}

	return &OllamaProvider{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     logger,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete sends one non-streaming generate request and returns the
// response text.
func (p *OllamaProvider) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	tracer := otel.Tracer("resumefill.ai.ollama")
	ctx, span := tracer.Start(ctx, "ollama.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "ollama"),
		attribute.String("ai.model", p.config.Model),
	)

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  p.config.Model,
		Prompt: prompt,
		System: systemInstruction,
		Stream: false,
	})
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeGenerationFailed,
			"Failed to encode Ollama request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternalError(errors.ErrCodeGenerationFailed,
			"Failed to build Ollama request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewNetworkError(errors.ErrCodeGenerationFailed,
			fmt.Sprintf("Cannot reach Ollama at %s", p.baseURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.Bool("success", false))
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", errors.NewAIError(errors.ErrCodeGenerationFailed,
			fmt.Sprintf("Ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	var generated ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewAIError(errors.ErrCodeProviderResponseInvalid,
			"Ollama response was not valid JSON", err)
	}

	if strings.TrimSpace(generated.Response) == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewAIError(errors.ErrCodeProviderResponseInvalid,
			"Ollama response contained no text", nil)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return generated.Response, nil
}

// GetModelInfo probes the daemon's version endpoint to report
// availability.
func (p *OllamaProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:     p.config.Model,
		Provider: "ollama",
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, p.baseURL+"/api/version", nil)
	if err != nil {
		modelInfo.Error = err.Error()
		return modelInfo
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Cannot reach Ollama at %s", p.baseURL)
		return modelInfo
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		modelInfo.Error = fmt.Sprintf("Ollama version check returned status %d", resp.StatusCode)
		return modelInfo
	}

	var version struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&version); err == nil {
		modelInfo.Version = version.Version
	}
	modelInfo.Available = true

	return modelInfo
}

func (p *OllamaProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
