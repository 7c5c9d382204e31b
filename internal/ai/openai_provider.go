package ai

import (
	"context"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/sashabaranov/go-openai"

	"resumefill/internal/errors"
)

// OpenAIProvider implements Provider for OpenAI-compatible chat
// completion APIs. A custom APIBase points it at any compatible
// endpoint (Azure gateways, proxies, self-hosted shims).
type OpenAIProvider struct {
	client *openai.Client
	config ProviderConfig
	logger *errors.Logger
}

// Ensure OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI provider instance
func NewOpenAIProvider(cfg ProviderConfig, logger *errors.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeProviderUnconfigured,
			"OpenAI provider requires an API key", nil)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.APIBase, "/")
	}
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		logger: logger,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Complete sends one chat completion request and returns the first
// choice's text.
func (p *OpenAIProvider) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	tracer := otel.Tracer("resumefill.ai.openai")
	ctx, span := tracer.Start(ctx, "openai.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", p.config.Model),
		attribute.Float64("ai.temperature", float64(p.config.Temperature)),
	)

	messages := []openai.ChatCompletionMessage{}
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: p.config.Temperature,
		MaxTokens:   p.config.MaxTokens,
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewAIError(errors.ErrCodeGenerationFailed,
			"OpenAI completion request failed", err)
	}

	if len(resp.Choices) == 0 {
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewAIError(errors.ErrCodeProviderResponseInvalid,
			"OpenAI response contained no choices", nil)
	}

	text := resp.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewAIError(errors.ErrCodeProviderResponseInvalid,
			"OpenAI response contained no text", nil)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("ai.tokens.total", resp.Usage.TotalTokens),
	)

	return text, nil
}

// GetModelInfo reports the configured model. The chat completions API
// has no cheap readiness probe, so availability mirrors client
// construction.
func (p *OpenAIProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	return &ModelInfo{
		Name:      p.config.Model,
		Provider:  "openai",
		Available: true,
	}
}

func (p *OpenAIProvider) Close() error {
	return nil
}
