package ai

import (
	"context"
	goerrors "errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"

	"resumefill/internal/errors"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client *genai.Client
	config ProviderConfig
	logger *errors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

const defaultGeminiModel = "gemini-2.0-flash"

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(cfg ProviderConfig, logger *errors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeProviderUnconfigured,
			"Gemini provider requires an API key", nil)
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeGenerationFailed,
			"Failed to create Gemini client", err)
	}

	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}

	return &GeminiProvider{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return "gemini"
}

// Complete sends one generation request and returns the response text.
func (g *GeminiProvider) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	tracer := otel.Tracer("resumefill.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.complete")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(g.config.Temperature)),
	)

	temperature := g.config.Temperature
	maxTokens := int32(g.config.MaxTokens)
	genaiConfig := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}
	if systemInstruction != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), genaiConfig)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewAIError(errors.ErrCodeGenerationFailed,
			classifyGeminiError(err), err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", errors.NewAIError(errors.ErrCodeProviderResponseInvalid,
			"Gemini response contained no text", nil)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return text, nil
}

// classifyGeminiError maps Google API status codes to a stable message
func classifyGeminiError(err error) string {
	var apiErr *googleapi.Error
	if goerrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Gemini rejected the configured API key"
		case http.StatusTooManyRequests:
			return "Gemini rate limit exceeded"
		case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
			return "Gemini service unavailable"
		}
	}
	return "Gemini generation request failed"
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Provider:  "gemini",
		Available: false,
	}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", "gemini",
			"error", err.Error())
		return modelInfo
	}

	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	return modelInfo
}

func (g *GeminiProvider) Close() error {
	// The genai client does not hold connections that require closing
	return nil
}
