// Package core holds the application service: the single-slot resume
// and extraction state plus the operations the HTTP and CLI boundaries
// expose. All state lives in memory and is replaced wholesale on each
// upload or extraction; nothing here persists across restarts except
// the provider settings, which live in the settings store.
package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"resumefill/internal/ai"
	"resumefill/internal/document"
	"resumefill/internal/errors"
	"resumefill/internal/parser"
	"resumefill/internal/prompt"
	"resumefill/internal/settings"
	"resumefill/internal/types"
	"resumefill/internal/utils"
)

// Record status values surfaced to clients.
const (
	StatusSuccess = "success"
	StatusPending = "pending"
)

// Service wires the document, parser, prompt and gateway layers
// together behind the operations the boundaries call.
type Service struct {
	mu              sync.RWMutex
	lastResume      *types.ResumeRecord
	lastExtraction  *types.ExtractionRecord
	contextSettings *types.ContextSettings

	gateway *ai.Gateway
	store   settings.Store
	logger  *errors.Logger
}

// NewService creates the application service.
func NewService(gateway *ai.Gateway, store settings.Store, logger *errors.Logger) *Service {
	return &Service{
		gateway: gateway,
		store:   store,
		logger:  logger,
	}
}

// ParseAdditionalInfo decodes the free-form additional_info form field.
// An empty field is fine; anything else must be a flat JSON object of
// string values.
func ParseAdditionalInfo(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidAdditionalInfo,
			"additional_info must be a JSON object of string values", err)
	}
	return info, nil
}

// UploadResume extracts, normalizes and segments an uploaded document,
// then replaces the retained resume slot with the result.
func (s *Service) UploadResume(ctx context.Context, doc types.RawDocument, prefs types.EnhancementPreferences) (*types.ResumeRecord, error) {
	text, err := document.ExtractText(doc)
	if err != nil {
		return nil, err
	}

	normalized := parser.NormalizeLines(text)
	sections := parser.Segment(normalized)

	record := &types.ResumeRecord{
		Status:         StatusSuccess,
		Content:        normalized,
		ParsedSections: sections.Map(),
		SectionOrder:   sections.Labels(),
		Summary:        parser.Summarize(sections),
		Metadata:       parser.Metrics(normalized),
		Preferences:    prefs,
		Filename:       doc.Filename,
		UploadedAt:     time.Now().UTC(),
	}

	s.mu.Lock()
	s.lastResume = record
	s.mu.Unlock()

	s.logger.Info("Resume processed",
		"filename", doc.Filename,
		"size", utils.FormatFileSize(int64(len(doc.Data))),
		"sections", len(record.SectionOrder),
		"words", record.Metadata.WordCount)

	return record, nil
}

// LastResume returns the retained resume, or a pending record when
// nothing has been uploaded yet.
func (s *Service) LastResume() *types.ResumeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastResume == nil {
		return &types.ResumeRecord{Status: StatusPending}
	}
	record := *s.lastResume
	return &record
}

// EnhanceResume tailors the retained resume to a specific opening.
func (s *Service) EnhanceResume(ctx context.Context, req types.EnhanceResumeRequest) (string, error) {
	s.mu.RLock()
	record := s.lastResume
	contextSettings := s.contextSettings
	s.mu.RUnlock()

	if record == nil {
		return "", errors.NewValidationError(errors.ErrCodeNoResumeUploaded,
			"No resume has been uploaded yet", nil)
	}

	userPrompt := prompt.EnhanceResume(req, record.Content)
	systemInstruction := prompt.BuildSystemInstruction(contextSettings)

	result, err := s.gateway.Generate(ctx, systemInstruction, userPrompt)
	if err != nil {
		return "", err
	}

	s.logger.Info("Resume enhancement generated",
		"provider", s.gateway.ProviderName(),
		"job_title", req.JobTitle)
	return result, nil
}

// ExtractApplication cleans scraped application-form text, formats it
// for display and replaces the retained extraction slot.
func (s *Service) ExtractApplication(ctx context.Context, rawText string) (*types.ExtractionRecord, error) {
	if rawText == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Application text is required", nil)
	}

	cleaned := parser.CleanApplicationText(rawText)
	displaySections := parser.SplitDisplaySections(cleaned)

	metadata := parser.ApplicationMetrics(cleaned)
	metadata.Timestamp = time.Now().UTC()

	record := &types.ExtractionRecord{
		Status:      StatusSuccess,
		DisplayText: parser.FormatForDisplay(displaySections),
		Metadata:    metadata,
	}

	s.mu.Lock()
	s.lastExtraction = record
	s.mu.Unlock()

	s.logger.Info("Application text extracted",
		"sections", len(displaySections),
		"words", metadata.WordCount)

	return record, nil
}

// LastExtraction returns the retained extraction.
func (s *Service) LastExtraction() (*types.ExtractionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.lastExtraction == nil {
		return nil, errors.NewValidationError(errors.ErrCodeNoExtraction,
			"No application text has been extracted yet", nil)
	}
	record := *s.lastExtraction
	return &record, nil
}

// EnhanceApplication generates auto-fill-ready answers for a scraped
// application form. Empty resume or application content falls back to
// the retained slots.
func (s *Service) EnhanceApplication(ctx context.Context, req types.EnhanceApplicationRequest) (string, error) {
	s.mu.RLock()
	resume := s.lastResume
	extraction := s.lastExtraction
	contextSettings := s.contextSettings
	s.mu.RUnlock()

	if req.ResumeContent == "" {
		if resume == nil {
			return "", errors.NewValidationError(errors.ErrCodeNoResumeUploaded,
				"No resume content provided and none has been uploaded", nil)
		}
		req.ResumeContent = resume.Content
	}

	if req.ApplicationContent == "" {
		if extraction == nil {
			return "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
				"Application content is required", nil)
		}
		req.ApplicationContent = extraction.DisplayText
	}

	userPrompt := prompt.EnhanceApplication(req)
	systemInstruction := prompt.BuildSystemInstruction(contextSettings)

	result, err := s.gateway.Generate(ctx, systemInstruction, userPrompt)
	if err != nil {
		return "", err
	}

	s.logger.Info("Application enhancement generated",
		"provider", s.gateway.ProviderName(),
		"focus", req.EnhancementFocus)
	return result, nil
}

// UpdateContext replaces the operator context woven into system
// instructions.
func (s *Service) UpdateContext(settings types.ContextSettings) {
	s.mu.Lock()
	s.contextSettings = &settings
	s.mu.Unlock()
}

// ContextSettings returns the current operator context, if any.
func (s *Service) ContextSettings() *types.ContextSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.contextSettings == nil {
		return nil
	}
	copied := *s.contextSettings
	return &copied
}

// ProviderSettings returns the persisted provider settings.
func (s *Service) ProviderSettings() (types.ProviderSettings, error) {
	loaded, _, err := s.store.Load()
	return loaded, err
}

// ConfigureProvider merges the patch into the settings store and
// reconfigures the gateway with the result.
func (s *Service) ConfigureProvider(patch types.ProviderSettings) (types.ProviderSettings, error) {
	merged, err := s.store.Update(patch)
	if err != nil {
		return types.ProviderSettings{}, err
	}
	if err := s.gateway.Reconfigure(merged); err != nil {
		return types.ProviderSettings{}, err
	}
	return merged, nil
}

// ReloadProvider re-reads the settings store and reconfigures the
// gateway. Wired to the settings file watcher. An empty key in an
// existing settings file unconfigures the provider; an absent file
// falls back to the static key.
func (s *Service) ReloadProvider() {
	loaded, ok, err := s.store.Load()
	if err != nil {
		s.logger.LogError(err, "Failed to reload provider settings")
		return
	}
	if !ok {
		loaded.APIKey = s.gateway.StaticAPIKey()
	}
	if err := s.gateway.Reconfigure(loaded); err != nil {
		s.logger.LogError(err, "Failed to reconfigure AI provider from settings")
	}
}

// ReadFileFromPath extracts text from a local file for the trusted
// read-file operation.
func (s *Service) ReadFileFromPath(path string) (string, error) {
	return document.ReadPath(path)
}

// Stats reports gateway and slot state for the stats endpoint.
func (s *Service) Stats() map[string]any {
	s.mu.RLock()
	hasResume := s.lastResume != nil
	hasExtraction := s.lastExtraction != nil
	s.mu.RUnlock()

	return map[string]any{
		"provider":        s.gateway.ProviderName(),
		"circuit_breaker": s.gateway.Stats(),
		"has_resume":      hasResume,
		"has_extraction":  hasExtraction,
	}
}

// ModelInfo exposes the gateway's model availability for health checks.
func (s *Service) ModelInfo(ctx context.Context) *ai.ModelInfo {
	return s.gateway.GetModelInfo(ctx)
}

// Healthy reports whether the gateway circuit breaker admits requests.
func (s *Service) Healthy() bool {
	return s.gateway.IsHealthy()
}

// Close releases the gateway's provider resources.
func (s *Service) Close() error {
	return s.gateway.Close()
}
