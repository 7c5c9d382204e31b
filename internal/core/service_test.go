package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumefill/internal/ai"
	"resumefill/internal/config"
	"resumefill/internal/errors"
	"resumefill/internal/settings"
	"resumefill/internal/types"
)

// memStore keeps provider settings in memory for tests.
type memStore struct {
	saved  types.ProviderSettings
	exists bool
}

var _ settings.Store = (*memStore)(nil)

func (m *memStore) Load() (types.ProviderSettings, bool, error) {
	return m.saved, m.exists, nil
}

func (m *memStore) Save(s types.ProviderSettings) error {
	m.saved = s
	m.exists = true
	return nil
}

func (m *memStore) Update(patch types.ProviderSettings) (types.ProviderSettings, error) {
	merged := m.saved
	merged.APIKey = patch.APIKey
	if patch.APIBase != "" {
		merged.APIBase = patch.APIBase
	}
	if patch.Model != "" {
		merged.Model = patch.Model
	}
	m.saved = merged
	m.exists = true
	return merged, nil
}

func quietLogger() *errors.Logger {
	return errors.NewLogger(slog.LevelError)
}

func aiConfig(provider, ollamaURL string) *config.AIConfig {
	return &config.AIConfig{
		Provider:    provider,
		Model:       "gpt-3.5-turbo",
		Timeout:     5 * time.Second,
		Temperature: 0.7,
		MaxTokens:   1000,
		Ollama: config.OllamaConfig{
			BaseURL: ollamaURL,
			Model:   "llama2",
		},
		CircuitBreaker: config.CircuitBreakerConfig{Enabled: false},
	}
}

// newUnconfiguredService wires a service whose hosted provider has no
// API key.
func newUnconfiguredService(t *testing.T) *Service {
	t.Helper()
	gateway, err := ai.NewGateway(aiConfig("openai", ""), types.ProviderSettings{}, quietLogger())
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}
	return NewService(gateway, &memStore{}, quietLogger())
}

// newGeneratingService wires a service whose provider is a local test
// server returning a fixed reply. The last request prompt is written to
// the returned pointer.
func newGeneratingService(t *testing.T, reply string, lastPrompt *string) *Service {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if lastPrompt != nil {
			*lastPrompt = req.Prompt
		}
		_, _ = w.Write([]byte(`{"response":` + jsonString(reply) + `,"done":true}`))
	}))
	t.Cleanup(server.Close)

	gateway, err := ai.NewGateway(aiConfig("ollama", server.URL), types.ProviderSettings{}, quietLogger())
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}
	return NewService(gateway, &memStore{}, quietLogger())
}

func jsonString(s string) string {
	data, _ := json.Marshal(s)
	return string(data)
}

func textResume(content string) types.RawDocument {
	return types.RawDocument{
		Data:        []byte(content),
		Filename:    "resume.txt",
		ContentType: "text/plain",
	}
}

const sampleResume = "Experience:\nBuilt systems.\nShipped code.\nSkills:\nPython, Go"

func TestUploadResume(t *testing.T) {
	service := newUnconfiguredService(t)

	record, err := service.UploadResume(context.Background(), textResume(sampleResume), types.EnhancementPreferences{})
	if err != nil {
		t.Fatalf("UploadResume() error = %v", err)
	}

	if record.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", record.Status, StatusSuccess)
	}
	if got, want := record.Summary, "Built systems.  Shipped code. Key skills include: Python, Go"; got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
	if _, ok := record.ParsedSections["experience"]; !ok {
		t.Errorf("ParsedSections missing experience: %v", record.ParsedSections)
	}
	if _, ok := record.ParsedSections["skills"]; !ok {
		t.Errorf("ParsedSections missing skills: %v", record.ParsedSections)
	}
	if record.Metadata.WordCount == 0 {
		t.Error("WordCount should be populated")
	}
	if record.UploadedAt.IsZero() {
		t.Error("UploadedAt should be set")
	}
}

func TestUploadResumeReplacesSlot(t *testing.T) {
	service := newUnconfiguredService(t)
	ctx := context.Background()

	if _, err := service.UploadResume(ctx, textResume("first resume"), types.EnhancementPreferences{}); err != nil {
		t.Fatal(err)
	}
	if _, err := service.UploadResume(ctx, textResume("second resume"), types.EnhancementPreferences{}); err != nil {
		t.Fatal(err)
	}

	last := service.LastResume()
	if last.Content != "second resume" {
		t.Errorf("Content = %q, want the second upload only", last.Content)
	}
}

func TestLastResumePendingWhenEmpty(t *testing.T) {
	service := newUnconfiguredService(t)

	record := service.LastResume()
	if record.Status != StatusPending {
		t.Errorf("Status = %q, want %q", record.Status, StatusPending)
	}
	if record.Content != "" {
		t.Errorf("Content = %q, want empty", record.Content)
	}
}

func TestEnhanceResumeWithoutUpload(t *testing.T) {
	service := newUnconfiguredService(t)

	_, err := service.EnhanceResume(context.Background(), types.EnhanceResumeRequest{JobTitle: "SRE"})
	if !errors.IsCode(err, errors.ErrCodeNoResumeUploaded) {
		t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.ErrCodeNoResumeUploaded)
	}
}

func TestEnhanceResumeUnconfiguredProvider(t *testing.T) {
	service := newUnconfiguredService(t)
	ctx := context.Background()

	if _, err := service.UploadResume(ctx, textResume(sampleResume), types.EnhancementPreferences{}); err != nil {
		t.Fatal(err)
	}

	_, err := service.EnhanceResume(ctx, types.EnhanceResumeRequest{JobTitle: "SRE"})
	if !errors.IsCode(err, errors.ErrCodeProviderUnconfigured) {
		t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.ErrCodeProviderUnconfigured)
	}
}

func TestEnhanceResume(t *testing.T) {
	var lastPrompt string
	service := newGeneratingService(t, "tailored resume text", &lastPrompt)
	ctx := context.Background()

	if _, err := service.UploadResume(ctx, textResume(sampleResume), types.EnhancementPreferences{}); err != nil {
		t.Fatal(err)
	}

	got, err := service.EnhanceResume(ctx, types.EnhanceResumeRequest{
		JobTitle: "Backend Engineer",
		Company:  "Acme Corp",
	})
	if err != nil {
		t.Fatalf("EnhanceResume() error = %v", err)
	}
	if got != "tailored resume text" {
		t.Errorf("EnhanceResume() = %q", got)
	}

	if !strings.Contains(lastPrompt, "Backend Engineer") {
		t.Error("prompt should carry the job title")
	}
	if !strings.Contains(lastPrompt, "Built systems.") {
		t.Error("prompt should carry the uploaded resume content")
	}
}

func TestExtractApplication(t *testing.T) {
	service := newUnconfiguredService(t)

	record, err := service.ExtractApplication(context.Background(),
		"PERSONAL INFO:\nName\nEmail\nQUESTIONS:\nWhy here?")
	if err != nil {
		t.Fatalf("ExtractApplication() error = %v", err)
	}

	if record.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", record.Status, StatusSuccess)
	}
	if !strings.Contains(record.DisplayText, "§1. PERSONAL INFO") {
		t.Errorf("DisplayText = %q, want formatted sections", record.DisplayText)
	}
	if record.Metadata.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	last, err := service.LastExtraction()
	if err != nil {
		t.Fatalf("LastExtraction() error = %v", err)
	}
	if last.DisplayText != record.DisplayText {
		t.Error("LastExtraction() should return the stored record")
	}
}

func TestExtractApplicationEmptyText(t *testing.T) {
	service := newUnconfiguredService(t)

	_, err := service.ExtractApplication(context.Background(), "")
	if !errors.IsCode(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.ErrCodeInvalidRequest)
	}
}

func TestLastExtractionWhenEmpty(t *testing.T) {
	service := newUnconfiguredService(t)

	_, err := service.LastExtraction()
	if !errors.IsCode(err, errors.ErrCodeNoExtraction) {
		t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.ErrCodeNoExtraction)
	}
}

func TestEnhanceApplicationFallsBackToSlots(t *testing.T) {
	var lastPrompt string
	service := newGeneratingService(t, "Field: Value", &lastPrompt)
	ctx := context.Background()

	if _, err := service.UploadResume(ctx, textResume(sampleResume), types.EnhancementPreferences{}); err != nil {
		t.Fatal(err)
	}
	if _, err := service.ExtractApplication(ctx, "QUESTIONS:\nWhy here?"); err != nil {
		t.Fatal(err)
	}

	got, err := service.EnhanceApplication(ctx, types.EnhanceApplicationRequest{
		EnhancementFocus: "Professional Tone",
	})
	if err != nil {
		t.Fatalf("EnhanceApplication() error = %v", err)
	}
	if got != "Field: Value" {
		t.Errorf("EnhanceApplication() = %q", got)
	}

	if !strings.Contains(lastPrompt, "Built systems.") {
		t.Error("prompt should fall back to the uploaded resume")
	}
	if !strings.Contains(lastPrompt, "Why here?") {
		t.Error("prompt should fall back to the extracted application text")
	}
}

func TestEnhanceApplicationWithoutAnyState(t *testing.T) {
	service := newUnconfiguredService(t)

	_, err := service.EnhanceApplication(context.Background(), types.EnhanceApplicationRequest{})
	if !errors.IsCode(err, errors.ErrCodeNoResumeUploaded) {
		t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.ErrCodeNoResumeUploaded)
	}
}

func TestConfigureProvider(t *testing.T) {
	store := &memStore{saved: types.ProviderSettings{Model: "gpt-3.5-turbo"}}
	gateway, err := ai.NewGateway(aiConfig("openai", ""), types.ProviderSettings{}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	service := NewService(gateway, store, quietLogger())

	merged, err := service.ConfigureProvider(types.ProviderSettings{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("ConfigureProvider() error = %v", err)
	}

	if merged.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", merged.APIKey)
	}
	if merged.Model != "gpt-3.5-turbo" {
		t.Errorf("Model = %q, want preserved value", merged.Model)
	}
	if store.saved.APIKey != "sk-test" {
		t.Error("settings should be persisted to the store")
	}

	// The gateway picks up the new key immediately
	stats := service.Stats()
	if stats["provider"] != "openai" {
		t.Errorf("provider = %v, want openai after configuration", stats["provider"])
	}
}

func TestReloadProviderFallsBackToStaticKey(t *testing.T) {
	cfg := aiConfig("openai", "")
	cfg.APIKey = "sk-static"

	gateway, err := ai.NewGateway(cfg, types.ProviderSettings{APIKey: cfg.APIKey}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	service := NewService(gateway, &memStore{}, quietLogger())

	// No settings have ever been persisted; a reload must not drop the
	// statically configured key.
	service.ReloadProvider()

	if stats := service.Stats(); stats["provider"] != "openai" {
		t.Errorf("provider = %v, want openai from the static API key", stats["provider"])
	}
}

func TestReloadProviderEmptyKeyInStoreUnconfigures(t *testing.T) {
	cfg := aiConfig("openai", "")
	cfg.APIKey = "sk-static"

	gateway, err := ai.NewGateway(cfg, types.ProviderSettings{APIKey: cfg.APIKey}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	service := NewService(gateway, &memStore{exists: true}, quietLogger())

	// Persisted settings with an empty key are a deliberate
	// unconfiguration and win over the static key.
	service.ReloadProvider()

	if stats := service.Stats(); stats["provider"] != "" {
		t.Errorf("provider = %v, want unconfigured after reload", stats["provider"])
	}
}

func TestParseAdditionalInfo(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "valid object", raw: `{"visa":"none needed"}`, want: map[string]string{"visa": "none needed"}},
		{name: "not json", raw: "{broken", wantErr: true},
		{name: "non-string values", raw: `{"count":3}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAdditionalInfo(tt.raw)
			if tt.wantErr {
				if !errors.IsCode(err, errors.ErrCodeInvalidAdditionalInfo) {
					t.Errorf("error code = %s, want %s", errors.CodeOf(err), errors.ErrCodeInvalidAdditionalInfo)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAdditionalInfo() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Errorf("ParseAdditionalInfo() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ParseAdditionalInfo()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestUpdateContext(t *testing.T) {
	service := newUnconfiguredService(t)

	if service.ContextSettings() != nil {
		t.Error("context should start unset")
	}

	service.UpdateContext(types.ContextSettings{CareerLevel: "senior"})

	got := service.ContextSettings()
	if got == nil || got.CareerLevel != "senior" {
		t.Errorf("ContextSettings() = %+v", got)
	}
}

func TestStats(t *testing.T) {
	service := newUnconfiguredService(t)

	stats := service.Stats()
	if stats["has_resume"] != false || stats["has_extraction"] != false {
		t.Errorf("fresh service stats = %v", stats)
	}

	if _, err := service.UploadResume(context.Background(), textResume("text"), types.EnhancementPreferences{}); err != nil {
		t.Fatal(err)
	}
	if service.Stats()["has_resume"] != true {
		t.Error("has_resume should flip after upload")
	}
}
