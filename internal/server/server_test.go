package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resumefill/internal/ai"
	"resumefill/internal/config"
	"resumefill/internal/core"
	"resumefill/internal/errors"
	"resumefill/internal/observability"
	"resumefill/internal/settings"
	"resumefill/internal/types"
)

func testLogger() *errors.Logger {
	return errors.NewLogger(slog.LevelError)
}

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Timeout:     5 * time.Second,
			Temperature: 0.7,
			MaxTokens:   256,
		},
		Server: config.ServerConfig{
			Host:          "localhost",
			Port:          "8080",
			MaxUploadSize: 10 << 20,
		},
		Observability: config.ObservabilityConfig{
			HealthCheck: config.HealthCheckConfig{Timeout: time.Second},
		},
	}
}

func testObservability(t *testing.T) *observability.ObservabilityManager {
	t.Helper()
	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("NewObservabilityManager() error = %v", err)
	}
	return om
}

// newTestServer builds a server around an unconfigured hosted provider.
func newTestServer(t *testing.T, rateLimit *config.RateLimitConfig) *Server {
	t.Helper()

	cfg := testConfig()
	logger := testLogger()

	store, err := settings.NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	gateway, err := ai.NewGateway(&cfg.AI, types.ProviderSettings{}, logger)
	if err != nil {
		t.Fatalf("NewGateway() error = %v", err)
	}

	svc := core.NewService(gateway, store, logger)

	return NewServer(cfg, ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		Version:       "test",
		MaxUploadSize: cfg.Server.MaxUploadSize,
		RateLimit:     rateLimit,
	}, svc, nil, logger)
}

func decodeJSON(t *testing.T, body *bytes.Buffer, v any) {
	t.Helper()
	if err := json.Unmarshal(body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", body.String(), err)
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation code maps to 400",
			err:  errors.NewValidationError(errors.ErrCodeInvalidRequest, "bad", nil),
			want: http.StatusBadRequest,
		},
		{
			name: "unconfigured provider maps to 400",
			err:  errors.NewAIError(errors.ErrCodeProviderUnconfigured, "no key", nil),
			want: http.StatusBadRequest,
		},
		{
			name: "missing extraction maps to 404",
			err:  errors.NewValidationError(errors.ErrCodeNoExtraction, "nothing", nil),
			want: http.StatusNotFound,
		},
		{
			name: "missing file maps to 404",
			err:  errors.NewIOError(errors.ErrCodeFileNotFound, "gone", nil),
			want: http.StatusNotFound,
		},
		{
			name: "generation failure maps to 502",
			err:  errors.NewAIError(errors.ErrCodeGenerationFailed, "boom", nil),
			want: http.StatusBadGateway,
		},
		{
			name: "plain error maps to 500",
			err:  os.ErrInvalid,
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusForError(tt.err); got != tt.want {
				t.Errorf("statusForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMaskSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"empty key stays empty", "", ""},
		{"short key fully masked", "sk-12", "****"},
		{"long key keeps suffix", "sk-secret-12345", "****2345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			masked := maskSettings(types.ProviderSettings{APIKey: tt.key})
			if masked.APIKey != tt.want {
				t.Errorf("maskSettings() APIKey = %q, want %q", masked.APIKey, tt.want)
			}
		})
	}
}

func TestHealthEndpointDegradedWhenUnconfigured(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("health status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	decodeJSON(t, rec.Body, &resp)

	if resp["status"] != "degraded" {
		t.Errorf("status = %v, want degraded for unconfigured provider", resp["status"])
	}
}

func TestLastUploadPending(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	req := httptest.NewRequest(http.MethodGet, "/api/resume/last_upload", nil)
	rec := httptest.NewRecorder()
	s.createLastUploadHandler(om)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var record types.ResumeRecord
	decodeJSON(t, rec.Body, &record)
	if record.Status != "pending" {
		t.Errorf("Status = %q, want pending before any upload", record.Status)
	}
}

func TestUploadResumeMultipart(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "resume.txt")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write([]byte("Experience:\nBuilt systems.\nSkills:\nPython, Go")); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("enhancement_focus", "technical skills"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.createUploadResumeHandler(om)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var record types.ResumeRecord
	decodeJSON(t, rec.Body, &record)

	if record.Status != "success" {
		t.Errorf("Status = %q, want success", record.Status)
	}
	if record.Filename != "resume.txt" {
		t.Errorf("Filename = %q, want resume.txt", record.Filename)
	}
	if record.Preferences.EnhancementFocus != "technical skills" {
		t.Errorf("EnhancementFocus = %q, want technical skills", record.Preferences.EnhancementFocus)
	}
	if _, ok := record.ParsedSections["experience"]; !ok {
		t.Errorf("ParsedSections missing experience section: %v", record.ParsedSections)
	}
}

func TestUploadResumeMissingFile(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("enhancement_focus", "anything"); err != nil {
		t.Fatalf("WriteField() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.createUploadResumeHandler(om)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExtractAndLastExtract(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	payload, _ := json.Marshal(ExtractRequest{Text: "Personal information\nFirst name\nLast name\nWork experience\nMost recent role"})
	req := httptest.NewRequest(http.MethodPost, "/api/application/extract", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.createExtractHandler(om)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("extract status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var record types.ExtractionRecord
	decodeJSON(t, rec.Body, &record)
	if record.Status != "success" {
		t.Errorf("Status = %q, want success", record.Status)
	}
	if record.DisplayText == "" {
		t.Error("DisplayText is empty")
	}

	// The retained slot should now serve the same record
	req = httptest.NewRequest(http.MethodGet, "/api/application/last_extract", nil)
	rec = httptest.NewRecorder()
	s.createLastExtractHandler(om)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("last_extract status = %d, want 200", rec.Code)
	}

	var last types.ExtractionRecord
	decodeJSON(t, rec.Body, &last)
	if last.DisplayText != record.DisplayText {
		t.Error("last_extract does not match the extraction just performed")
	}
}

func TestLastExtractEmpty(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	req := httptest.NewRequest(http.MethodGet, "/api/application/last_extract", nil)
	rec := httptest.NewRecorder()
	s.createLastExtractHandler(om)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp ErrorResponse
	decodeJSON(t, rec.Body, &resp)
	if resp.Error != errors.ErrCodeNoExtraction {
		t.Errorf("error code = %q, want %q", resp.Error, errors.ErrCodeNoExtraction)
	}
}

func TestExtractEmptyText(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	req := httptest.NewRequest(http.MethodPost, "/api/application/extract", strings.NewReader(`{"text":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.createExtractHandler(om)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestEnhanceResumeWithoutUpload(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	req := httptest.NewRequest(http.MethodPost, "/api/resume/enhance",
		strings.NewReader(`{"job_title":"Engineer","company":"Acme"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.createEnhanceResumeHandler(om)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	decodeJSON(t, rec.Body, &resp)
	if resp.Error != errors.ErrCodeNoResumeUploaded {
		t.Errorf("error code = %q, want %q", resp.Error, errors.ErrCodeNoResumeUploaded)
	}
}

func TestEnhanceResumeMissingJobTitle(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	req := httptest.NewRequest(http.MethodPost, "/api/resume/enhance", strings.NewReader(`{"company":"Acme"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.createEnhanceResumeHandler(om)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestProviderSettingsRoundTrip(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)
	handler := s.createProviderSettingsHandler(om)

	req := httptest.NewRequest(http.MethodPost, "/api/settings/provider",
		strings.NewReader(`{"api_key":"sk-secret-12345","model":"gpt-4"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status   string                 `json:"status"`
		Settings types.ProviderSettings `json:"settings"`
	}
	decodeJSON(t, rec.Body, &resp)
	if resp.Settings.APIKey != "****2345" {
		t.Errorf("POST response APIKey = %q, want masked", resp.Settings.APIKey)
	}
	if resp.Settings.Model != "gpt-4" {
		t.Errorf("POST response Model = %q, want gpt-4", resp.Settings.Model)
	}

	// GET must never echo the raw key back
	req = httptest.NewRequest(http.MethodGet, "/api/settings/provider", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", rec.Code)
	}

	var current types.ProviderSettings
	decodeJSON(t, rec.Body, &current)
	if strings.Contains(current.APIKey, "secret") {
		t.Errorf("GET leaked the API key: %q", current.APIKey)
	}
}

func TestReadFileHandler(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)
	handler := s.createReadFileHandler(om)

	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("Plain resume text"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	payload, _ := json.Marshal(ReadFileRequest{FilePath: path})
	req := httptest.NewRequest(http.MethodPost, "/api/system/read-file", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp ReadFileResponse
	decodeJSON(t, rec.Body, &resp)
	if resp.Content != "Plain resume text" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestReadFileHandlerMissingFile(t *testing.T) {
	s := newTestServer(t, nil)
	om := testObservability(t)

	payload, _ := json.Marshal(ReadFileRequest{FilePath: filepath.Join(t.TempDir(), "absent.txt")})
	req := httptest.NewRequest(http.MethodPost, "/api/system/read-file", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.createReadFileHandler(om)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	s := newTestServer(t, &config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 1,
		BurstCapacity:  1,
	})
	defer s.RateLimiter.Close()

	om := testObservability(t)
	handler := s.createRateLimitMiddleware(om)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr",
			remoteAddr: "192.168.1.5:9999",
			want:       "192.168.1.5",
		},
		{
			name:       "x-forwarded-for takes first valid",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			want:       "203.0.113.7",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.2"},
			want:       "198.51.100.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
