package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"resumefill/internal/core"
	"resumefill/internal/observability"
	"resumefill/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createUploadResumeHandler handles multipart resume uploads
func (s *Server) createUploadResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumefill.api")
		ctx, span := tracer.Start(ctx, "api.resume.upload")
		defer span.End()

		metrics := om.GetMetrics()

		if err := r.ParseMultipartForm(s.MaxUploadSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST",
				fmt.Sprintf("Failed to parse multipart form: %v", err), http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST", "file field is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close uploaded file", "error", err)
			}
		}()

		data, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "INVALID_REQUEST", "Failed to read uploaded file", http.StatusBadRequest)
			return
		}

		additionalInfo, err := core.ParseAdditionalInfo(r.FormValue("additional_info"))
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			s.writeAppError(w, err)
			return
		}

		doc := types.RawDocument{
			Data:        data,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
		prefs := types.EnhancementPreferences{
			EnhancementFocus: r.FormValue("enhancement_focus"),
			IndustryFocus:    r.FormValue("industry_focus"),
			TargetKeywords:   r.FormValue("target_keywords"),
			CompanyCulture:   r.FormValue("company_culture"),
			AdditionalInfo:   additionalInfo,
		}

		span.SetAttributes(
			attribute.String("upload.filename", header.Filename),
			attribute.Int("upload.size_bytes", len(data)),
		)

		record, err := s.Core.UploadResume(ctx, doc, prefs)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "processing"))
			metrics.RecordUpload(ctx, false)
			s.writeAppError(w, err)
			return
		}

		metrics.RecordUpload(ctx, true)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("resume.sections", len(record.SectionOrder)),
			attribute.Int("resume.words", record.Metadata.WordCount),
		)

		writeJSON(w, record)
	}
}

// createLastUploadHandler returns the retained resume record
func (s *Server) createLastUploadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := om.Tracer("resumefill.api").Start(r.Context(), "api.resume.last_upload")
		defer span.End()

		record := s.Core.LastResume()
		span.SetAttributes(attribute.String("resume.status", record.Status))

		writeJSON(w, record)
	}
}

// createEnhanceResumeHandler generates resume content tailored to an opening
func (s *Server) createEnhanceResumeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx, span := om.Tracer("resumefill.api").Start(ctx, "api.resume.enhance")
		defer span.End()

		var req types.EnhanceResumeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.JobTitle) == "" {
			err := fmt.Errorf("missing job title")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST", "job_title field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.job_title", req.JobTitle),
			attribute.String("operation", "enhance_resume"),
		)

		metrics := om.GetMetrics()
		var content string
		err := metrics.TrackGeneration(ctx, "resume", func(ctx context.Context) error {
			var genErr error
			content, genErr = s.Core.EnhanceResume(ctx, req)
			return genErr
		})
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "generation"))
			s.writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.length", len(content)),
		)

		writeJSON(w, EnhancementResponse{Status: "success", EnhancedContent: content})
	}
}

// createContextHandler updates the operator context woven into system
// instructions
func (s *Server) createContextHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := om.Tracer("resumefill.api").Start(r.Context(), "api.resume.context")
		defer span.End()

		var settings types.ContextSettings
		if err := parseJSONRequest(r, &settings); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}

		s.Core.UpdateContext(settings)
		span.SetAttributes(attribute.Bool("success", true))

		writeJSON(w, map[string]string{"status": "success"})
	}
}

// createExtractHandler processes scraped application-form text
func (s *Server) createExtractHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx, span := om.Tracer("resumefill.api").Start(ctx, "api.application.extract")
		defer span.End()

		metrics := om.GetMetrics()

		var req ExtractRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(attribute.Int("request.text_length", len(req.Text)))

		record, err := s.Core.ExtractApplication(ctx, req.Text)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "processing"))
			metrics.RecordExtraction(ctx, false)
			s.writeAppError(w, err)
			return
		}

		metrics.RecordExtraction(ctx, true)
		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("extraction.words", record.Metadata.WordCount),
		)

		writeJSON(w, record)
	}
}

// createLastExtractHandler returns the retained extraction record
func (s *Server) createLastExtractHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := om.Tracer("resumefill.api").Start(r.Context(), "api.application.last_extract")
		defer span.End()

		record, err := s.Core.LastExtraction()
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err)
			return
		}

		writeJSON(w, record)
	}
}

// createEnhanceApplicationHandler generates auto-fill-ready answers for a
// scraped application form
func (s *Server) createEnhanceApplicationHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx, span := om.Tracer("resumefill.api").Start(ctx, "api.application.enhance")
		defer span.End()

		var req types.EnhanceApplicationRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.focus", req.EnhancementFocus),
			attribute.String("operation", "enhance_application"),
		)

		metrics := om.GetMetrics()
		var content string
		err := metrics.TrackGeneration(ctx, "application", func(ctx context.Context) error {
			var genErr error
			content, genErr = s.Core.EnhanceApplication(ctx, req)
			return genErr
		})
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "generation"))
			s.writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.length", len(content)),
		)

		writeJSON(w, EnhancementResponse{Status: "success", EnhancedContent: content})
	}
}

// createProviderSettingsHandler reads and updates persisted provider
// settings. The API key is never echoed back in full.
func (s *Server) createProviderSettingsHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := om.Tracer("resumefill.api").Start(r.Context(), "api.settings.provider")
		defer span.End()

		switch r.Method {
		case http.MethodGet:
			current, err := s.Core.ProviderSettings()
			if err != nil {
				span.RecordError(err)
				s.writeAppError(w, err)
				return
			}
			writeJSON(w, maskSettings(current))

		case http.MethodPost:
			var patch types.ProviderSettings
			if err := parseJSONRequest(r, &patch); err != nil {
				span.RecordError(err)
				span.SetAttributes(attribute.String("error.type", "validation"))
				writeErrorResponse(w, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
				return
			}

			merged, err := s.Core.ConfigureProvider(patch)
			if err != nil {
				span.RecordError(err)
				s.writeAppError(w, err)
				return
			}

			span.SetAttributes(attribute.Bool("success", true))
			writeJSON(w, map[string]any{
				"status":   "success",
				"settings": maskSettings(merged),
			})

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// createReadFileHandler extracts text from a local file path. The
// endpoint trusts its caller; the server is expected to bind to
// localhost only.
func (s *Server) createReadFileHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := om.Tracer("resumefill.api").Start(r.Context(), "api.system.read_file")
		defer span.End()

		var req ReadFileRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "INVALID_REQUEST", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.FilePath) == "" {
			writeErrorResponse(w, "INVALID_REQUEST", "file_path field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(attribute.String("request.file_path", req.FilePath))

		content, err := s.Core.ReadFileFromPath(req.FilePath)
		if err != nil {
			span.RecordError(err)
			s.writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.length", len(content)),
		)

		writeJSON(w, ReadFileResponse{Status: "success", Content: content})
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			if wrapper.statusCode == http.StatusTooManyRequests {
				om.GetMetrics().RecordRateLimitHit(r.Context())
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// maskSettings redacts the API key for responses, leaving a short
// suffix so operators can tell keys apart.
func maskSettings(s types.ProviderSettings) types.ProviderSettings {
	if s.APIKey == "" {
		return s
	}
	if len(s.APIKey) > 8 {
		s.APIKey = "****" + s.APIKey[len(s.APIKey)-4:]
	} else {
		s.APIKey = "****"
	}
	return s
}
