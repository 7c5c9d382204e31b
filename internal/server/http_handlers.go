package server

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"resumefill/internal/errors"
)

// statusForError maps application error codes to HTTP status codes.
func statusForError(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrCodeUnsupportedFileType,
		errors.ErrCodeDecodeFailure,
		errors.ErrCodeInvalidRequest,
		errors.ErrCodeInvalidAdditionalInfo,
		errors.ErrCodeNoResumeUploaded,
		errors.ErrCodeProviderUnconfigured,
		errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound, errors.ErrCodeNoExtraction:
		return http.StatusNotFound
	case errors.ErrCodeFileNotReadable:
		return http.StatusForbidden
	case errors.ErrCodeGenerationFailed, errors.ErrCodeProviderResponseInvalid:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError writes an application error in the standard envelope.
func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	code := errors.CodeOf(err)
	if code == "" {
		code = "INTERNAL_ERROR"
	}

	var appErr *errors.AppError
	message := "Internal server error"
	if goerrors.As(err, &appErr) {
		message = appErr.Message
	}

	writeErrorResponse(w, code, message, statusForError(err))
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, code, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Status:  "error",
		Error:   code,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeJSON writes a success payload
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if goerrors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// healthHandler provides a health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.AppConfig.Observability.HealthCheck.Timeout)
	defer cancel()

	modelInfo := s.Core.ModelInfo(ctx)

	response := map[string]any{
		"status":          "healthy",
		"service":         "resumefill",
		"version":         s.Version,
		"ai_model":        modelInfo,
		"circuit_breaker": map[string]any{"healthy": s.Core.Healthy()},
	}

	// An unconfigured provider is degraded, not down: parsing and
	// extraction still work without one.
	if !modelInfo.Available || !s.Core.Healthy() {
		response["status"] = "degraded"
	}

	writeJSON(w, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "resumefill",
		"version": s.Version,
		"server": map[string]any{
			"max_upload_size_bytes": s.MaxUploadSize,
		},
		"core": s.Core.Stats(),
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	writeJSON(w, response)
}
