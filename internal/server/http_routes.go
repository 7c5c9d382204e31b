package server

import (
	"net/http"

	"resumefill/internal/observability"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes(om *observability.ObservabilityManager) *http.ServeMux {
	mux := http.NewServeMux()

	// Add middleware layers with observability
	rateLimitHandler := s.createRateLimitMiddleware(om)
	requestLimitHandler := s.requestSizeLimitMiddleware()

	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/stats", s.statsHandler)

	mux.HandleFunc("POST /api/resume/upload",
		rateLimitHandler(s.createUploadResumeHandler(om)),
	)
	mux.HandleFunc("GET /api/resume/last_upload",
		rateLimitHandler(s.createLastUploadHandler(om)),
	)
	mux.HandleFunc("POST /api/resume/enhance",
		rateLimitHandler(requestLimitHandler(s.createEnhanceResumeHandler(om))),
	)
	mux.HandleFunc("POST /api/resume/context",
		rateLimitHandler(requestLimitHandler(s.createContextHandler(om))),
	)

	mux.HandleFunc("POST /api/application/extract",
		rateLimitHandler(requestLimitHandler(s.createExtractHandler(om))),
	)
	mux.HandleFunc("GET /api/application/last_extract",
		rateLimitHandler(s.createLastExtractHandler(om)),
	)
	mux.HandleFunc("POST /api/application/enhance",
		rateLimitHandler(requestLimitHandler(s.createEnhanceApplicationHandler(om))),
	)

	mux.HandleFunc("/api/settings/provider",
		rateLimitHandler(requestLimitHandler(s.createProviderSettingsHandler(om))),
	)

	mux.HandleFunc("POST /api/system/read-file",
		rateLimitHandler(requestLimitHandler(s.createReadFileHandler(om))),
	)

	return mux
}

// requestSizeLimitMiddleware limits the size of incoming JSON requests.
// The multipart upload endpoint enforces its own limit through
// ParseMultipartForm instead.
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxUploadSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadSize)
			}

			next(w, r)
		}
	}
}
