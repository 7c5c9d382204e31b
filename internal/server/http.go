package server

import (
	"time"

	"resumefill/internal/config"
	"resumefill/internal/core"
	resumefillErrors "resumefill/internal/errors"
	"resumefill/internal/settings"
)

// ExtractRequest carries scraped application-form text to process.
type ExtractRequest struct {
	Text string `json:"text"`
}

// ReadFileRequest names a local file to extract text from.
type ReadFileRequest struct {
	FilePath string `json:"file_path"`
}

// EnhancementResponse wraps generated content.
type EnhancementResponse struct {
	Status          string `json:"status"`
	EnhancedContent string `json:"enhanced_content"`
}

// ReadFileResponse wraps locally extracted file text.
type ReadFileResponse struct {
	Status  string `json:"status"`
	Content string `json:"content"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Application service
	Core *core.Service

	// Settings watcher for runtime provider reloads
	SettingsWatcher *settings.Watcher

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Upload size limit
	MaxUploadSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *resumefillErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host          string
	Port          string
	Version       string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	MaxUploadSize int64
	RateLimit     *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, svc *core.Service, watcher *settings.Watcher, logger *resumefillErrors.Logger) *Server {
	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Version:         cfg.Version,
		AppConfig:       appCfg,
		Core:            svc,
		SettingsWatcher: watcher,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		MaxUploadSize:   cfg.MaxUploadSize,
		RateLimit:       cfg.RateLimit,
		RateLimiter:     rateLimiter,
		Logger:          logger,
	}
}
