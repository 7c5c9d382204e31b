package cli

import (
	"fmt"

	"resumefill/internal/ai"
	"resumefill/internal/config"
	"resumefill/internal/core"
	"resumefill/internal/errors"
	"resumefill/internal/server"
	"resumefill/internal/settings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP service for resume parsing and auto-fill generation",
	Long: `Start an HTTP server that provides REST API endpoints for resume
parsing, application text extraction and AI-backed content generation.

Available endpoints:
- POST /api/resume/upload: Upload and parse a resume (PDF, DOCX or TXT)
- GET  /api/resume/last_upload: Retrieve the last parsed resume
- POST /api/resume/enhance: Tailor the resume to a specific opening
- POST /api/resume/context: Set operator context for generation
- POST /api/application/extract: Clean scraped application-form text
- GET  /api/application/last_extract: Retrieve the last extraction
- POST /api/application/enhance: Generate auto-fill-ready answers
- GET/POST /api/settings/provider: Read or update AI provider settings
- POST /api/system/read-file: Extract text from a local file
- GET  /health: Health check endpoint
- GET  /stats: Server statistics and rate limiting info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
}

// buildService wires the settings store, gateway and application
// service shared by the serve and configure commands.
func buildService(cfg *config.Config, logger *errors.Logger) (*core.Service, *settings.FileStore, error) {
	path := cfg.Settings.Path
	if path == "" {
		var err error
		path, err = settings.DefaultPath()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve settings path: %w", err)
		}
	}

	store, err := settings.NewFileStore(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open settings store: %w", err)
	}

	providerSettings, ok, err := store.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load provider settings: %w", err)
	}
	if !ok {
		// No settings file yet; the statically configured key (env or
		// config file) still configures the hosted provider.
		providerSettings.APIKey = cfg.AI.APIKey
	}

	gateway, err := ai.NewGateway(&cfg.AI, providerSettings, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure AI gateway: %w", err)
	}

	return core.NewService(gateway, store, logger), store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	svc, store, err := buildService(cfg, logger)
	if err != nil {
		return err
	}

	var watcher *settings.Watcher
	if cfg.Settings.Watch {
		watcher = settings.NewWatcher(store.Path(), cfg.Settings.DebounceDelay, svc.ReloadProvider, logger)
	}

	serverCfg := server.ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		Version:       Version,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		IdleTimeout:   cfg.Server.IdleTimeout,
		MaxUploadSize: cfg.Server.MaxUploadSize,
		RateLimit:     &cfg.Server.RateLimit,
	}
	return server.NewServer(cfg, serverCfg, svc, watcher, logger).Start()
}
