package observability

import (
	"resumefill/internal/config"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		// Fallback to defaults if config not available
		return ObservabilityConfig{
			ServiceName:    "resumefill",
			ServiceVersion: version,
			Enabled:        true,
			ConsoleOutput:  true, // Default to console output for fallback
			SampleRate:     1.0,
			Prometheus:     GetPrometheusConfig(cfg),
		}
	}

	obsConfig := cfg.Observability

	// Use app version if service version not specified
	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	return ObservabilityConfig{
		ServiceName:     obsConfig.ServiceName,
		ServiceVersion:  serviceVersion,
		ServiceInstance: obsConfig.ServiceInstance,
		Enabled:         obsConfig.Enabled,
		ConsoleOutput:   obsConfig.ConsoleOutput,
		SampleRate:      obsConfig.Tracing.SampleRate,
		Prometheus:      GetPrometheusConfig(cfg),
	}
}
