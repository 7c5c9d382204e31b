package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.apiBase", "")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.maxTokens", 1000)

	// Local provider defaults
	v.SetDefault("ai.ollama.baseURL", "http://localhost:11434")
	v.SetDefault("ai.ollama.model", "llama2")

	// Circuit Breaker Configuration defaults
	v.SetDefault("ai.circuitBreaker.enabled", true)
	v.SetDefault("ai.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.circuitBreaker.failureThreshold", 0.6)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // Generation calls can be slow
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.maxUploadSize", 10*1024*1024) // 10MB

	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.window", time.Minute)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "text")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})

	// Settings file defaults
	v.SetDefault("settings.path", "") // Resolved to ~/.resumefill/config.json
	v.SetDefault("settings.watch", true)
	v.SetDefault("settings.debounceDelay", time.Second)

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "resumefill")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
}
