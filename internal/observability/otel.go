package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumefill/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName     string
	ServiceVersion  string
	ServiceInstance string
	Enabled         bool
	ConsoleOutput   bool
	SampleRate      float64
	Prometheus      PrometheusConfig
}

// Metrics holds all custom metrics for resumefill
type Metrics struct {
	// Pipeline metrics
	ResumesUploaded      metric.Int64Counter
	ExtractionsPerformed metric.Int64Counter

	// Generation metrics
	GenerationCount    metric.Int64Counter
	GenerationErrors   metric.Int64Counter
	GenerationDuration metric.Float64Histogram

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// createResource creates the OpenTelemetry resource shared by tracing
// and metrics
func (om *ObservabilityManager) createResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.config.ServiceInstance),
		),
	)
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	if om.config.ConsoleOutput {
		// Console exporter for development
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	} else {
		// No-op exporter when no exporter is configured; spans still
		// feed the otelhttp metrics pipeline
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	res, err := om.createResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	// Console exporter for development
	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		interval := om.getMetricsCollectionInterval()
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	}

	// Prometheus exporter
	if om.config.Prometheus.Enabled {
		prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		if prometheusReader != nil {
			readers = append(readers, prometheusReader)
			om.prometheusServer = prometheusMux

			if err := StartPrometheusServer(prometheusMux, om.config.Prometheus.Port); err != nil {
				return nil, fmt.Errorf("failed to start Prometheus server: %w", err)
			}
		}
	}

	// If no readers configured, use manual reader as fallback
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// initCustomMetrics creates all custom metrics for resumefill
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	var err error

	om.metrics.ResumesUploaded, err = meter.Int64Counter(
		"resumefill_resumes_uploaded_total",
		metric.WithDescription("Total number of resumes uploaded and processed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create resumes uploaded metric: %w", err)
	}

	om.metrics.ExtractionsPerformed, err = meter.Int64Counter(
		"resumefill_extractions_total",
		metric.WithDescription("Total number of application text extractions"),
	)
	if err != nil {
		return fmt.Errorf("failed to create extractions metric: %w", err)
	}

	om.metrics.GenerationCount, err = meter.Int64Counter(
		"resumefill_generations_total",
		metric.WithDescription("Total number of generation requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create generation count metric: %w", err)
	}

	om.metrics.GenerationErrors, err = meter.Int64Counter(
		"resumefill_generation_errors_total",
		metric.WithDescription("Total number of failed generation requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create generation errors metric: %w", err)
	}

	om.metrics.GenerationDuration, err = meter.Float64Histogram(
		"resumefill_generation_duration_seconds",
		metric.WithDescription("Time spent on generation requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create generation duration metric: %w", err)
	}

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"resumefill_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{} // Return empty metrics if not initialized
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RecordUpload counts one processed resume upload
func (m *Metrics) RecordUpload(ctx context.Context, success bool) {
	if m.ResumesUploaded == nil {
		return
	}
	m.ResumesUploaded.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordExtraction counts one application text extraction
func (m *Metrics) RecordExtraction(ctx context.Context, success bool) {
	if m.ExtractionsPerformed == nil {
		return
	}
	m.ExtractionsPerformed.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordRateLimitHit counts one rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context) {
	if m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1)
}

// TrackGeneration instruments a generation call with tracing, a
// counter and a duration histogram.
func (m *Metrics) TrackGeneration(ctx context.Context, operation string, fn func(context.Context) error) error {
	if m.GenerationCount == nil {
		// Metrics not initialized, just run the function
		return fn(ctx)
	}

	tracer := otel.Tracer("resumefill.generation")
	ctx, span := tracer.Start(ctx, "generate."+operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	m.GenerationCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.GenerationDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	if err != nil {
		m.GenerationErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("error", true))
	}
	span.SetAttributes(attrs...)

	return err
}

// No-op exporter for when console output is disabled
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	// Fallback to default
	return 15 * time.Second
}
