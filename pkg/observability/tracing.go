package observability

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "radha"

var (
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
)

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	// ExporterType is "otlp", "stdout", or "none" (disabled).
	ExporterType string
	// OTLPEndpoint is the collector URL for the otlp exporter.
	OTLPEndpoint string
}

// TracingFromEnv reads the standard OpenTelemetry environment variables:
// OTEL_TRACES_EXPORTER ("otlp", "stdout", "none"; default "none") and
// OTEL_EXPORTER_OTLP_ENDPOINT.
func TracingFromEnv() TracingConfig {
	exporter := os.Getenv("OTEL_TRACES_EXPORTER")
	if exporter == "" {
		exporter = "none"
	}
	return TracingConfig{
		ExporterType: exporter,
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
}

// InitTracing sets up the global tracer provider.
func InitTracing(ctx context.Context, cfg TracingConfig) error {
	if cfg.ExporterType == "none" || cfg.ExporterType == "" {
		tracer = otel.GetTracerProvider().Tracer(serviceName)
		return nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(serviceName),
	))
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	var exporter sdktrace.SpanExporter
	switch cfg.ExporterType {
	case "otlp":
		opts := []otlptracehttp.Option{}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
	case "stdout":
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
	default:
		return fmt.Errorf("unknown exporter type: %s", cfg.ExporterType)
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = tracerProvider.Tracer(serviceName)
	return nil
}

// ShutdownTracing flushes pending spans.
func ShutdownTracing(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return tracerProvider.Shutdown(ctx)
}

// StartSpan opens a span on the service tracer.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	tr := tracer
	if tr == nil {
		tr = otel.GetTracerProvider().Tracer(serviceName)
	}
	return tr.Start(ctx, name, opts...)
}
