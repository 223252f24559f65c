package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// InitTracing wires the global tracer provider to an OTLP/HTTP exporter.
// The exporter endpoint comes from the standard OTEL_* env vars; without a
// collector the batcher drops spans quietly.
func InitTracing(serviceName string) func(context.Context) error {
	exporter, err := otlptracehttp.New(context.Background())
	if err != nil {
		slog.Warn("failed to init trace exporter, tracing disabled", "error", err)
		return func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
