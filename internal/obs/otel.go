// Package obs wires OpenTelemetry tracing.
package obs

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ServiceVersion is reported as the service.version resource attribute.
const ServiceVersion = "0.1.0"

// TracerConfig configures the tracer provider.
type TracerConfig struct {
	ServiceName string
	Endpoint    string // OTLP/gRPC collector address; empty disables export
	Environment string
}

// InitTracer installs a global tracer provider exporting spans over OTLP/gRPC.
// With an empty endpoint nothing is installed and spans go to the default
// no-op provider. The returned function flushes and stops the provider.
func InitTracer(ctx context.Context, cfg TracerConfig) (func(context.Context) error, error) {
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	// Insecure transport: the collector runs as a sidecar or on the local network.
	conn, err := grpc.DialContext(ctx, cfg.Endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("otlp dial: %w", err)
	}

	exp, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	// W3C Trace Context propagation
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		_ = conn.Close()
		return err
	}, nil
}
