// Package tracing はOpenTelemetryによるリクエストトレースの初期化を行う。
package tracing

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName はトレーサー名。
const InstrumentationName = "github.com/hitoshi/taskman"

// ShutdownFunc は未送信のスパンを送出してプロバイダーを停止する。
type ShutdownFunc func(context.Context) error

// Setup はOTLP/HTTPエクスポーターを持つTracerProviderを生成し、グローバルに登録する。
// endpointが空の場合はトレースを無効とし、nilのTracerと何もしないShutdownFuncを返す。
func Setup(ctx context.Context, serviceName, endpoint string) (trace.Tracer, ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return nil, noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	tp, err := newProvider(ctx, exporter, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, noop, err
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Tracer(InstrumentationName), tp.Shutdown, nil
}

// newProvider はexporterへ送出するTracerProviderを生成する。
// リソースの生成に失敗した場合はexporterを停止してから返す。
func newProvider(ctx context.Context, exporter sdktrace.SpanExporter, opts ...resource.Option) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(ctx, opts...)
	if err != nil {
		if shutdownErr := exporter.Shutdown(ctx); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	), nil
}
