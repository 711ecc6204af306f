package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/facilities-collector"

// Metrics holds all application metrics
type Metrics struct {
	RequestCount        metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	FacilitiesCollected metric.Int64Counter
	CollectionFailures  metric.Int64Counter
	CollectionDuration  metric.Float64Histogram
	RecordsDropped      metric.Int64Counter
}

// Setup initializes OpenTelemetry tracing, metric export and runtime metrics
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(30*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMinimumReadMemStatsInterval(15 * time.Second)); err != nil {
		_ = tracerProvider.Shutdown(ctx)
		_ = meterProvider.Shutdown(ctx)
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			tracerProvider.Shutdown(ctx),
			meterProvider.Shutdown(ctx),
		)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	facilitiesCollected, err := meter.Int64Counter(
		"collector.facilities.count",
		metric.WithDescription("Number of facilities produced by collectors"),
	)
	if err != nil {
		return nil, err
	}

	collectionFailures, err := meter.Int64Counter(
		"collector.failures.count",
		metric.WithDescription("Number of failed domain collections"),
	)
	if err != nil {
		return nil, err
	}

	collectionDuration, err := meter.Float64Histogram(
		"collector.duration",
		metric.WithDescription("Domain collection duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	recordsDropped, err := meter.Int64Counter(
		"collector.records.dropped",
		metric.WithDescription("Number of source records that produced no facility"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:        requestCount,
		RequestDuration:     requestDuration,
		FacilitiesCollected: facilitiesCollected,
		CollectionFailures:  collectionFailures,
		CollectionDuration:  collectionDuration,
		RecordsDropped:      recordsDropped,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// SetSpanAttributes sets attributes on a span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// RecordRequestMetric records one HTTP request
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	metrics.RequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordCollection records the outcome of one domain collection
func RecordCollection(ctx context.Context, metrics *Metrics, domain string, facilities, dropped int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("collector.domain", domain))

	metrics.CollectionDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		metrics.CollectionFailures.Add(ctx, 1, attrs)
		return
	}
	metrics.FacilitiesCollected.Add(ctx, int64(facilities), attrs)
	metrics.RecordsDropped.Add(ctx, int64(dropped), attrs)
}
