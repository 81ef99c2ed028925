package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability bundles the OpenTelemetry meter and tracer used around quote submission.
// A nil *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	submissionCounter  otelmetric.Int64Counter
	submissionDuration otelmetric.Float64Histogram
	ratingCounter      otelmetric.Int64Counter
}

type Option func(*options)

type options struct {
	jaegerEndpoint string
}

// WithJaegerEndpoint exports spans to a Jaeger collector, e.g.
// http://jaeger:14268/api/traces. Empty keeps spans in-process.
func WithJaegerEndpoint(endpoint string) Option {
	return func(o *options) { o.jaegerEndpoint = endpoint }
}

func New(serviceName string, opts ...Option) *Observability {
	var cfg options
	for _, apply := range opts {
		apply(&cfg)
	}

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	}
	if cfg.jaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.jaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			traceOpts = append(traceOpts, sdktrace.WithBatcher(exp))
		}
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	otel.SetTracerProvider(tracerProvider)
	tracer := tracerProvider.Tracer(serviceName)

	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{tracerProvider: tracerProvider, tracer: tracer}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	submissionCounter, _ := meter.Int64Counter(
		"quote.submissions",
		otelmetric.WithDescription("Number of quote submissions"),
	)

	submissionDuration, _ := meter.Float64Histogram(
		"quote.submission.duration",
		otelmetric.WithDescription("Quote submission duration"),
		otelmetric.WithUnit("ms"),
	)

	ratingCounter, _ := meter.Int64Counter(
		"quote.ratings",
		otelmetric.WithDescription("Number of premium computations"),
	)

	return &Observability{
		meterProvider:      provider,
		tracerProvider:     tracerProvider,
		meter:              meter,
		tracer:             tracer,
		submissionCounter:  submissionCounter,
		submissionDuration: submissionDuration,
		ratingCounter:      ratingCounter,
	}
}

// StartSpan starts a span under ctx. Callers must End the returned span.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer("property-quote")
	if o != nil && o.tracer != nil {
		tracer = o.tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err (if any) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (o *Observability) RecordSubmission(ctx context.Context, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("outcome", outcome))
	if o.submissionCounter != nil {
		o.submissionCounter.Add(ctx, 1, attrs)
	}
	if o.submissionDuration != nil {
		o.submissionDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordRating(ctx context.Context, category string, floorApplied bool) {
	if o == nil || o.ratingCounter == nil {
		return
	}
	o.ratingCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("category", category),
		attribute.Bool("floor_applied", floorApplied),
	))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		o.tracerProvider.Shutdown(ctx)
	}
}
