package di

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/kbukum/simpleioc/di"

// telemetry holds the spans and counters a registry reports. Without
// providers every instrument is a noop.
type telemetry struct {
	tracer        trace.Tracer
	resolutions   metric.Int64Counter
	registrations metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	if tp == nil {
		tp = tracenoop.NewTracerProvider()
	}
	if mp == nil {
		mp = metricnoop.NewMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	t := &telemetry{tracer: tp.Tracer(instrumentationName)}

	var err error
	t.resolutions, err = meter.Int64Counter("di.resolutions",
		metric.WithDescription("Resolutions by contract and outcome"),
	)
	if err != nil {
		t.resolutions, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Int64Counter("di.resolutions")
	}
	t.registrations, err = meter.Int64Counter("di.registrations",
		metric.WithDescription("Successful registrations by contract and kind"),
	)
	if err != nil {
		t.registrations, _ = metricnoop.NewMeterProvider().Meter(instrumentationName).Int64Counter("di.registrations")
	}
	return t
}

// startResolve opens the span of one (possibly nested) resolution.
func (t *telemetry) startResolve(ctx context.Context, contract, key string, cache bool) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "di.resolve", trace.WithAttributes(
		attribute.String("di.contract", contract),
		attribute.String("di.key", key),
		attribute.Bool("di.cache", cache),
	))
}

// endResolve records the outcome ("hit", "created" or "error") and ends the span.
func (t *telemetry) endResolve(ctx context.Context, span trace.Span, contract, outcome string, err error) {
	span.SetAttributes(attribute.String("di.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	t.resolutions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("contract", contract),
		attribute.String("outcome", outcome),
	))
}

func (t *telemetry) registered(ctx context.Context, contract, kind string) {
	t.registrations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("contract", contract),
		attribute.String("kind", kind),
	))
}
