package observability

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Providers holds the providers created by Setup. Either may be nil.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// Setup creates the tracer provider when tracing is on and the meter
// provider when metrics is on.
func Setup(ctx context.Context, cfg Config, svc ServiceInfo, tracing, metrics bool) (*Providers, error) {
	cfg.ApplyDefaults()
	p := &Providers{}

	if tracing {
		tp, err := InitTracer(ctx, cfg, svc)
		if err != nil {
			return nil, fmt.Errorf("tracing: %w", err)
		}
		p.Tracer = tp
	}
	if metrics {
		mp, err := InitMeter(ctx, cfg, svc)
		if err != nil {
			_ = p.Shutdown(ctx)
			return nil, fmt.Errorf("metrics: %w", err)
		}
		p.Meter = mp
	}
	return p, nil
}

// TracerProvider returns the tracer provider, or nil when tracing is off.
func (p *Providers) TracerProvider() trace.TracerProvider {
	if p == nil || p.Tracer == nil {
		return nil
	}
	return p.Tracer
}

// MeterProvider returns the meter provider, or nil when metrics is off.
func (p *Providers) MeterProvider() metric.MeterProvider {
	if p == nil || p.Meter == nil {
		return nil
	}
	return p.Meter
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.Tracer != nil {
		if err := p.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if p.Meter != nil {
		if err := p.Meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
